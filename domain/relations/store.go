package relations

import (
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"

	pkgerrors "workable/pkg/errors"
)

// Store keeps the relations between units, keyed by the source/target
// pair. Lookups return copies of the slice headers, never the backing
// map, and every enumeration is sorted so walks are deterministic.
type Store struct {
	relations map[string]*Relation
	logger    *zap.Logger
}

// NewStore creates an empty relation store
func NewStore() *Store {
	return &Store{
		relations: make(map[string]*Relation),
		logger:    zap.NewNop(),
	}
}

// SetLogger replaces the store's logger
func (s *Store) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Link records a relation between two units. Linking an already linked
// pair overwrites the previous relation; the overwrite is logged, not
// an error.
func (s *Store) Link(sourceID, targetID, kind, description string, meta map[string]interface{}) (*Relation, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, pkgerrors.NewRelationError("SOURCE_REQUIRED", "relation source is required")
	}
	if strings.TrimSpace(targetID) == "" {
		return nil, pkgerrors.NewRelationError("TARGET_REQUIRED", "relation target is required")
	}

	if kind == "" {
		kind = KindRelated
	}

	relation := &Relation{
		SourceID:    sourceID,
		TargetID:    targetID,
		Kind:        kind,
		Description: description,
		Meta:        copyMeta(meta),
	}

	key := relation.Key()
	if _, exists := s.relations[key]; exists {
		s.logger.Debug("relation overwritten",
			zap.String("source_id", sourceID),
			zap.String("target_id", targetID),
		)
	}
	s.relations[key] = relation

	return relation, nil
}

// Unlink removes the relation between two units. Returns false when no
// such relation exists.
func (s *Store) Unlink(sourceID, targetID string) bool {
	key := relationKey(sourceID, targetID)
	if _, exists := s.relations[key]; !exists {
		return false
	}

	delete(s.relations, key)
	return true
}

// Get returns the relation between two units
func (s *Store) Get(sourceID, targetID string) (*Relation, bool) {
	relation, ok := s.relations[relationKey(sourceID, targetID)]
	return relation, ok
}

// Has checks whether two units are linked
func (s *Store) Has(sourceID, targetID string) bool {
	_, ok := s.relations[relationKey(sourceID, targetID)]
	return ok
}

// Count returns the number of stored relations
func (s *Store) Count() int {
	return len(s.relations)
}

// From returns every relation leaving the unit, sorted by target
func (s *Store) From(sourceID string) []*Relation {
	var out []*Relation
	for _, relation := range s.relations {
		if relation.SourceID == sourceID {
			out = append(out, relation)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TargetID < out[j].TargetID
	})
	return out
}

// To returns every relation pointing at the unit, sorted by source
func (s *Store) To(targetID string) []*Relation {
	var out []*Relation
	for _, relation := range s.relations {
		if relation.TargetID == targetID {
			out = append(out, relation)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceID < out[j].SourceID
	})
	return out
}

// Related returns the ids linked to the unit in either direction,
// deduplicated and sorted
func (s *Store) Related(id string) []string {
	seen := make(map[string]bool)
	for _, relation := range s.relations {
		if relation.SourceID == id {
			seen[relation.TargetID] = true
		}
		if relation.TargetID == id {
			seen[relation.SourceID] = true
		}
	}

	out := make([]string, 0, len(seen))
	for related := range seen {
		out = append(out, related)
	}

	sort.Strings(out)
	return out
}

// UpdateMeta sets one metadata entry on an existing relation
func (s *Store) UpdateMeta(sourceID, targetID, key string, value interface{}) error {
	relation, ok := s.relations[relationKey(sourceID, targetID)]
	if !ok {
		return pkgerrors.NewRelationError("RELATION_NOT_FOUND", "no relation between these units").
			WithDetail("source_id", sourceID).
			WithDetail("target_id", targetID)
	}

	if relation.Meta == nil {
		relation.Meta = make(map[string]interface{})
	}
	relation.Meta[key] = value

	return nil
}

// FindByMeta returns the relations whose metadata carries the given
// key/value pair, sorted by key for deterministic output
func (s *Store) FindByMeta(key string, value interface{}) []*Relation {
	var out []*Relation
	for _, relation := range s.relations {
		if relation.Meta == nil {
			continue
		}
		if stored, ok := relation.Meta[key]; ok && reflect.DeepEqual(stored, value) {
			out = append(out, relation)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Clear removes every relation touching the unit in either direction
// and returns how many were removed. Called when a unit is deleted.
func (s *Store) Clear(id string) int {
	var doomed []string
	for key, relation := range s.relations {
		if relation.SourceID == id || relation.TargetID == id {
			doomed = append(doomed, key)
		}
	}

	for _, key := range doomed {
		delete(s.relations, key)
	}

	return len(doomed)
}

func copyMeta(meta map[string]interface{}) map[string]interface{} {
	if meta == nil {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
