package aggregates

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"workable/domain/core/entities"
	"workable/domain/core/valueobjects"
	"workable/domain/events"
	pkgerrors "workable/pkg/errors"
)

// Registry is the aggregate root owning every top-level unit. It is the
// single table child references resolve against, so it implements the
// entities.Resolver hook and binds itself into every unit it admits.
type Registry struct {
	units  map[valueobjects.UnitID]*entities.Unit
	idgen  func() valueobjects.UnitID
	logger *zap.Logger

	// Domain events recorded by registry-level operations
	events []events.DomainEvent
}

// CreateUnitParams carries the arguments for Registry.Create
type CreateUnitParams struct {
	Name        string
	Description string
	Atomic      bool
	Content     string
	ContentType string
}

// RegistryStats is a point-in-time census of the registry
type RegistryStats struct {
	Units          int `json:"units"`
	AtomicUnits    int `json:"atomic_units"`
	CompositeUnits int `json:"composite_units"`
	CachedLocals   int `json:"cached_locals"`
	Frames         int `json:"frames"`
	Roots          int `json:"roots"`
}

// NewRegistry creates an empty registry with random id allocation
func NewRegistry() *Registry {
	return &Registry{
		units:  make(map[valueobjects.UnitID]*entities.Unit),
		idgen:  valueobjects.NewUnitID,
		logger: zap.NewNop(),
		events: []events.DomainEvent{},
	}
}

// SetLogger replaces the registry's logger
func (r *Registry) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// SetIDGenerator replaces the id allocator. Tests use it to force
// collisions; production code has no reason to call it.
func (r *Registry) SetIDGenerator(idgen func() valueobjects.UnitID) {
	if idgen != nil {
		r.idgen = idgen
	}
}

// Create builds a unit, allocates its id and admits it. An id collision
// is retried exactly once with a regenerated id; a second collision
// fails rather than looping.
func (r *Registry) Create(params CreateUnitParams) (*entities.Unit, error) {
	var payload valueobjects.Payload
	if params.Content != "" || params.ContentType != "" {
		p, err := valueobjects.NewPayload(params.Content, params.ContentType)
		if err != nil {
			return nil, err
		}
		payload = p
	}

	id := r.idgen()
	if _, exists := r.units[id]; exists {
		r.logger.Warn("unit id collision, regenerating",
			zap.String("unit_id", id.String()),
		)
		id = r.idgen()
		if _, exists := r.units[id]; exists {
			return nil, pkgerrors.NewRegistryError("ID_COLLISION", "could not allocate a unique unit id").
				WithDetail("unit_id", id.String())
		}
	}

	unit, err := entities.NewUnitWithID(id, params.Name, params.Description, params.Atomic, payload)
	if err != nil {
		return nil, err
	}

	r.admit(unit)

	r.logger.Info("unit created",
		zap.String("unit_id", id.String()),
		zap.String("name", params.Name),
		zap.Bool("atomic", params.Atomic),
	)

	return unit, nil
}

// Register admits an externally built unit. The id belongs to the
// caller, so a duplicate fails outright instead of retrying.
func (r *Registry) Register(unit *entities.Unit) error {
	if unit == nil {
		return pkgerrors.NewRegistryError("UNIT_REQUIRED", "cannot register a nil unit")
	}
	if unit.ID().IsZero() {
		return pkgerrors.NewRegistryError("UNIT_ID_REQUIRED", "cannot register a unit without an id")
	}
	if _, exists := r.units[unit.ID()]; exists {
		return pkgerrors.NewRegistryError("DUPLICATE_UNIT_ID", "a unit with this id is already registered").
			WithDetail("unit_id", unit.ID().String())
	}

	r.admit(unit)

	return nil
}

// Get retrieves a unit by id
func (r *Registry) Get(id valueobjects.UnitID) (*entities.Unit, bool) {
	unit, ok := r.units[id]
	return unit, ok
}

// Has checks whether a unit is registered
func (r *Registry) Has(id valueobjects.UnitID) bool {
	_, ok := r.units[id]
	return ok
}

// Count returns the number of registered units
func (r *Registry) Count() int {
	return len(r.units)
}

// GetAll returns every registered unit sorted by id, so walks over the
// registry are deterministic
func (r *Registry) GetAll() []*entities.Unit {
	return r.sortedUnits()
}

// GetByName returns all units carrying the given name, sorted by id
func (r *Registry) GetByName(name string) []*entities.Unit {
	var units []*entities.Unit
	for _, unit := range r.sortedUnits() {
		if unit.Name() == name {
			units = append(units, unit)
		}
	}
	return units
}

// Resolve implements entities.Resolver for lazy child lookups
func (r *Registry) Resolve(id valueobjects.UnitID) (*entities.Unit, bool) {
	return r.Get(id)
}

// Delete removes a unit and strips every child frame referencing it
// from the remaining units, so no dangling external reference survives.
// Returns false when the id is unknown.
func (r *Registry) Delete(id valueobjects.UnitID) bool {
	unit, exists := r.units[id]
	if !exists {
		return false
	}

	delete(r.units, id)

	strippedFrom := 0
	for _, remaining := range r.units {
		frames := remaining.Content().GetFramesByRef(id, valueobjects.FrameTypeChild)
		if len(frames) == 0 {
			continue
		}
		for _, frame := range frames {
			_, _ = remaining.Content().RemoveFrame(frame.Seq())
		}
		strippedFrom++
	}

	r.addEvent(events.NewUnitDeleted(id, unit.Name(), unit.IsAtomic(), strippedFrom, time.Now()))

	r.logger.Info("unit deleted",
		zap.String("unit_id", id.String()),
		zap.String("name", unit.Name()),
		zap.Int("stripped_from", strippedFrom),
	)

	return true
}

// BuildParentMap derives the child id to parent id mapping by scanning
// every composite unit's child and local frames. It is recomputed on
// every call rather than cached, so it can never drift from the frames.
// Units are scanned sorted by id; when two parents claim the same child
// the later id wins.
func (r *Registry) BuildParentMap() map[string]string {
	parents := make(map[string]string)

	for _, unit := range r.sortedUnits() {
		if !unit.IsComposite() {
			continue
		}

		parentKey := unit.ID().String()
		content := unit.Content()
		for _, frame := range content.GetFramesByType(valueobjects.FrameTypeChild) {
			parents[frame.RefID().String()] = parentKey
		}
		for _, frame := range content.GetFramesByType(valueobjects.FrameTypeLocal) {
			parents[frame.RefID().String()] = parentKey
		}
	}

	return parents
}

// GetAllRoots returns the registered ids no parent claims, sorted
func (r *Registry) GetAllRoots() []string {
	parents := r.BuildParentMap()

	var roots []string
	for id := range r.units {
		key := id.String()
		if _, claimed := parents[key]; !claimed {
			roots = append(roots, key)
		}
	}

	sort.Strings(roots)
	return roots
}

// Statistics returns a census of the registry
func (r *Registry) Statistics() RegistryStats {
	stats := RegistryStats{
		Units: len(r.units),
		Roots: len(r.GetAllRoots()),
	}

	for _, unit := range r.units {
		if unit.IsAtomic() {
			stats.AtomicUnits++
		} else {
			stats.CompositeUnits++
		}
		stats.Frames += unit.Content().FrameCount()
		stats.CachedLocals += unit.Content().LocalCount()
	}

	return stats
}

// GetUncommittedEvents returns the registry's events followed by every
// registered unit's uncommitted events
func (r *Registry) GetUncommittedEvents() []events.DomainEvent {
	allEvents := make([]events.DomainEvent, len(r.events))
	copy(allEvents, r.events)

	for _, unit := range r.sortedUnits() {
		allEvents = append(allEvents, unit.GetUncommittedEvents()...)
	}

	return allEvents
}

// MarkEventsAsCommitted clears all uncommitted events, the registered
// units' included
func (r *Registry) MarkEventsAsCommitted() {
	r.events = []events.DomainEvent{}

	for _, unit := range r.units {
		unit.MarkEventsAsCommitted()
	}
}

// Private helper methods

func (r *Registry) admit(unit *entities.Unit) {
	unit.BindResolver(r)
	unit.SetLogger(r.logger)
	r.units[unit.ID()] = unit

	r.addEvent(events.NewUnitRegistered(unit.ID(), unit.Name(), unit.IsAtomic(), time.Now()))
}

func (r *Registry) addEvent(event events.DomainEvent) {
	r.events = append(r.events, event)
}

func (r *Registry) sortedUnits() []*entities.Unit {
	units := make([]*entities.Unit, 0, len(r.units))
	for _, unit := range r.units {
		units = append(units, unit)
	}

	sort.Slice(units, func(i, j int) bool {
		return units[i].ID().String() < units[j].ID().String()
	})

	return units
}
