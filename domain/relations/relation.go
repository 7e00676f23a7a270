package relations

// KindRelated is the default relation kind when none is given
const KindRelated = "related"

// Relation is a typed, directed link between two units. Units are
// addressed by their id strings only; the store never resolves them.
type Relation struct {
	SourceID    string                 `json:"source_id"`
	TargetID    string                 `json:"target_id"`
	Kind        string                 `json:"kind"`
	Description string                 `json:"description,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// Key returns the identity of the link. One relation exists per
// source/target pair; relinking overwrites.
func (r *Relation) Key() string {
	return relationKey(r.SourceID, r.TargetID)
}

func relationKey(sourceID, targetID string) string {
	return sourceID + "->" + targetID
}
