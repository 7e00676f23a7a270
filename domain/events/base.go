package events

import (
	"time"

	"workable/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Unit Events

// UnitCreated is raised when a new unit is created
type UnitCreated struct {
	BaseEvent
	UnitID valueobjects.UnitID `json:"unit_id"`
	Name   string              `json:"name"`
	Atomic bool                `json:"atomic"`
}

// NewUnitCreated creates a UnitCreated event
func NewUnitCreated(unitID valueobjects.UnitID, name string, atomic bool, timestamp time.Time) UnitCreated {
	return UnitCreated{
		BaseEvent: BaseEvent{
			AggregateID: unitID.String(),
			EventType:   "unit.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		UnitID: unitID,
		Name:   name,
		Atomic: atomic,
	}
}

// UnitUpdated is raised when a unit's name or description changes
type UnitUpdated struct {
	BaseEvent
	UnitID valueobjects.UnitID `json:"unit_id"`
	Name   string              `json:"name"`
}

// NewUnitUpdated creates a UnitUpdated event
func NewUnitUpdated(unitID valueobjects.UnitID, name string, timestamp time.Time) UnitUpdated {
	return UnitUpdated{
		BaseEvent: BaseEvent{
			AggregateID: unitID.String(),
			EventType:   "unit.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		UnitID: unitID,
		Name:   name,
	}
}

// UnitConverted is raised when a unit changes mode
type UnitConverted struct {
	BaseEvent
	UnitID valueobjects.UnitID `json:"unit_id"`
	From   string              `json:"from"`
	To     string              `json:"to"`
}

// NewUnitConverted creates a UnitConverted event
func NewUnitConverted(unitID valueobjects.UnitID, from, to string, timestamp time.Time) UnitConverted {
	return UnitConverted{
		BaseEvent: BaseEvent{
			AggregateID: unitID.String(),
			EventType:   "unit.converted",
			Timestamp:   timestamp,
			Version:     1,
		},
		UnitID: unitID,
		From:   from,
		To:     to,
	}
}

// ChildAttached is raised when a child frame is registered on a composite unit
type ChildAttached struct {
	BaseEvent
	ParentID valueobjects.UnitID `json:"parent_id"`
	ChildID  valueobjects.UnitID `json:"child_id"`
	Seq      int                 `json:"seq"`
}

// NewChildAttached creates a ChildAttached event
func NewChildAttached(parentID, childID valueobjects.UnitID, seq int, timestamp time.Time) ChildAttached {
	return ChildAttached{
		BaseEvent: BaseEvent{
			AggregateID: parentID.String(),
			EventType:   "unit.child_attached",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID: parentID,
		ChildID:  childID,
		Seq:      seq,
	}
}

// ChildDetached is raised when all child frames for an id are removed
type ChildDetached struct {
	BaseEvent
	ParentID valueobjects.UnitID `json:"parent_id"`
	ChildID  valueobjects.UnitID `json:"child_id"`
	Frames   int                 `json:"frames"`
}

// NewChildDetached creates a ChildDetached event
func NewChildDetached(parentID, childID valueobjects.UnitID, frames int, timestamp time.Time) ChildDetached {
	return ChildDetached{
		BaseEvent: BaseEvent{
			AggregateID: parentID.String(),
			EventType:   "unit.child_detached",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID: parentID,
		ChildID:  childID,
		Frames:   frames,
	}
}

// LocalAttached is raised when a unit is cached into a content's local cache
type LocalAttached struct {
	BaseEvent
	OwnerID valueobjects.UnitID `json:"owner_id"`
	LocalID valueobjects.UnitID `json:"local_id"`
	Seq     int                 `json:"seq"`
}

// NewLocalAttached creates a LocalAttached event
func NewLocalAttached(ownerID, localID valueobjects.UnitID, seq int, timestamp time.Time) LocalAttached {
	return LocalAttached{
		BaseEvent: BaseEvent{
			AggregateID: ownerID.String(),
			EventType:   "unit.local_attached",
			Timestamp:   timestamp,
			Version:     1,
		},
		OwnerID: ownerID,
		LocalID: localID,
		Seq:     seq,
	}
}

// LocalDetached is raised when a locally cached unit is removed
type LocalDetached struct {
	BaseEvent
	OwnerID valueobjects.UnitID `json:"owner_id"`
	LocalID valueobjects.UnitID `json:"local_id"`
}

// NewLocalDetached creates a LocalDetached event
func NewLocalDetached(ownerID, localID valueobjects.UnitID, timestamp time.Time) LocalDetached {
	return LocalDetached{
		BaseEvent: BaseEvent{
			AggregateID: ownerID.String(),
			EventType:   "unit.local_detached",
			Timestamp:   timestamp,
			Version:     1,
		},
		OwnerID: ownerID,
		LocalID: localID,
	}
}

// Content Events

// FrameMoved is raised when a frame is renumbered inside a content
type FrameMoved struct {
	BaseEvent
	OwnerID valueobjects.UnitID `json:"owner_id"`
	FromSeq int                 `json:"from_seq"`
	ToSeq   int                 `json:"to_seq"`
}

// NewFrameMoved creates a FrameMoved event
func NewFrameMoved(ownerID valueobjects.UnitID, fromSeq, toSeq int, timestamp time.Time) FrameMoved {
	return FrameMoved{
		BaseEvent: BaseEvent{
			AggregateID: ownerID.String(),
			EventType:   "content.frame_moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		OwnerID: ownerID,
		FromSeq: fromSeq,
		ToSeq:   toSeq,
	}
}

// ContentRepaired is raised when a content's indices are repaired
type ContentRepaired struct {
	BaseEvent
	OwnerID        valueobjects.UnitID `json:"owner_id"`
	OrphansPruned  int                 `json:"orphans_pruned"`
	GhostsRelinked int                 `json:"ghosts_relinked"`
}

// NewContentRepaired creates a ContentRepaired event
func NewContentRepaired(ownerID valueobjects.UnitID, orphansPruned, ghostsRelinked int, timestamp time.Time) ContentRepaired {
	return ContentRepaired{
		BaseEvent: BaseEvent{
			AggregateID: ownerID.String(),
			EventType:   "content.repaired",
			Timestamp:   timestamp,
			Version:     1,
		},
		OwnerID:        ownerID,
		OrphansPruned:  orphansPruned,
		GhostsRelinked: ghostsRelinked,
	}
}

// Registry Events

// UnitRegistered is raised when a unit is inserted into the registry
type UnitRegistered struct {
	BaseEvent
	UnitID valueobjects.UnitID `json:"unit_id"`
	Name   string              `json:"name"`
	Atomic bool                `json:"atomic"`
}

// NewUnitRegistered creates a UnitRegistered event
func NewUnitRegistered(unitID valueobjects.UnitID, name string, atomic bool, timestamp time.Time) UnitRegistered {
	return UnitRegistered{
		BaseEvent: BaseEvent{
			AggregateID: unitID.String(),
			EventType:   "registry.unit_registered",
			Timestamp:   timestamp,
			Version:     1,
		},
		UnitID: unitID,
		Name:   name,
		Atomic: atomic,
	}
}

// UnitDeleted is raised when a unit is deleted from the registry
type UnitDeleted struct {
	BaseEvent
	UnitID       valueobjects.UnitID `json:"unit_id"`
	Name         string              `json:"name"`
	Atomic       bool                `json:"atomic"`
	StrippedFrom int                 `json:"stripped_from"`
}

// NewUnitDeleted creates a UnitDeleted event
func NewUnitDeleted(unitID valueobjects.UnitID, name string, atomic bool, strippedFrom int, timestamp time.Time) UnitDeleted {
	return UnitDeleted{
		BaseEvent: BaseEvent{
			AggregateID: unitID.String(),
			EventType:   "registry.unit_deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		UnitID:       unitID,
		Name:         name,
		Atomic:       atomic,
		StrippedFrom: strippedFrom,
	}
}
