package entities

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"workable/domain/config"
	"workable/domain/core/valueobjects"
	"workable/domain/events"
	pkgerrors "workable/pkg/errors"
)

const (
	// ModeAtomic marks a unit carrying an inline payload
	ModeAtomic = "atomic"

	// ModeComposite marks a unit whose substance lives in its frames
	ModeComposite = "composite"

	// payloadSuffix names the wrapper unit a conversion materializes
	payloadSuffix = "_content"
)

// Resolver looks units up by id. The registry implements it so a
// composite unit can resolve child frames lazily without holding strong
// references to external units.
type Resolver interface {
	Resolve(id valueobjects.UnitID) (*Unit, bool)
}

// Unit is the central entity: a work unit that is either atomic
// (inline payload) or composite (frame-indexed content). The id is
// assigned once and survives conversions in both directions.
type Unit struct {
	// Private fields ensure encapsulation
	id          valueobjects.UnitID
	name        string
	description string
	atomic      bool
	payload     valueobjects.Payload
	content     *Content
	resolver    Resolver
	childCache  *lru.Cache[string, *Unit]
	logger      *zap.Logger
	createdAt   time.Time
	updatedAt   time.Time

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// UnitSummary is the serializable snapshot used by exports and the CLI
type UnitSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type,omitempty"`
	Preview     string `json:"preview,omitempty"`
	FrameCount  int    `json:"frame_count"`
	ChildCount  int    `json:"child_count"`
	LocalCount  int    `json:"local_count"`
}

// NewAtomicUnit creates an atomic unit with a fresh id. The payload may
// be the zero value for a unit with no inline content yet.
func NewAtomicUnit(name, description string, payload valueobjects.Payload) (*Unit, error) {
	return NewUnitWithID(valueobjects.NewUnitID(), name, description, true, payload)
}

// NewCompositeUnit creates a composite unit with a fresh id
func NewCompositeUnit(name, description string) (*Unit, error) {
	return NewUnitWithID(valueobjects.NewUnitID(), name, description, false, valueobjects.Payload{})
}

// NewUnitWithID creates a unit with a caller-supplied id. The registry
// uses it to control id allocation for collision retries; tests use it
// for deterministic ids.
func NewUnitWithID(id valueobjects.UnitID, name, description string, atomic bool, payload valueobjects.Payload) (*Unit, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("UNIT_ID_REQUIRED", "unit id cannot be zero")
	}
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.NewValidationError("UNIT_NAME_REQUIRED", "unit name is required")
	}
	if !atomic && !payload.IsZero() {
		return nil, pkgerrors.NewValidationError("COMPOSITE_PAYLOAD", "a composite unit cannot carry an inline payload")
	}

	now := time.Now()
	unit := &Unit{
		id:          id,
		name:        name,
		description: description,
		atomic:      atomic,
		payload:     payload,
		content:     NewContent(),
		logger:      zap.NewNop(),
		createdAt:   now,
		updatedAt:   now,
		events:      []events.DomainEvent{},
	}

	unit.addEvent(events.NewUnitCreated(id, name, atomic, now))

	return unit, nil
}

// ID returns the unit's identifier
func (u *Unit) ID() valueobjects.UnitID {
	return u.id
}

// Name returns the unit's name
func (u *Unit) Name() string {
	return u.name
}

// Description returns the unit's description
func (u *Unit) Description() string {
	return u.description
}

// IsAtomic reports whether the unit is in atomic mode
func (u *Unit) IsAtomic() bool {
	return u.atomic
}

// IsComposite reports whether the unit is in composite mode
func (u *Unit) IsComposite() bool {
	return !u.atomic
}

// Mode returns the unit's mode name
func (u *Unit) Mode() string {
	if u.atomic {
		return ModeAtomic
	}
	return ModeComposite
}

// Content returns the unit's owned frame index. Frame and local
// operations are valid in either mode; only payload and child
// operations are mode-gated.
func (u *Unit) Content() *Content {
	return u.content
}

// CreatedAt returns when the unit was created
func (u *Unit) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the unit was last updated
func (u *Unit) UpdatedAt() time.Time {
	return u.updatedAt
}

// SetLogger injects a logger into the unit and its content
func (u *Unit) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	u.logger = logger
	u.content.SetLogger(logger)
}

// BindResolver attaches the lazy child lookup used by GetChildren
func (u *Unit) BindResolver(resolver Resolver) {
	u.resolver = resolver
}

// Rename changes the unit's name. A blank name is ignored.
func (u *Unit) Rename(name string) {
	if strings.TrimSpace(name) == "" || name == u.name {
		return
	}
	u.name = name
	u.touch()
	u.addEvent(events.NewUnitUpdated(u.id, u.name, u.updatedAt))
}

// Redescribe changes the unit's description. An empty description is
// ignored, mirroring partial-update semantics.
func (u *Unit) Redescribe(description string) {
	if description == "" || description == u.description {
		return
	}
	u.description = description
	u.touch()
	u.addEvent(events.NewUnitUpdated(u.id, u.name, u.updatedAt))
}

// Payload returns the inline payload. Atomic mode only; calling it on a
// composite unit is a programming fault.
func (u *Unit) Payload() (valueobjects.Payload, error) {
	if err := u.requireAtomic("get_payload"); err != nil {
		return valueobjects.Payload{}, err
	}
	return u.payload, nil
}

// SetPayload replaces the inline payload. Atomic mode only.
func (u *Unit) SetPayload(payload valueobjects.Payload) error {
	if err := u.requireAtomic("set_payload"); err != nil {
		return err
	}
	u.payload = payload
	u.touch()
	return nil
}

// UpdatePayloadBody replaces the payload body while keeping the content
// type. Atomic mode only.
func (u *Unit) UpdatePayloadBody(body string) error {
	if err := u.requireAtomic("update_payload"); err != nil {
		return err
	}

	if u.payload.IsZero() {
		payload, err := valueobjects.NewPayload(body, "")
		if err != nil {
			return err
		}
		u.payload = payload
	} else {
		u.payload = u.payload.WithBody(body)
	}

	u.touch()
	return nil
}

// MakeComplex converts an atomic unit to composite mode. An existing
// payload is materialized as a locally cached atomic unit named
// "<name>_content" so no content is lost; the id stays the same.
// Converting an already composite unit is a logged no-op.
func (u *Unit) MakeComplex() error {
	if !u.atomic {
		u.logger.Warn("unit is already composite",
			zap.String("unit_id", u.id.String()),
			zap.String("name", u.name),
		)
		return nil
	}

	if !u.payload.IsZero() {
		wrapper, err := NewAtomicUnit(u.name+payloadSuffix, u.description, u.payload)
		if err != nil {
			return pkgerrors.NewConversionError("PAYLOAD_MATERIALIZATION_FAILED", "could not build the payload wrapper unit").
				WithCause(err)
		}
		wrapper.SetLogger(u.logger)

		if _, err := u.content.AddLocalUnit(wrapper); err != nil {
			return pkgerrors.NewConversionError("PAYLOAD_MATERIALIZATION_FAILED", "could not cache the payload wrapper unit").
				WithCause(err)
		}
		u.payload = valueobjects.Payload{}
	}

	u.atomic = false
	u.touch()
	u.addEvent(events.NewUnitConverted(u.id, ModeAtomic, ModeComposite, u.updatedAt))

	u.logger.Info("unit converted",
		zap.String("unit_id", u.id.String()),
		zap.String("from", ModeAtomic),
		zap.String("to", ModeComposite),
	)

	return nil
}

// MakeSimple converts a composite unit back to atomic mode. The unit
// must have no child frames and exactly one local frame; that local's
// payload becomes the unit's own. The id stays the same. Converting an
// already atomic unit is a logged no-op.
func (u *Unit) MakeSimple() error {
	if u.atomic {
		u.logger.Warn("unit is already atomic",
			zap.String("unit_id", u.id.String()),
			zap.String("name", u.name),
		)
		return nil
	}

	if children := u.content.GetFramesByType(valueobjects.FrameTypeChild); len(children) > 0 {
		return pkgerrors.NewConversionError("CHILDREN_PRESENT", "cannot simplify a unit that still has child frames").
			WithDetail("child_frames", len(children))
	}

	locals := u.content.GetFramesByType(valueobjects.FrameTypeLocal)
	if len(locals) != 1 {
		return pkgerrors.NewConversionError("LOCAL_COUNT_INVALID", "simplification requires exactly one local frame").
			WithDetail("local_frames", len(locals))
	}

	local, ok := u.content.GetLocalUnit(locals[0].RefID())
	if !ok {
		return pkgerrors.NewConversionError("LOCAL_UNIT_MISSING", "the local frame references a unit that is not cached").
			WithDetail("unit_id", locals[0].RefID().String())
	}

	u.payload = local.payload
	u.content.clearLocals()
	u.atomic = true
	u.touch()
	u.addEvent(events.NewUnitConverted(u.id, ModeComposite, ModeAtomic, u.updatedAt))

	u.logger.Info("unit converted",
		zap.String("unit_id", u.id.String()),
		zap.String("from", ModeComposite),
		zap.String("to", ModeAtomic),
	)

	return nil
}

// AddChild registers a child frame for an externally owned unit.
// Composite mode only. Re-adding an already attached child replaces its
// frames; the overwrite is logged, not an error.
func (u *Unit) AddChild(child *Unit) (int, error) {
	if err := u.requireComposite("add_child"); err != nil {
		return 0, err
	}
	if child == nil {
		return 0, pkgerrors.NewValidationError("CHILD_REQUIRED", "cannot attach a nil child")
	}

	existing := u.content.GetFramesByRef(child.ID(), valueobjects.FrameTypeChild)
	if len(existing) > 0 {
		u.logger.Warn("child already attached, replacing frames",
			zap.String("parent_id", u.id.String()),
			zap.String("child_id", child.ID().String()),
			zap.Int("frames", len(existing)),
		)
		for _, frame := range existing {
			_, _ = u.content.RemoveFrame(frame.Seq())
		}
	}

	seq, err := u.content.AddFrame(child.Name(), child.Description(), valueobjects.FrameTypeChild, child.ID(), nil)
	if err != nil {
		return 0, err
	}

	u.cacheChild(child)
	u.touch()
	u.addEvent(events.NewChildAttached(u.id, child.ID(), seq, u.updatedAt))

	return seq, nil
}

// RemoveChild removes every child frame for id. Composite mode only.
// Returns false when no child frame referenced the id.
func (u *Unit) RemoveChild(id valueobjects.UnitID) (bool, error) {
	if err := u.requireComposite("remove_child"); err != nil {
		return false, err
	}

	frames := u.content.GetFramesByRef(id, valueobjects.FrameTypeChild)
	if len(frames) == 0 {
		return false, nil
	}

	for _, frame := range frames {
		_, _ = u.content.RemoveFrame(frame.Seq())
	}

	if u.childCache != nil {
		u.childCache.Remove(id.String())
	}

	u.touch()
	u.addEvent(events.NewChildDetached(u.id, id, len(frames), u.updatedAt))

	return true, nil
}

// GetChildren resolves the child frames in seq order. Each id is looked
// up in the resolution cache first and through the resolver on a miss;
// ids that resolve nowhere are skipped, since a child may have been
// deleted from the registry after its frame was added.
func (u *Unit) GetChildren() ([]*Unit, error) {
	if err := u.requireComposite("get_children"); err != nil {
		return nil, err
	}

	frames := u.content.GetFramesByType(valueobjects.FrameTypeChild)
	children := make([]*Unit, 0, len(frames))
	seen := make(map[string]bool, len(frames))

	for _, frame := range frames {
		key := frame.RefID().String()
		if seen[key] {
			continue
		}
		seen[key] = true

		if u.childCache != nil {
			if child, ok := u.childCache.Get(key); ok {
				children = append(children, child)
				continue
			}
		}

		if u.resolver != nil {
			if child, ok := u.resolver.Resolve(frame.RefID()); ok {
				u.cacheChild(child)
				children = append(children, child)
				continue
			}
		}

		u.logger.Debug("child frame skipped, id resolves nowhere",
			zap.String("parent_id", u.id.String()),
			zap.String("child_id", key),
		)
	}

	return children, nil
}

// ChildIDs returns the distinct referenced child ids in seq order.
// Composite mode only.
func (u *Unit) ChildIDs() ([]valueobjects.UnitID, error) {
	if err := u.requireComposite("get_children"); err != nil {
		return nil, err
	}

	frames := u.content.GetFramesByType(valueobjects.FrameTypeChild)
	ids := make([]valueobjects.UnitID, 0, len(frames))
	seen := make(map[string]bool, len(frames))

	for _, frame := range frames {
		key := frame.RefID().String()
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, frame.RefID())
	}

	return ids, nil
}

// AddLocal caches an atomic unit in the content's local cache. Valid in
// either mode; only atomic units may be owned locally.
func (u *Unit) AddLocal(local *Unit) (int, error) {
	if local == nil {
		return 0, pkgerrors.NewValidationError("LOCAL_REQUIRED", "cannot cache a nil unit")
	}
	if !local.IsAtomic() {
		return 0, pkgerrors.NewValidationError("COMPOSITE_LOCAL", "only atomic units may be cached locally").
			WithDetail("unit_id", local.ID().String())
	}

	seq, err := u.content.AddLocalUnit(local)
	if err != nil {
		return 0, err
	}

	u.touch()
	u.addEvent(events.NewLocalAttached(u.id, local.ID(), seq, u.updatedAt))

	return seq, nil
}

// RemoveLocal removes a locally cached unit and all frames referencing
// it. Valid in either mode.
func (u *Unit) RemoveLocal(id valueobjects.UnitID) error {
	if err := u.content.RemoveLocalUnit(id); err != nil {
		return err
	}

	u.touch()
	u.addEvent(events.NewLocalDetached(u.id, id, u.updatedAt))

	return nil
}

// GetLocals returns the locally cached units. Valid in either mode.
func (u *Unit) GetLocals() []*Unit {
	return u.content.GetLocalUnits()
}

// Content passthroughs. Valid in either mode: atomic units hold frames
// too once locals are cached on them.

// Frames returns the content's frames in seq order
func (u *Unit) Frames() []*Frame {
	return u.content.Frames()
}

// MainFrame returns the lowest-seq frame
func (u *Unit) MainFrame() (*Frame, bool) {
	return u.content.GetMainFrame()
}

// MoveFrame renumbers the frame at fromSeq to sit at toSeq
func (u *Unit) MoveFrame(fromSeq, toSeq int) error {
	if err := u.content.MoveFrame(fromSeq, toSeq); err != nil {
		return err
	}
	u.touch()
	return nil
}

// UpdateFrame applies a partial update to the frame at seq
func (u *Unit) UpdateFrame(seq int, update FrameUpdate) bool {
	if !u.content.UpdateFrame(seq, update) {
		return false
	}
	u.touch()
	return true
}

// RemoveFrame removes the frame at seq and returns it
func (u *Unit) RemoveFrame(seq int) (*Frame, error) {
	frame, err := u.content.RemoveFrame(seq)
	if err != nil {
		return nil, err
	}
	u.touch()
	return frame, nil
}

// ValidateContent reports whether the content's indices are coherent,
// with the orphan seqs and ghost ids found
func (u *Unit) ValidateContent() (bool, []int, []string) {
	return u.content.Validate()
}

// RepairContent prunes orphaned frames and relinks ghost locals
func (u *Unit) RepairContent() error {
	if err := u.content.Repair(); err != nil {
		return err
	}
	u.touch()
	return nil
}

// Summary returns a serializable snapshot of the unit
func (u *Unit) Summary() UnitSummary {
	s := UnitSummary{
		ID:          u.id.String(),
		Name:        u.name,
		Description: u.description,
		Kind:        u.Mode(),
		FrameCount:  u.content.FrameCount(),
		ChildCount:  len(u.content.GetFramesByType(valueobjects.FrameTypeChild)),
		LocalCount:  u.content.LocalCount(),
	}

	if u.atomic && !u.payload.IsZero() {
		s.ContentType = u.payload.ContentType()
		s.Preview = u.payload.Summary(80)
	}

	return s
}

// GetUncommittedEvents returns all uncommitted domain events
func (u *Unit) GetUncommittedEvents() []events.DomainEvent {
	return u.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (u *Unit) MarkEventsAsCommitted() {
	u.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (u *Unit) addEvent(event events.DomainEvent) {
	u.events = append(u.events, event)
}

func (u *Unit) touch() {
	u.updatedAt = time.Now()
}

func (u *Unit) requireAtomic(operation string) error {
	if !u.atomic {
		return pkgerrors.NewInvalidModeError(operation, ModeComposite)
	}
	return nil
}

func (u *Unit) requireComposite(operation string) error {
	if u.atomic {
		return pkgerrors.NewInvalidModeError(operation, ModeAtomic)
	}
	return nil
}

func (u *Unit) cacheChild(child *Unit) {
	if u.childCache == nil {
		cache, err := lru.New[string, *Unit](config.DefaultDomainConfig().ChildCacheSize)
		if err != nil {
			return
		}
		u.childCache = cache
	}
	u.childCache.Add(child.ID().String(), child)
}
