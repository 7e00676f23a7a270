package entities

import (
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"workable/domain/core/valueobjects"
	pkgerrors "workable/pkg/errors"
)

// Content is the frame index a unit owns. It keeps a primary seq index
// and two secondary indices (by referenced id, by frame type) plus the
// local cache of owned units.
//
// Two invariants tie the cache to the frames: every local-type frame
// references a cached unit (no orphans), and every cached unit is
// referenced by at least one local-type frame (no ghosts). Validate
// reports violations, Repair restores them.
type Content struct {
	framesBySeq  map[int]*Frame
	framesByRef  map[string]map[int]struct{}
	framesByType map[valueobjects.FrameType]map[int]struct{}
	localCache   map[string]*Unit
	nextSeq      int
	logger       *zap.Logger
}

// FrameUpdate carries a partial frame update. Empty string fields and a
// nil metadata map leave the corresponding frame attribute untouched;
// a non-nil metadata map is merged key by key.
type FrameUpdate struct {
	Name        string
	Description string
	Metadata    map[string]interface{}
}

// NewContent creates an empty content index
func NewContent() *Content {
	return &Content{
		framesBySeq:  make(map[int]*Frame),
		framesByRef:  make(map[string]map[int]struct{}),
		framesByType: make(map[valueobjects.FrameType]map[int]struct{}),
		localCache:   make(map[string]*Unit),
		logger:       zap.NewNop(),
	}
}

// SetLogger replaces the content's logger
func (c *Content) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// AddFrame validates and indexes a new frame, returning its seq.
// Sequences are allocated by a strictly increasing counter, so removals
// leave gaps rather than renumbering.
func (c *Content) AddFrame(name, description string, frameType valueobjects.FrameType, refID valueobjects.UnitID, metadata map[string]interface{}) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, pkgerrors.NewContentError("FRAME_NAME_REQUIRED", "frame name is required")
	}
	if strings.TrimSpace(description) == "" {
		return 0, pkgerrors.NewContentError("FRAME_DESCRIPTION_REQUIRED", "frame description is required")
	}
	if !frameType.IsValid() {
		return 0, pkgerrors.NewContentError("FRAME_TYPE_INVALID", "unknown frame type").
			WithDetail("frame_type", string(frameType))
	}
	if frameType.RequiresRef() && refID.IsZero() {
		return 0, pkgerrors.NewContentError("FRAME_REF_REQUIRED", "a typed frame requires a referenced unit id").
			WithDetail("frame_type", frameType.String())
	}

	seq := c.nextSeq
	c.nextSeq++

	frame := newFrame(seq, frameType, refID, name, description, metadata)
	c.framesBySeq[seq] = frame
	c.indexFrame(frame)

	return seq, nil
}

// AddLocalUnit caches a unit and registers the local frame that anchors
// it. The frame is created first so a failed add leaves the cache
// untouched.
func (c *Content) AddLocalUnit(unit *Unit) (int, error) {
	if unit == nil {
		return 0, pkgerrors.NewContentError("LOCAL_UNIT_REQUIRED", "cannot cache a nil unit")
	}

	key := unit.ID().String()
	if _, exists := c.localCache[key]; exists {
		return 0, pkgerrors.NewContentError("DUPLICATE_LOCAL_UNIT", "a unit with this id is already cached locally").
			WithDetail("unit_id", key)
	}

	seq, err := c.AddFrame(unit.Name(), unit.Description(), valueobjects.FrameTypeLocal, unit.ID(), nil)
	if err != nil {
		return 0, err
	}

	c.localCache[key] = unit
	return seq, nil
}

// GetFrame returns the frame at seq
func (c *Content) GetFrame(seq int) (*Frame, bool) {
	frame, ok := c.framesBySeq[seq]
	return frame, ok
}

// GetMainFrame returns the frame with the lowest seq
func (c *Content) GetMainFrame() (*Frame, bool) {
	if len(c.framesBySeq) == 0 {
		return nil, false
	}

	best := -1
	for seq := range c.framesBySeq {
		if best < 0 || seq < best {
			best = seq
		}
	}
	return c.framesBySeq[best], true
}

// GetFramesByRef returns the frames referencing id in seq order,
// optionally filtered by frame type
func (c *Content) GetFramesByRef(id valueobjects.UnitID, types ...valueobjects.FrameType) []*Frame {
	seqs, ok := c.framesByRef[id.String()]
	if !ok {
		return nil
	}

	frames := make([]*Frame, 0, len(seqs))
	for seq := range seqs {
		frame := c.framesBySeq[seq]
		if len(types) > 0 && !frameTypeMatches(frame.frameType, types) {
			continue
		}
		frames = append(frames, frame)
	}

	sortFrames(frames)
	return frames
}

// GetFramesByType returns the frames of the given type in seq order
func (c *Content) GetFramesByType(frameType valueobjects.FrameType) []*Frame {
	seqs, ok := c.framesByType[frameType]
	if !ok {
		return nil
	}

	frames := make([]*Frame, 0, len(seqs))
	for seq := range seqs {
		frames = append(frames, c.framesBySeq[seq])
	}

	sortFrames(frames)
	return frames
}

// Frames returns every frame in seq order
func (c *Content) Frames() []*Frame {
	frames := make([]*Frame, 0, len(c.framesBySeq))
	for _, frame := range c.framesBySeq {
		frames = append(frames, frame)
	}

	sortFrames(frames)
	return frames
}

// FrameCount returns the number of frames
func (c *Content) FrameCount() int {
	return len(c.framesBySeq)
}

// GetLocalUnit returns a locally cached unit
func (c *Content) GetLocalUnit(id valueobjects.UnitID) (*Unit, bool) {
	unit, ok := c.localCache[id.String()]
	return unit, ok
}

// GetLocalUnits returns the cached units ordered by their earliest local
// frame; cached units without a frame (ghosts) follow, sorted by id
func (c *Content) GetLocalUnits() []*Unit {
	units := make([]*Unit, 0, len(c.localCache))
	seen := make(map[string]bool, len(c.localCache))

	for _, frame := range c.GetFramesByType(valueobjects.FrameTypeLocal) {
		key := frame.refID.String()
		if seen[key] {
			continue
		}
		if unit, ok := c.localCache[key]; ok {
			units = append(units, unit)
			seen[key] = true
		}
	}

	var ghosts []string
	for key := range c.localCache {
		if !seen[key] {
			ghosts = append(ghosts, key)
		}
	}
	sort.Strings(ghosts)
	for _, key := range ghosts {
		units = append(units, c.localCache[key])
	}

	return units
}

// LocalCount returns the number of cached units
func (c *Content) LocalCount() int {
	return len(c.localCache)
}

// UpdateFrame applies a partial update to the frame at seq. Returns
// false when no such frame exists.
func (c *Content) UpdateFrame(seq int, update FrameUpdate) bool {
	frame, ok := c.framesBySeq[seq]
	if !ok {
		return false
	}

	if update.Name != "" {
		frame.name = update.Name
	}
	if update.Description != "" {
		frame.description = update.Description
	}
	if update.Metadata != nil {
		frame.mergeMetadata(update.Metadata)
	}

	return true
}

// UpdateUnit updates a cached unit's name and description and resyncs
// the denormalized copies on every frame referencing it. Empty strings
// leave the corresponding attribute unchanged.
func (c *Content) UpdateUnit(id valueobjects.UnitID, name, description string) error {
	key := id.String()
	unit, ok := c.localCache[key]
	if !ok {
		return pkgerrors.NewContentError("LOCAL_UNIT_NOT_FOUND", "no locally cached unit with this id").
			WithDetail("unit_id", key)
	}

	if name != "" {
		unit.Rename(name)
	}
	if description != "" {
		unit.Redescribe(description)
	}

	for seq := range c.framesByRef[key] {
		frame := c.framesBySeq[seq]
		if name != "" {
			frame.name = name
		}
		if description != "" {
			frame.description = description
		}
	}

	return nil
}

// RemoveFrame removes the frame at seq from all indices and returns it.
// The local cache is not consulted: dropping the last local frame of a
// cached unit deliberately leaves a ghost for Validate/Repair.
func (c *Content) RemoveFrame(seq int) (*Frame, error) {
	frame, ok := c.framesBySeq[seq]
	if !ok {
		return nil, pkgerrors.NewContentError("FRAME_NOT_FOUND", "no frame exists at the requested sequence").
			WithDetail("seq", seq)
	}

	delete(c.framesBySeq, seq)
	c.deindexFrame(frame)

	return frame, nil
}

// RemoveLocalUnit removes the cached unit and every frame referencing
// it, whatever the frame type or count
func (c *Content) RemoveLocalUnit(id valueobjects.UnitID) error {
	key := id.String()
	if _, ok := c.localCache[key]; !ok {
		return pkgerrors.NewContentError("LOCAL_UNIT_NOT_FOUND", "no locally cached unit with this id").
			WithDetail("unit_id", key)
	}

	seqs := make([]int, 0, len(c.framesByRef[key]))
	for seq := range c.framesByRef[key] {
		seqs = append(seqs, seq)
	}
	for _, seq := range seqs {
		frame := c.framesBySeq[seq]
		delete(c.framesBySeq, seq)
		c.deindexFrame(frame)
	}

	delete(c.localCache, key)
	return nil
}

// MoveFrame renumbers the frame at fromSeq to sit at toSeq, shifting
// every frame strictly between them by one toward the vacated slot and
// rewriting the affected index entries. The next-seq counter is
// recomputed afterward, so a move can lower the allocation point.
func (c *Content) MoveFrame(fromSeq, toSeq int) error {
	frame, ok := c.framesBySeq[fromSeq]
	if !ok {
		return pkgerrors.NewContentError("FRAME_NOT_FOUND", "no frame exists at the requested sequence").
			WithDetail("seq", fromSeq)
	}

	max := c.maxSeq()
	if toSeq < 0 || toSeq > max {
		return pkgerrors.NewContentError("SEQ_OUT_OF_RANGE", "target sequence is outside the frame range").
			WithDetail("to_seq", toSeq).
			WithDetail("max_seq", max)
	}

	if fromSeq == toSeq {
		return nil
	}

	type placement struct {
		frame  *Frame
		newSeq int
	}

	var moved []placement
	if fromSeq < toSeq {
		for seq := fromSeq + 1; seq <= toSeq; seq++ {
			if f, ok := c.framesBySeq[seq]; ok {
				moved = append(moved, placement{f, seq - 1})
			}
		}
	} else {
		for seq := toSeq; seq < fromSeq; seq++ {
			if f, ok := c.framesBySeq[seq]; ok {
				moved = append(moved, placement{f, seq + 1})
			}
		}
	}
	moved = append(moved, placement{frame, toSeq})

	// Vacate every affected slot before reinserting to avoid transient
	// collisions between old and new seqs.
	for _, p := range moved {
		delete(c.framesBySeq, p.frame.seq)
		c.deindexFrame(p.frame)
	}
	for _, p := range moved {
		p.frame.seq = p.newSeq
		c.framesBySeq[p.newSeq] = p.frame
		c.indexFrame(p.frame)
	}

	c.nextSeq = c.maxSeq() + 1

	c.logger.Debug("frame moved",
		zap.Int("from_seq", fromSeq),
		zap.Int("to_seq", toSeq),
		zap.Int("shifted", len(moved)-1),
	)

	return nil
}

// Validate checks the cache/frame invariants. It returns overall
// validity, the seqs of orphaned local frames (ascending) and the ids
// of ghost cache entries (sorted). It never mutates.
func (c *Content) Validate() (bool, []int, []string) {
	var orphans []int
	for seq := range c.framesByType[valueobjects.FrameTypeLocal] {
		frame := c.framesBySeq[seq]
		if _, ok := c.localCache[frame.refID.String()]; !ok {
			orphans = append(orphans, seq)
		}
	}
	sort.Ints(orphans)

	var ghosts []string
	for key := range c.localCache {
		anchored := false
		for seq := range c.framesByRef[key] {
			if c.framesBySeq[seq].frameType == valueobjects.FrameTypeLocal {
				anchored = true
				break
			}
		}
		if !anchored {
			ghosts = append(ghosts, key)
		}
	}
	sort.Strings(ghosts)

	return len(orphans) == 0 && len(ghosts) == 0, orphans, ghosts
}

// Repair restores the cache/frame invariants: orphaned local frames are
// deleted and a local frame is synthesized for every ghost from the
// cached unit's own name and description. Repairing a valid content is
// a no-op, so Repair is idempotent.
func (c *Content) Repair() error {
	valid, orphans, ghosts := c.Validate()
	if valid {
		return nil
	}

	var errs error
	for _, seq := range orphans {
		if _, err := c.RemoveFrame(seq); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	for _, key := range ghosts {
		unit := c.localCache[key]
		if _, err := c.AddFrame(unit.Name(), unit.Description(), valueobjects.FrameTypeLocal, unit.ID(), nil); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		return pkgerrors.NewContentError("REPAIR_INCOMPLETE", "content repair did not complete").
			WithCause(errs)
	}

	c.logger.Info("content repaired",
		zap.Int("orphans_pruned", len(orphans)),
		zap.Int("ghosts_relinked", len(ghosts)),
	)

	return nil
}

// ClearFrames drops all frames and restarts seq allocation. The local
// cache survives, so previously anchored units become ghosts until the
// content is repaired.
func (c *Content) ClearFrames() {
	c.framesBySeq = make(map[int]*Frame)
	c.framesByRef = make(map[string]map[int]struct{})
	c.framesByType = make(map[valueobjects.FrameType]map[int]struct{})
	c.nextSeq = 0
}

// Clear drops frames and the local cache both
func (c *Content) Clear() {
	c.ClearFrames()
	c.localCache = make(map[string]*Unit)
}

// clearLocals drops every local-type frame and empties the cache.
// Frames of other types survive.
func (c *Content) clearLocals() {
	for _, frame := range c.GetFramesByType(valueobjects.FrameTypeLocal) {
		delete(c.framesBySeq, frame.seq)
		c.deindexFrame(frame)
	}
	c.localCache = make(map[string]*Unit)
}

func (c *Content) indexFrame(frame *Frame) {
	if !frame.refID.IsZero() {
		key := frame.refID.String()
		if c.framesByRef[key] == nil {
			c.framesByRef[key] = make(map[int]struct{})
		}
		c.framesByRef[key][frame.seq] = struct{}{}
	}

	if c.framesByType[frame.frameType] == nil {
		c.framesByType[frame.frameType] = make(map[int]struct{})
	}
	c.framesByType[frame.frameType][frame.seq] = struct{}{}
}

func (c *Content) deindexFrame(frame *Frame) {
	if !frame.refID.IsZero() {
		key := frame.refID.String()
		delete(c.framesByRef[key], frame.seq)
		if len(c.framesByRef[key]) == 0 {
			delete(c.framesByRef, key)
		}
	}

	delete(c.framesByType[frame.frameType], frame.seq)
	if len(c.framesByType[frame.frameType]) == 0 {
		delete(c.framesByType, frame.frameType)
	}
}

func (c *Content) maxSeq() int {
	max := -1
	for seq := range c.framesBySeq {
		if seq > max {
			max = seq
		}
	}
	return max
}

func sortFrames(frames []*Frame) {
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].seq < frames[j].seq
	})
}

func frameTypeMatches(ft valueobjects.FrameType, types []valueobjects.FrameType) bool {
	for _, t := range types {
		if ft == t {
			return true
		}
	}
	return false
}
