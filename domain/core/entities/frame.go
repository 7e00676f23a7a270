package entities

import (
	"github.com/mitchellh/mapstructure"

	"workable/domain/core/valueobjects"
)

// Frame is an ordered, annotated reference held by a Content. The seq is
// unique within one Content and is owned by the Content's indices; frames
// are only reachable through them.
type Frame struct {
	seq         int
	frameType   valueobjects.FrameType
	refID       valueobjects.UnitID
	name        string
	description string
	metadata    map[string]interface{}
}

// newFrame builds a frame for the surrounding Content. Argument checks
// live in Content.AddFrame.
func newFrame(seq int, frameType valueobjects.FrameType, refID valueobjects.UnitID, name, description string, metadata map[string]interface{}) *Frame {
	md := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return &Frame{
		seq:         seq,
		frameType:   frameType,
		refID:       refID,
		name:        name,
		description: description,
		metadata:    md,
	}
}

// Seq returns the frame's position key
func (f *Frame) Seq() int {
	return f.seq
}

// Type returns the frame's type
func (f *Frame) Type() valueobjects.FrameType {
	return f.frameType
}

// RefID returns the referenced unit id; zero for untyped placeholder frames
func (f *Frame) RefID() valueobjects.UnitID {
	return f.refID
}

// Name returns the denormalized name of the referent
func (f *Frame) Name() string {
	return f.name
}

// Description returns the denormalized description of the referent
func (f *Frame) Description() string {
	return f.description
}

// Metadata returns a copy of the frame's metadata
func (f *Frame) Metadata() map[string]interface{} {
	md := make(map[string]interface{}, len(f.metadata))
	for k, v := range f.metadata {
		md[k] = v
	}
	return md
}

// MetadataValue returns a single metadata value
func (f *Frame) MetadataValue(key string) (interface{}, bool) {
	v, ok := f.metadata[key]
	return v, ok
}

// SetMetadataValue sets a single metadata key
func (f *Frame) SetMetadataValue(key string, value interface{}) {
	f.metadata[key] = value
}

// DecodeMetadata decodes the frame's metadata into a typed struct
func (f *Frame) DecodeMetadata(out interface{}) error {
	return mapstructure.Decode(f.metadata, out)
}

// mergeMetadata folds the given keys into the frame's metadata
func (f *Frame) mergeMetadata(metadata map[string]interface{}) {
	for k, v := range metadata {
		f.metadata[k] = v
	}
}
