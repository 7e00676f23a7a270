package valueobjects

// FrameType classifies what a frame points at
type FrameType string

const (
	// FrameTypeReference marks a frame pointing at an externally
	// registered unit without ownership semantics
	FrameTypeReference FrameType = "reference"

	// FrameTypeChild marks a frame pointing at a child unit resolved
	// through the registry
	FrameTypeChild FrameType = "child"

	// FrameTypeLocal marks a frame pointing at a unit owned by the
	// surrounding content's local cache
	FrameTypeLocal FrameType = "local"

	// FrameTypeNone is an untyped placeholder frame; the only frame
	// type that does not require a referenced id
	FrameTypeNone FrameType = ""
)

// IsValid reports whether the frame type is one of the known values
func (t FrameType) IsValid() bool {
	switch t {
	case FrameTypeReference, FrameTypeChild, FrameTypeLocal, FrameTypeNone:
		return true
	default:
		return false
	}
}

// RequiresRef reports whether frames of this type must carry a
// referenced unit id
func (t FrameType) RequiresRef() bool {
	return t != FrameTypeNone
}

// String returns the string representation of the frame type
func (t FrameType) String() string {
	if t == FrameTypeNone {
		return "none"
	}
	return string(t)
}
