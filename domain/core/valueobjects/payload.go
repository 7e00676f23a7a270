package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"workable/domain/config"
)

// Payload is a value object for the inline content an atomic unit
// carries. The zero value means "no payload".
type Payload struct {
	body        string
	contentType string
}

// NewPayload creates a payload with validation using default configuration.
// An empty content type falls back to the configured default.
func NewPayload(body, contentType string) (Payload, error) {
	return NewPayloadWithConfig(body, contentType, config.DefaultDomainConfig())
}

// NewPayloadWithConfig creates a payload with validation and configuration
func NewPayloadWithConfig(body, contentType string, cfg *config.DomainConfig) (Payload, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = cfg.DefaultContentType
	}

	if utf8.RuneCountInString(body) > cfg.MaxPayloadLength {
		return Payload{}, fmt.Errorf("payload body exceeds maximum length of %d characters", cfg.MaxPayloadLength)
	}

	return Payload{
		body:        body,
		contentType: contentType,
	}, nil
}

// Body returns the payload body
func (p Payload) Body() string {
	return p.body
}

// ContentType returns the payload content type
func (p Payload) ContentType() string {
	return p.contentType
}

// IsZero checks if the payload is absent
func (p Payload) IsZero() bool {
	return p.body == "" && p.contentType == ""
}

// Equals checks if two payloads are equal
func (p Payload) Equals(other Payload) bool {
	return p.body == other.body && p.contentType == other.contentType
}

// WithBody returns a copy of the payload carrying a new body
func (p Payload) WithBody(body string) Payload {
	return Payload{body: body, contentType: p.contentType}
}

// LineCount returns the number of lines in the body
func (p Payload) LineCount() int {
	if p.body == "" {
		return 0
	}
	return strings.Count(p.body, "\n") + 1
}

// Summary returns a truncated single-line preview of the body
func (p Payload) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	line := p.body
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	if utf8.RuneCountInString(line) <= maxLength {
		return line
	}

	runes := []rune(line)
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
