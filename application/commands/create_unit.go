package commands

import "errors"

// CreateUnitCommand represents the command to create and register a new unit
type CreateUnitCommand struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=10000"`
	Atomic      bool   `json:"atomic"`
	Content     string `json:"content" validate:"max=50000"`
	ContentType string `json:"content_type" validate:"max=100"`
}

// Validate validates the command
func (cmd CreateUnitCommand) Validate() error {
	if cmd.Name == "" {
		return errors.New("unit name is required")
	}
	if len(cmd.Name) > MaxNameLength {
		return errors.New("unit name exceeds maximum length")
	}
	if !cmd.Atomic && (cmd.Content != "" || cmd.ContentType != "") {
		return errors.New("composite units cannot carry content")
	}
	return nil
}

const (
	MaxNameLength    = 255
	MaxContentLength = 50000
)
