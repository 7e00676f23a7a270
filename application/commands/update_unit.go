package commands

import "errors"

// UpdateUnitCommand represents the command to update a unit's descriptive
// fields or its content. Empty fields are left unchanged.
type UpdateUnitCommand struct {
	UnitID      string `json:"unit_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"max=255"`
	Description string `json:"description" validate:"max=10000"`
	Content     string `json:"content" validate:"max=50000"`
	ContentType string `json:"content_type" validate:"max=100"`
}

// Validate validates the command
func (cmd UpdateUnitCommand) Validate() error {
	if cmd.UnitID == "" {
		return errors.New("unit ID is required")
	}
	if cmd.Name == "" && cmd.Description == "" && cmd.Content == "" && cmd.ContentType == "" {
		return errors.New("at least one field to update is required")
	}
	return nil
}
