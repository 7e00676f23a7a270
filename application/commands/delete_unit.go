package commands

import "errors"

// DeleteUnitCommand represents the command to remove a unit from the registry
type DeleteUnitCommand struct {
	UnitID string `json:"unit_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeleteUnitCommand) Validate() error {
	if cmd.UnitID == "" {
		return errors.New("unit ID is required")
	}
	return nil
}
