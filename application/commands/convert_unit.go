package commands

import "errors"

// Conversion directions name the target mode
const (
	DirectionSimple  = "simple"
	DirectionComplex = "complex"
)

// ConvertUnitCommand represents the command to convert a unit between modes
type ConvertUnitCommand struct {
	UnitID    string `json:"unit_id" validate:"required,uuid"`
	Direction string `json:"direction" validate:"required,oneof=simple complex"`
}

// Validate validates the command
func (cmd ConvertUnitCommand) Validate() error {
	if cmd.UnitID == "" {
		return errors.New("unit ID is required")
	}
	if cmd.Direction != DirectionSimple && cmd.Direction != DirectionComplex {
		return errors.New("direction must be simple or complex")
	}
	return nil
}
