package commands

import "errors"

// AttachChildCommand represents the command to reference one registered unit
// as a child of another
type AttachChildCommand struct {
	ParentID string `json:"parent_id" validate:"required,uuid"`
	ChildID  string `json:"child_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd AttachChildCommand) Validate() error {
	if cmd.ParentID == "" {
		return errors.New("parent ID is required")
	}
	if cmd.ChildID == "" {
		return errors.New("child ID is required")
	}
	return nil
}
