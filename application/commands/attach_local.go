package commands

import "errors"

// AttachLocalCommand represents the command to create a private helper unit
// and attach it to the owner's content. Locals are never registered. The
// description is required because the local is anchored by a frame
// immediately, and frames denormalize both name and description.
type AttachLocalCommand struct {
	OwnerID     string `json:"owner_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required,min=1,max=10000"`
	Content     string `json:"content" validate:"max=50000"`
	ContentType string `json:"content_type" validate:"max=100"`
}

// Validate validates the command
func (cmd AttachLocalCommand) Validate() error {
	if cmd.OwnerID == "" {
		return errors.New("owner ID is required")
	}
	if cmd.Name == "" {
		return errors.New("local unit name is required")
	}
	if cmd.Description == "" {
		return errors.New("local unit description is required")
	}
	return nil
}
