package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workable/application/commands"
	"workable/application/ports"
	"workable/domain/core/aggregates"
	"workable/domain/core/entities"
	"workable/domain/core/validators"
	"workable/domain/core/valueobjects"
	"workable/domain/events"
	pkgerrors "workable/pkg/errors"
	"workable/pkg/utils"
)

// UnitService drives the registry aggregate on behalf of the interfaces
// layer. It validates commands, applies them, and publishes the drained
// domain events on the bus.
type UnitService struct {
	registry  *aggregates.Registry
	eventBus  ports.EventBus
	validator *validators.UnitValidator
	logger    *zap.Logger
}

// NewUnitService creates a new unit service
func NewUnitService(
	registry *aggregates.Registry,
	eventBus ports.EventBus,
	validator *validators.UnitValidator,
	logger *zap.Logger,
) *UnitService {
	if validator == nil {
		validator = validators.NewUnitValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{
		registry:  registry,
		eventBus:  eventBus,
		validator: validator,
		logger:    logger,
	}
}

// Registry exposes the aggregate for read-only callers such as exporters
func (s *UnitService) Registry() *aggregates.Registry {
	return s.registry
}

// CreateUnit creates a unit and registers it
func (s *UnitService) CreateUnit(ctx context.Context, cmd commands.CreateUnitCommand) (*entities.Unit, error) {
	if err := s.checkCommand(cmd); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFields(cmd.Name, cmd.Description, cmd.ContentType); err != nil {
		return nil, err
	}

	unit, err := s.registry.Create(aggregates.CreateUnitParams{
		Name:        cmd.Name,
		Description: cmd.Description,
		Atomic:      cmd.Atomic,
		Content:     cmd.Content,
		ContentType: cmd.ContentType,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx)

	s.logger.Info("Unit created",
		zap.String("unitID", unit.ID().String()),
		zap.String("name", unit.Name()),
		zap.Bool("atomic", unit.IsAtomic()),
	)

	return unit, nil
}

// UpdateUnit applies name, description, and content updates to a unit.
// Empty command fields are left unchanged.
func (s *UnitService) UpdateUnit(ctx context.Context, cmd commands.UpdateUnitCommand) error {
	if err := s.checkCommand(cmd); err != nil {
		return err
	}

	unit, err := s.fetchUnit(cmd.UnitID)
	if err != nil {
		return err
	}

	if cmd.Name != "" || cmd.Description != "" {
		name := orCurrent(cmd.Name, unit.Name())
		description := orCurrent(cmd.Description, unit.Description())
		if err := s.validator.ValidateFields(name, description, ""); err != nil {
			return err
		}
		unit.Rename(cmd.Name)
		unit.Redescribe(cmd.Description)
	}

	if cmd.Content != "" || cmd.ContentType != "" {
		body, contentType := cmd.Content, cmd.ContentType
		if current, err := unit.Payload(); err == nil {
			body = orCurrent(cmd.Content, current.Body())
			contentType = orCurrent(cmd.ContentType, current.ContentType())
		}
		payload, err := valueobjects.NewPayload(body, contentType)
		if err != nil {
			return pkgerrors.NewValidationError("INVALID_PAYLOAD", err.Error())
		}
		if err := s.validator.ValidatePayload(payload); err != nil {
			return err
		}
		if err := unit.SetPayload(payload); err != nil {
			return err
		}
	}

	s.publishEvents(ctx)

	s.logger.Info("Unit updated", zap.String("unitID", cmd.UnitID))
	return nil
}

// ConvertUnit switches a unit between atomic and composite in place
func (s *UnitService) ConvertUnit(ctx context.Context, cmd commands.ConvertUnitCommand) error {
	if err := s.checkCommand(cmd); err != nil {
		return err
	}

	unit, err := s.fetchUnit(cmd.UnitID)
	if err != nil {
		return err
	}

	switch cmd.Direction {
	case commands.DirectionComplex:
		err = unit.MakeComplex()
	case commands.DirectionSimple:
		err = unit.MakeSimple()
	}
	if err != nil {
		return err
	}

	s.publishEvents(ctx)

	s.logger.Info("Unit converted",
		zap.String("unitID", cmd.UnitID),
		zap.String("direction", cmd.Direction),
	)
	return nil
}

// AttachChild references a registered unit as a child of another and
// returns the seq of the new child frame
func (s *UnitService) AttachChild(ctx context.Context, cmd commands.AttachChildCommand) (int, error) {
	if err := s.checkCommand(cmd); err != nil {
		return 0, err
	}

	parent, err := s.fetchUnit(cmd.ParentID)
	if err != nil {
		return 0, err
	}
	child, err := s.fetchUnit(cmd.ChildID)
	if err != nil {
		return 0, err
	}

	seq, err := parent.AddChild(child)
	if err != nil {
		return 0, err
	}

	s.publishEvents(ctx)

	s.logger.Info("Child attached",
		zap.String("parentID", cmd.ParentID),
		zap.String("childID", cmd.ChildID),
		zap.Int("seq", seq),
	)
	return seq, nil
}

// AttachLocal creates a private helper unit and attaches it to the
// owner's content. The local never enters the registry.
func (s *UnitService) AttachLocal(ctx context.Context, cmd commands.AttachLocalCommand) (*entities.Unit, error) {
	if err := s.checkCommand(cmd); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateFields(cmd.Name, cmd.Description, cmd.ContentType); err != nil {
		return nil, err
	}

	owner, err := s.fetchUnit(cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	payload := valueobjects.Payload{}
	if cmd.Content != "" || cmd.ContentType != "" {
		payload, err = valueobjects.NewPayload(cmd.Content, cmd.ContentType)
		if err != nil {
			return nil, pkgerrors.NewValidationError("INVALID_PAYLOAD", err.Error())
		}
	}

	local, err := entities.NewAtomicUnit(cmd.Name, cmd.Description, payload)
	if err != nil {
		return nil, err
	}

	seq, err := owner.AddLocal(local)
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, local.GetUncommittedEvents()...)
	local.MarkEventsAsCommitted()

	s.logger.Info("Local unit attached",
		zap.String("ownerID", cmd.OwnerID),
		zap.String("localID", local.ID().String()),
		zap.Int("seq", seq),
	)
	return local, nil
}

// DeleteUnit removes a unit from the registry and strips the child
// frames that referenced it
func (s *UnitService) DeleteUnit(ctx context.Context, cmd commands.DeleteUnitCommand) error {
	if err := s.checkCommand(cmd); err != nil {
		return err
	}

	id, err := valueobjects.NewUnitIDFromString(cmd.UnitID)
	if err != nil {
		return fmt.Errorf("invalid unit ID: %w", err)
	}

	if !s.registry.Delete(id) {
		return notFound(cmd.UnitID)
	}

	s.publishEvents(ctx)

	s.logger.Info("Unit deleted", zap.String("unitID", cmd.UnitID))
	return nil
}

// MoveFrame reorders a unit's content by moving the frame at fromSeq to
// toSeq, shifting the frames in between
func (s *UnitService) MoveFrame(ctx context.Context, unitID string, fromSeq, toSeq int) error {
	unit, err := s.fetchUnit(unitID)
	if err != nil {
		return err
	}

	if err := unit.MoveFrame(fromSeq, toSeq); err != nil {
		return err
	}

	moved := events.NewFrameMoved(unit.ID(), fromSeq, toSeq, time.Now())
	s.publishEvents(ctx, moved)

	s.logger.Info("Frame moved",
		zap.String("unitID", unitID),
		zap.Int("from", fromSeq),
		zap.Int("to", toSeq),
	)
	return nil
}

// RepairUnit prunes orphaned local frames and relinks ghost locals so
// that the unit's content passes validation again. It reports how many
// of each were fixed.
func (s *UnitService) RepairUnit(ctx context.Context, unitID string) (int, int, error) {
	unit, err := s.fetchUnit(unitID)
	if err != nil {
		return 0, 0, err
	}

	valid, orphans, ghosts := unit.ValidateContent()
	if valid {
		return 0, 0, nil
	}

	if err := unit.RepairContent(); err != nil {
		return 0, 0, err
	}

	repaired := events.NewContentRepaired(unit.ID(), len(orphans), len(ghosts), time.Now())
	s.publishEvents(ctx, repaired)

	s.logger.Info("Unit content repaired",
		zap.String("unitID", unitID),
		zap.Int("orphansPruned", len(orphans)),
		zap.Int("ghostsRelinked", len(ghosts)),
	)
	return len(orphans), len(ghosts), nil
}

// Private helper methods

// command is the contract every application command satisfies
type command interface {
	Validate() error
}

// checkCommand runs both the structural Validate method and the
// tag-based struct validation
func (s *UnitService) checkCommand(cmd command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	if err := utils.ValidateStruct(cmd); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	return nil
}

// fetchUnit parses the id and looks the unit up in the registry
func (s *UnitService) fetchUnit(unitID string) (*entities.Unit, error) {
	id, err := valueobjects.NewUnitIDFromString(unitID)
	if err != nil {
		return nil, fmt.Errorf("invalid unit ID: %w", err)
	}

	unit, ok := s.registry.Get(id)
	if !ok {
		return nil, notFound(unitID)
	}
	return unit, nil
}

// publishEvents drains the uncommitted events of the registry and its
// units, appends any extra events, and publishes the batch
func (s *UnitService) publishEvents(ctx context.Context, extra ...events.DomainEvent) {
	evts := s.registry.GetUncommittedEvents()
	evts = append(evts, extra...)
	if len(evts) == 0 {
		return
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, evts...); err != nil {
			s.logger.Warn("Failed to publish events",
				zap.Int("count", len(evts)),
				zap.Error(err),
			)
		}
	}

	s.registry.MarkEventsAsCommitted()
}

func notFound(unitID string) error {
	return pkgerrors.NewNotFoundError(
		"UNIT_NOT_FOUND",
		fmt.Sprintf("unit %s is not registered", unitID),
	).WithDetail("unit_id", unitID)
}

func orCurrent(updated, current string) string {
	if updated == "" {
		return current
	}
	return updated
}
