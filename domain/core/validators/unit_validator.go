package validators

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"workable/domain/config"
	"workable/domain/core/valueobjects"
	pkgerrors "workable/pkg/errors"
)

var contentTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_+./-]+$`)

// UnitValidator validates unit-related domain rules. Limits come from
// the domain configuration, so the same validator serves every
// environment profile.
type UnitValidator struct {
	cfg *config.DomainConfig
}

// NewUnitValidator creates a validator with the default configuration
func NewUnitValidator() *UnitValidator {
	return NewUnitValidatorWithConfig(config.DefaultDomainConfig())
}

// NewUnitValidatorWithConfig creates a validator with explicit limits
func NewUnitValidatorWithConfig(cfg *config.DomainConfig) *UnitValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &UnitValidator{cfg: cfg}
}

// ValidateFields checks the mutable unit fields together and aggregates
// every violation instead of stopping at the first
func (v *UnitValidator) ValidateFields(name, description, contentType string) error {
	validationErrors := pkgerrors.NewValidationErrors()

	if err := v.ValidateName(name); err != nil {
		if domainErr, ok := pkgerrors.AsDomainError(err); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("name", err.Error())
		}
	}

	if err := v.ValidateDescription(description); err != nil {
		if domainErr, ok := pkgerrors.AsDomainError(err); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("description", err.Error())
		}
	}

	if err := v.ValidateContentType(contentType); err != nil {
		if domainErr, ok := pkgerrors.AsDomainError(err); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("content_type", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// ValidateName validates a unit name against the configured bounds
func (v *UnitValidator) ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) < v.cfg.MinNameLength {
		return pkgerrors.ErrUnitNameRequired
	}

	if utf8.RuneCountInString(name) > v.cfg.MaxNameLength {
		return pkgerrors.NewValidationError(
			"NAME_TOO_LONG",
			fmt.Sprintf("Unit name exceeds maximum length of %d characters", v.cfg.MaxNameLength),
		).WithDetail("field", "name").
			WithDetail("actual_length", utf8.RuneCountInString(name)).
			WithDetail("max_length", v.cfg.MaxNameLength)
	}

	return nil
}

// ValidateDescription validates a unit description
func (v *UnitValidator) ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		if v.cfg.AllowEmptyDescription {
			return nil
		}
		return pkgerrors.NewValidationError(
			"DESCRIPTION_REQUIRED",
			"Unit description is required",
		).WithDetail("field", "description")
	}

	if utf8.RuneCountInString(description) > v.cfg.MaxDescriptionLength {
		return pkgerrors.NewValidationError(
			"DESCRIPTION_TOO_LONG",
			fmt.Sprintf("Unit description exceeds maximum length of %d characters", v.cfg.MaxDescriptionLength),
		).WithDetail("field", "description").
			WithDetail("actual_length", utf8.RuneCountInString(description)).
			WithDetail("max_length", v.cfg.MaxDescriptionLength)
	}

	return nil
}

// ValidateContentType validates a payload content type. Empty is fine,
// the configured default applies downstream.
func (v *UnitValidator) ValidateContentType(contentType string) error {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil
	}

	if len(contentType) > 100 {
		return pkgerrors.NewValidationError(
			"CONTENT_TYPE_TOO_LONG",
			"Content type exceeds maximum length of 100 characters",
		).WithDetail("field", "content_type")
	}

	if !contentTypePattern.MatchString(contentType) {
		return pkgerrors.NewValidationError(
			"INVALID_CONTENT_TYPE",
			"Content type contains invalid characters",
		).WithDetail("field", "content_type").WithDetail("value", contentType)
	}

	return nil
}

// ValidatePayload validates an inline payload against the configured
// size limit
func (v *UnitValidator) ValidatePayload(payload valueobjects.Payload) error {
	if payload.IsZero() {
		return nil
	}

	if utf8.RuneCountInString(payload.Body()) > v.cfg.MaxPayloadLength {
		return pkgerrors.NewValidationError(
			"PAYLOAD_TOO_LONG",
			fmt.Sprintf("Payload body exceeds maximum length of %d characters", v.cfg.MaxPayloadLength),
		).WithDetail("field", "payload").
			WithDetail("actual_length", utf8.RuneCountInString(payload.Body())).
			WithDetail("max_length", v.cfg.MaxPayloadLength)
	}

	return v.ValidateContentType(payload.ContentType())
}

// ValidateMetadata validates frame metadata
func (v *UnitValidator) ValidateMetadata(metadata map[string]interface{}) error {
	if len(metadata) > v.cfg.MaxMetadataKeys {
		return pkgerrors.NewValidationError(
			"TOO_MANY_METADATA_KEYS",
			fmt.Sprintf("Cannot have more than %d metadata keys", v.cfg.MaxMetadataKeys),
		).WithDetail("field", "metadata").WithDetail("count", len(metadata))
	}

	for key, value := range metadata {
		if len(key) > v.cfg.MaxMetadataKeyLength {
			return pkgerrors.NewValidationError(
				"METADATA_KEY_TOO_LONG",
				fmt.Sprintf("Metadata key '%s' exceeds maximum length of %d", key, v.cfg.MaxMetadataKeyLength),
			).WithDetail("field", "metadata").WithDetail("key", key)
		}

		// Validate value based on type
		switch val := value.(type) {
		case string:
			if len(val) > v.cfg.MaxMetadataValueSize {
				return pkgerrors.NewValidationError(
					"METADATA_VALUE_TOO_LONG",
					fmt.Sprintf("Metadata value for '%s' exceeds maximum length of %d", key, v.cfg.MaxMetadataValueSize),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		case []interface{}:
			if len(val) > 100 {
				return pkgerrors.NewValidationError(
					"METADATA_ARRAY_TOO_LARGE",
					fmt.Sprintf("Metadata array for '%s' exceeds maximum size of 100", key),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		case map[string]interface{}:
			if len(val) > 50 {
				return pkgerrors.NewValidationError(
					"METADATA_OBJECT_TOO_LARGE",
					fmt.Sprintf("Metadata object for '%s' exceeds maximum size of 50 properties", key),
				).WithDetail("field", "metadata").WithDetail("key", key)
			}
		}
	}

	return nil
}
