package config

import "errors"

var (
	errInvalidNameBounds  = errors.New("domain config: name length bounds are invalid")
	errInvalidCacheSize   = errors.New("domain config: child cache size must be positive")
	errMissingContentType = errors.New("domain config: default content type is required")
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Unit constraints
	MinNameLength        int
	MaxNameLength        int
	MaxDescriptionLength int
	MaxPayloadLength     int
	DefaultContentType   string

	// Frame constraints
	MaxMetadataKeys      int
	MaxMetadataKeyLength int
	MaxMetadataValueSize int

	// Child resolution
	ChildCacheSize int

	// Validation settings
	AllowEmptyDescription bool
	AllowSelfChildren     bool
	RequireUniqueNames    bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Unit constraints
		MinNameLength:        1,
		MaxNameLength:        255,
		MaxDescriptionLength: 10000,
		MaxPayloadLength:     50000,
		DefaultContentType:   "code",

		// Frame constraints
		MaxMetadataKeys:      50,
		MaxMetadataKeyLength: 100,
		MaxMetadataValueSize: 1000,

		// Child resolution
		ChildCacheSize: 128,

		// Validation settings
		AllowEmptyDescription: true,
		AllowSelfChildren:     true,
		RequireUniqueNames:    false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxDescriptionLength = 4000
	config.MaxPayloadLength = 20000
	config.MaxMetadataKeys = 25

	// Stricter validation
	config.RequireUniqueNames = true

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxPayloadLength = 500000
	config.ChildCacheSize = 1024

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinNameLength < 1 || c.MaxNameLength < c.MinNameLength {
		return errInvalidNameBounds
	}
	if c.ChildCacheSize < 1 {
		return errInvalidCacheSize
	}
	if c.DefaultContentType == "" {
		return errMissingContentType
	}
	return nil
}
