package pregel

import (
	"fmt"
	"runtime"

	"github.com/dd0wney/cluso-pregel/pkg/partition"
	"github.com/dd0wney/cluso-pregel/pkg/validation"
)

// Messaging selects how messages are buffered between supersteps
type Messaging int

const (
	// MessagingAuto uses COMBINED when the computation provides a reducer
	MessagingAuto Messaging = iota
	// MessagingPlain keeps every message in a per-node queue
	MessagingPlain
	// MessagingCombined folds messages per target with the computation's reducer
	MessagingCombined
)

// String returns the configuration name
func (m Messaging) String() string {
	switch m {
	case MessagingAuto:
		return "AUTO"
	case MessagingPlain:
		return "PLAIN"
	case MessagingCombined:
		return "COMBINED"
	default:
		return fmt.Sprintf("Messaging(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Messaging) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Messaging) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "AUTO", "auto":
		*m = MessagingAuto
	case "PLAIN", "plain":
		*m = MessagingPlain
	case "COMBINED", "combined":
		*m = MessagingCombined
	default:
		return fmt.Errorf("unknown messaging %q", text)
	}
	return nil
}

// Config controls one pregel run
type Config struct {
	Concurrency   int                `yaml:"concurrency" validate:"min=1"`
	MaxIterations int                `yaml:"maxIterations" validate:"min=1"`
	Partitioning  partition.Strategy `yaml:"partitioning"`
	Messaging     Messaging          `yaml:"messaging"`
	// RelationshipWeightProperty selects the relationship property passed to
	// ApplyRelationshipWeight. Empty means unweighted.
	RelationshipWeightProperty string `yaml:"relationshipWeightProperty" validate:"omitempty,property_key"`
	// MaxMemoryBytes is a safety bound on the estimated footprint. Zero
	// disables the check.
	MaxMemoryBytes int64 `yaml:"maxMemoryBytes" validate:"min=0"`
}

// DefaultConfig returns a configuration using every CPU
func DefaultConfig() Config {
	return Config{
		Concurrency:   runtime.NumCPU(),
		MaxIterations: 20,
		Partitioning:  partition.Range,
		Messaging:     MessagingAuto,
	}
}

// Validate checks the configuration in isolation. Graph- and
// computation-dependent checks happen in Run.
func (c Config) Validate() error {
	err := validation.NewConfigValidator("Config").
		Struct(c).
		Custom("Partitioning", func() error {
			_, err := c.Partitioning.MarshalText()
			return err
		}).
		Custom("Messaging", func() error {
			switch c.Messaging {
			case MessagingAuto, MessagingPlain, MessagingCombined:
				return nil
			default:
				return fmt.Errorf("unknown messaging %d", int(c.Messaging))
			}
		}).
		Validate()
	if err != nil {
		return &ConfigurationError{Cause: err}
	}
	return nil
}

// IsWeighted reports whether a relationship weight property is configured
func (c Config) IsWeighted() bool {
	return c.RelationshipWeightProperty != ""
}
