package pregel

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-pregel/pkg/partition"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"weighted", func(c *Config) { c.RelationshipWeightProperty = "cost" }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"negative iterations", func(c *Config) { c.MaxIterations = -1 }, true},
		{"negative memory bound", func(c *Config) { c.MaxMemoryBytes = -1 }, true},
		{"unknown strategy", func(c *Config) { c.Partitioning = partition.Strategy(42) }, true},
		{"unknown messaging", func(c *Config) { c.Messaging = Messaging(42) }, true},
		{"bad weight key", func(c *Config) { c.RelationshipWeightProperty = "has space" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error %v does not match ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	input := `
concurrency: 3
maxIterations: 50
partitioning: DEGREE
messaging: COMBINED
relationshipWeightProperty: weight
maxMemoryBytes: 1048576
`
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(input), &cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Concurrency != 3 || cfg.MaxIterations != 50 {
		t.Errorf("concurrency/maxIterations = %d/%d", cfg.Concurrency, cfg.MaxIterations)
	}
	if cfg.Partitioning != partition.Degree {
		t.Errorf("Partitioning = %s, want DEGREE", cfg.Partitioning)
	}
	if cfg.Messaging != MessagingCombined {
		t.Errorf("Messaging = %s, want COMBINED", cfg.Messaging)
	}
	if !cfg.IsWeighted() || cfg.RelationshipWeightProperty != "weight" {
		t.Errorf("RelationshipWeightProperty = %q", cfg.RelationshipWeightProperty)
	}
	if cfg.MaxMemoryBytes != 1<<20 {
		t.Errorf("MaxMemoryBytes = %d", cfg.MaxMemoryBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfig_YAMLUnknownStrategy(t *testing.T) {
	cfg := DefaultConfig()
	err := yaml.Unmarshal([]byte("partitioning: HASH\n"), &cfg)
	if !errors.Is(err, partition.ErrUnknownStrategy) {
		t.Errorf("Unmarshal error = %v, want ErrUnknownStrategy", err)
	}
}
