package validation

import (
	"strings"
	"testing"
)

func TestValidatePropertyKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"weight", false},
		{"_cost2", false},
		{"", true},
		{"2fast", true},
		{"has-dash", true},
		{strings.Repeat("a", MaxPropertyKey+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidatePropertyKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePropertyKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStruct(t *testing.T) {
	type job struct {
		Iterations int    `validate:"min=1,max=1000"`
		Property   string `validate:"required,property_key"`
	}

	if err := ValidateStruct(job{Iterations: 10, Property: "seed"}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}

	err := ValidateStruct(job{Iterations: 5000})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Iterations: must not exceed 1000") {
		t.Errorf("missing max message in %q", msg)
	}
	if !strings.Contains(msg, "Property: field is required") {
		t.Errorf("missing required message in %q", msg)
	}
}
