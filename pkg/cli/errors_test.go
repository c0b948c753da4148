package cli

import (
	"errors"
	"fmt"
	"testing"

	"surevoucher/webcore/pkg/config"
)

func TestCommandError(t *testing.T) {
	inner := errors.New("port in use")
	err := NewCommandError("run", inner)

	if got := err.Error(); got != "command run failed: port in use" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("CommandError does not unwrap to its cause")
	}
}

func TestExitCode(t *testing.T) {
	cfgErr := &config.ConfigError{Op: "validate", Path: "config.yaml", Err: errors.New("bad port")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"runtime", errors.New("boom"), ExitError},
		{"config", cfgErr, ExitConfig},
		{"wrapped config", NewCommandError("run", fmt.Errorf("load: %w", cfgErr)), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
