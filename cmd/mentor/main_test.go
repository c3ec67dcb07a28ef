package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateFailureError(t *testing.T) {
	tests := []struct {
		name string
		err  *GateFailureError
		want string
	}{
		{"below threshold", &GateFailureError{Score: 62, Threshold: 75}, "score 62 is below the 75 threshold"},
		{"below threshold with critical", &GateFailureError{Score: 62, Threshold: 75, Critical: 2}, "score 62 is below the 75 threshold"},
		{"one critical criterion", &GateFailureError{Score: 80, Threshold: 75, Critical: 1}, "score 80 meets the 75 threshold but 1 criterion is critical"},
		{"several critical criteria", &GateFailureError{Score: 75, Threshold: 75, Critical: 3}, "score 75 meets the 75 threshold but 3 criteria are critical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantGate bool
	}{
		{
			name:     "GateFailureError",
			err:      &GateFailureError{Score: 10, Threshold: 75},
			wantGate: true,
		},
		{
			name:     "regular error",
			err:      errors.New("config error"),
			wantGate: false,
		},
		{
			name:     "wrapped GateFailureError",
			err:      fmt.Errorf("scoring: %w", &GateFailureError{Score: 10, Threshold: 75}),
			wantGate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gateErr *GateFailureError
			assert.Equal(t, tt.wantGate, errors.As(tt.err, &gateErr))
		})
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitSuccess)
	assert.Equal(t, 1, ExitGateFailed)
	assert.Equal(t, 2, ExitError)
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"score", "rubrics", "practice", "history", "align", "samplesize", "suggest", "prefs", "mcp"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCommand_DebugFlag(t *testing.T) {
	cmd := newRootCommand()
	f := cmd.PersistentFlags().Lookup("debug")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}
