// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaint(t *testing.T) {
	tests := []struct {
		name  string
		str   string
		codes []Code
		want  string
	}{
		{
			name: "no codes",
			str:  "plain",
			want: "plain",
		},
		{
			name:  "single code",
			str:   "red",
			codes: []Code{FgRed},
			want:  "\033[31mred\033[0m",
		},
		{
			name:  "combined codes",
			str:   "loud",
			codes: []Code{Bold, FgYellow},
			want:  "\033[1;33mloud\033[0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paint(tt.str, tt.codes...))
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := enabled
	defer func() { enabled = orig }()

	enabled = false
	assert.False(t, Enabled())

	enabled = true
	assert.True(t, Enabled())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		terminal bool
		want     bool
	}{
		{name: "terminal", terminal: true, want: true},
		{name: "not a terminal", terminal: false, want: false},
		{name: "NO_COLOR wins over terminal", env: map[string]string{NoColor: "1"}, terminal: true, want: false},
		{name: "FORCE_COLOR without terminal", env: map[string]string{ForceColor: "1"}, want: true},
		{name: "NO_COLOR wins over FORCE_COLOR", env: map[string]string{NoColor: "1", ForceColor: "1"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			isTerminal := func(int) bool { return tt.terminal }

			assert.Equal(t, tt.want, detect(getenv, isTerminal, 2))
		})
	}
}
