// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	prefix = "\033["
	suffix = "m"
	reset  = "\033[0m"
)

// Code is an SGR parameter.
type Code int

// Attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colours.
const (
	FgRed    Code = 31
	FgGreen  Code = 32
	FgYellow Code = 33
	FgCyan   Code = 36
	FgWhite  Code = 37

	FgHiWhite Code = 97
)

var enabled = detect(os.Getenv, term.IsTerminal, int(os.Stderr.Fd()))

// Enabled reports whether colours should be used on stderr.
func Enabled() bool {
	return enabled
}

// Paint wraps str in codes unconditionally, ending with a reset.
func Paint(str string, codes ...Code) string {
	if len(codes) == 0 {
		return str
	}

	var sb strings.Builder

	sb.Grow(len(prefix) + len(str) + len(suffix) + len(reset) + 4*len(codes))
	sb.WriteString(prefix)

	for i, c := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(c)))
	}

	sb.WriteString(suffix)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

func detect(getenv func(string) string, isTerminal func(int) bool, fd int) bool {
	if getenv(NoColor) != "" {
		return false
	}

	if getenv(ForceColor) != "" {
		return true
	}

	return isTerminal(fd)
}
