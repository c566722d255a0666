// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether diagnostics on stderr may use ANSI colours
// and wraps strings in the matching escape codes.
//
// NO_COLOR disables colours, FORCE_COLOR enables them, otherwise colours are
// used only when stderr is a terminal.
package color
