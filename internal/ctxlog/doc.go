// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger on a context.Context.
//
// Loggers write to stderr so that they never mix with a supervised command's
// mirrored stdout. The level is shared through LevelVar and is initialised
// from the <EXECUTABLE>_LOG_LEVEL environment variable, e.g.
// MAILONFAIL_LOG_LEVEL=DEBUG. Unknown or empty values mean WARN.
package ctxlog
