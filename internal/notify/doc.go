// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package notify contains the notification channels a report.Message can be
// delivered through: authenticated, encrypted SMTP, and a writer used for
// dry runs.
package notify
