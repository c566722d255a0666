// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report turns a failed supervisor.Outcome into a notification and
// hands it to a Sender. Successful outcomes never produce a message.
package report
