// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package relay drains a single byte stream to completion, forwarding every
// chunk unchanged to a sink while keeping a full copy in memory.
//
// A Relay is started once with Start and finished exactly once. The captured
// bytes are only reachable through Wait, which blocks until the relay has
// observed end of data (or an error), so a reader can never race the
// goroutine that is still appending.
package relay
