// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry tracks per-session word usage.
//
// # Key Types
//
//   - WordTracker: owns the live session and persisted history.
//   - Session: one application run's accumulated input and output
//     word counts.
//
// Input words are heuristic prompt estimates, output words are exact
// counts of streamed text. Only committed generations are recorded, so
// cancelled topic switches never double-count.
package telemetry
