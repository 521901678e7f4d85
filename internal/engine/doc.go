// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine orchestrates topic-change generations.
//
// # Key Types
//
//   - Orchestrator: cache short-circuit, concurrent art and content
//     flows, epoch cancellation, write-once cache commit.
//   - Token: structured per-epoch cancellation token, checked at
//     every fragment boundary.
//   - FoldCards: the single fold turning typed content events into
//     ordered card state.
//
// # Usage
//
//	orch := engine.NewOrchestrator(contentGen, artGen, state, store, tracker, program.Send)
//	orch.Generate(ctx, nodeID)
//
// Topic changes supersede in-flight flows by minting a new epoch.
// Superseded flows drain their streams and discard the output; the
// transport request itself is not aborted. Last topic wins.
package engine
