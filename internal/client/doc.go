// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the offline sync client runtime.
//
// It wires the durable store, the remote adapter, the connectivity monitor
// and the client services into a single process lifecycle, and runs the
// background workers until the process is asked to stop.
package client
