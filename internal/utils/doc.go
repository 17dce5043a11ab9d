// Package utils provides general-purpose helpers shared across the client:
// the resty-based HTTP client and its zerolog bridge, JSON encoding for
// command output and fake remotes, and time-ordered identifier generation.
package utils
