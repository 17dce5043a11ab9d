package service

import "errors"

var (
	// ErrDrainInProgress is returned by Drain while another drain holds the
	// engine.
	ErrDrainInProgress = errors.New("drain already in progress")

	// ErrOffline is returned by operations that need connectivity.
	ErrOffline = errors.New("device is offline")

	// ErrUnknownOperation marks a queued operation whose (action,
	// collection) pair has no known variant. Such items are dropped.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrRefreshInProgress is reported when a refresh cycle is requested
	// while one is still running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
