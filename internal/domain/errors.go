package domain

import "errors"

var (
	// ErrNotDirectory is returned when the input path is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrFilesFailed is returned by a run in which at least one file could
	// not be emitted.
	ErrFilesFailed = errors.New("some files failed")

	// ErrNotInInventory is returned when a requested file is not part of the
	// scanned project.
	ErrNotInInventory = errors.New("file not in inventory")
)
