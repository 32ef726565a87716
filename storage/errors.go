package storage

import "errors"

var (
	// ErrStorage wraps any failure to read or write the backing files.
	ErrStorage = errors.New("storage failure")
	// ErrParse means the task file exists but is not a valid task document.
	ErrParse = errors.New("task file is corrupted")
	// ErrInvalidArgument is returned for structurally invalid ids and paths.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidTask means a created or merged record breaks a task invariant.
	ErrInvalidTask = errors.New("invalid task")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")
)
