package domain

import "errors"

var (
	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrEmptyFile indicates an upload without content.
	ErrEmptyFile = errors.New("catalog: empty file")
	// ErrNotCSV indicates an upload that is not a CSV file.
	ErrNotCSV = errors.New("catalog: file is not a csv")
)
