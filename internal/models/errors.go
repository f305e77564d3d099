package models

import "errors"

var (
	// ErrNotFound is returned when an item, option or content type does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidItemID is returned for non-positive or unparsable item IDs.
	ErrInvalidItemID = errors.New("invalid item id")
	// ErrUnknownContentType is returned when a content type is not registered.
	ErrUnknownContentType = errors.New("unknown content type")
)
