package store

import "errors"

var (
	ErrNoCurrentDocument = errors.New("store: no current document")
	ErrInvalidReorder    = errors.New("store: invalid reorder")
	ErrNotFound          = errors.New("store: not found")
	ErrInvalidPayload    = errors.New("store: invalid payload")
	ErrDuplicateSection  = errors.New("store: duplicate section id")
)

// Code maps a store error to the short code used on the wire. Unknown errors
// map to INTERNAL.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCurrentDocument):
		return "NO_CURRENT_DOCUMENT"
	case errors.Is(err, ErrInvalidReorder):
		return "INVALID_REORDER"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidPayload):
		return "INVALID_PAYLOAD"
	case errors.Is(err, ErrDuplicateSection):
		return "DUPLICATE_SECTION"
	default:
		return "INTERNAL"
	}
}
