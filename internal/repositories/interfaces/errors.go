package interfaces

import "errors"

// Sentinel errors returned by repository implementations. Services map
// these onto the API error taxonomy.
var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNoSeatsLeft  = errors.New("no seats left")
	ErrNotModified  = errors.New("document not modified")
)
