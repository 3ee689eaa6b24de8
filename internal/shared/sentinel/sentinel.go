package sentinel

import "errors"

// Store-level facts. Adapters return these (optionally wrapped); services
// translate them into domain errors where the caller needs a discriminant.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
