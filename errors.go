package blockpress

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a requested post or category does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("blockpress: invalid input")
