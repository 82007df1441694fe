// Package storage defines the persistence contract the cache layer reads from
// and writes through. Implementations live in the sqlite, postgres and
// httpapi subpackages.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the addressed entity does not exist.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the entity kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
