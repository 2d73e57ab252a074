package gallery

import (
	"errors"
	"fmt"
)

// CollisionError indicates an append for a (module key, revision identity)
// pair that already exists. Appends never overwrite: the caller's entry is
// rejected and the stored revision is unchanged.
type CollisionError struct {
	ModuleKey string
	Identity  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("revision %s of module %s already exists", e.Identity, e.ModuleKey)
}

// NotFoundError indicates a module key or revision that is absent from the
// gallery.
type NotFoundError struct {
	ModuleKey string
	Identity  string // empty when the whole module key is missing
}

func (e *NotFoundError) Error() string {
	if e.Identity == "" {
		return fmt.Sprintf("module %s not found in gallery", e.ModuleKey)
	}
	return fmt.Sprintf("revision %s of module %s not found in gallery", e.Identity, e.ModuleKey)
}

// IsCollision reports whether err is (or wraps) a CollisionError.
func IsCollision(err error) bool {
	var ce *CollisionError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
