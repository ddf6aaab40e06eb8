// Package permissions holds object-level access checks shared by the services.
package permissions

import (
	"errors"
	"reflect"
)

// ErrNotOwner is returned when the actor does not own the object being changed.
var ErrNotOwner = errors.New("you do not have permission to modify this object")

// Owned is implemented by every entity that belongs to exactly one user.
type Owned interface {
	OwnerID() uint
}

// IsOwner reports whether actorID owns obj. A nil object, including a nil pointer held in
// the interface, is owned by nobody.
func IsOwner(actorID uint, obj Owned) bool {
	if isNil(obj) || actorID == 0 {
		return false
	}
	return obj.OwnerID() == actorID
}

func isNil(obj Owned) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// RequireOwner returns ErrNotOwner unless actorID owns obj.
func RequireOwner(actorID uint, obj Owned) error {
	if !IsOwner(actorID, obj) {
		return ErrNotOwner
	}
	return nil
}
