// Package repository implements data access over the relational schema:
// users, sessions, activity_logs and module_store. Sentinel errors let
// handlers translate failure scenarios into HTTP statuses without parsing
// driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique email
// constraint. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when an insert violates the unique
// username constraint. Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrDuplicate is returned for a uniqueness violation that cannot be
// attributed to a specific column. Handlers translate this into a
// generic HTTP 409.
var ErrDuplicate = errors.New("duplicate record")
