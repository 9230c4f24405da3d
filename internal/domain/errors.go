package domain

import "errors"

var (
	ErrForbidden      = errors.New("insufficient privileges")
	ErrBlocked        = errors.New("sender is blocked")
	ErrNoAdmins       = errors.New("no administrators available")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotAdmin       = errors.New("user is not an administrator")
	ErrBootstrapAdmin = errors.New("configured administrators cannot be demoted")
	ErrSelfDemotion   = errors.New("administrators cannot demote themselves")
	ErrLastAdmin      = errors.New("cannot remove the last administrator")
	ErrEmptyMessage   = errors.New("message cannot be empty")
)
