package registry

import (
	"errors"
	"fmt"
)

// Error classes. Every rejection wraps exactly one of these, so callers can
// match either the class (errors.Is(err, ErrConflict)) or the precise
// condition (errors.Is(err, ErrUsernameTaken)).
var (
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrPayment       = errors.New("payment rejected")
)

var (
	ErrBadUsername  = fmt.Errorf("%w: username must be 1-20 bytes", ErrValidation)
	ErrBadImageHash = fmt.Errorf("%w: image hash must be non-empty", ErrValidation)
	ErrBadContent   = fmt.Errorf("%w: content must be 1-500 bytes", ErrValidation)
	ErrBadGroupName = fmt.Errorf("%w: group name must be 1-50 bytes", ErrValidation)
	ErrSelfMessage  = fmt.Errorf("%w: recipient equals sender", ErrValidation)
	ErrBadWindow    = fmt.Errorf("%w: pagination window must be non-negative", ErrValidation)

	ErrNotRegistered = fmt.Errorf("%w: caller is not an active registered user", ErrAuthorization)
	ErrNotOwner      = fmt.Errorf("%w: caller is not the owner", ErrAuthorization)
	ErrNotMember     = fmt.Errorf("%w: caller is not a group member", ErrAuthorization)

	ErrUsernameTaken     = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrAlreadyRegistered = fmt.Errorf("%w: identity already registered", ErrConflict)
	ErrAlreadyMember     = fmt.Errorf("%w: already a group member", ErrConflict)
	ErrGroupInactive     = fmt.Errorf("%w: group is deactivated", ErrConflict)
	ErrNoBalance         = fmt.Errorf("%w: no accumulated fees to withdraw", ErrConflict)
	ErrReentrancy        = fmt.Errorf("%w: registration already in progress", ErrConflict)

	ErrUserNotFound    = fmt.Errorf("%w: no such user", ErrNotFound)
	ErrGroupNotFound   = fmt.Errorf("%w: no such group", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("%w: message index out of range", ErrNotFound)

	ErrInsufficientFee = fmt.Errorf("%w: payment below registration fee", ErrPayment)
)
