package domain

import "errors"

var (
	ErrTenantNotActive     = errors.New("tenant is not active")
	ErrTenantMismatch      = errors.New("entities belong to different tenants")
	ErrInvitationExists    = errors.New("invitation already exists")
	ErrInvitationNotFound  = errors.New("invitation not found")
	ErrInvalidValidity     = errors.New("start date must not be after end date")
	ErrUserNotEnabled      = errors.New("user is not enabled")
	ErrGroupRecursion      = errors.New("group recursion detected")
	ErrNestingNotSupported = errors.New("this role does not support group nesting")

	ErrPasswordRequired    = errors.New("new password is required")
	ErrPasswordNotVerified = errors.New("current password not confirmed")
	ErrPasswordUnchanged   = errors.New("new password must differ from the current one")
	ErrPasswordWeak        = errors.New("new password is weak")
	ErrPasswordIsUsername  = errors.New("new password must differ from the username")
)
