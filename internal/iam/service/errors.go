package service

import (
	"errors"

	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/validx"
)

var (
	ErrTenantNotFound        = errors.New("tenant not found")
	ErrTenantExists          = errors.New("tenant already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrGroupNotFound         = errors.New("group not found")
	ErrGroupExists           = errors.New("group already exists")
	ErrReservedGroupName     = errors.New("group name is reserved for role backing groups")
	ErrRoleNotFound          = errors.New("role not found")
	ErrRoleExists            = errors.New("role already exists")
	ErrInvitationUnavailable = errors.New("invitation is not available")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// isExpected reports whether err is a business outcome rather than a fault
// worth logging at error level.
func isExpected(err error) bool {
	for _, target := range []error{
		ErrTenantNotFound, ErrTenantExists, ErrUserNotFound, ErrUsernameTaken,
		ErrGroupNotFound, ErrGroupExists, ErrReservedGroupName, ErrRoleNotFound,
		ErrRoleExists, ErrInvitationUnavailable, ErrInvalidCredentials,
		store.ErrVersionConflict,
		domain.ErrTenantNotActive, domain.ErrTenantMismatch, domain.ErrInvitationExists,
		domain.ErrInvitationNotFound, domain.ErrInvalidValidity, domain.ErrUserNotEnabled,
		domain.ErrGroupRecursion, domain.ErrNestingNotSupported,
		domain.ErrPasswordRequired, domain.ErrPasswordNotVerified, domain.ErrPasswordUnchanged,
		domain.ErrPasswordWeak, domain.ErrPasswordIsUsername,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var ve validx.ValidationErrors
	return errors.As(err, &ve)
}
