package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/iam/internal/iam/cache"
	"github.com/aussiebroadwan/iam/internal/iam/domain"
	"github.com/aussiebroadwan/iam/internal/iam/metrics"
	"github.com/aussiebroadwan/iam/internal/iam/store"
	"github.com/aussiebroadwan/iam/pkg/slogx"
)

type UserService struct {
	Store store.Store
	Cache *cache.Tenants
	Now   func() time.Time
}

// Registration is what a prospective user submits along with an invitation.
type Registration struct {
	Invitation string
	Username   string
	Password   string
	Enablement domain.Enablement
	Person     domain.Person
}

// Register creates a user in the tenant named by tenantRef. It performs the
// following steps:
// 1. Loads the tenant and its invitations
// 2. Checks the tenant is active and the invitation is redeemable now
// 3. Builds the user, enforcing the password policy
// 4. Stores user and person rows together
func (s *UserService) Register(ctx context.Context, tenantRef string, reg Registration) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load the tenant
		t, err := loadTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}

		// 2. Check the invitation
		available, err := t.IsRegistrationAvailableThrough(reg.Invitation, now)
		if err != nil {
			log.Warn("registration attempted on inactive tenant", slog.String("tenant_id", t.ID))
			return err
		}
		if !available {
			log.Warn("registration attempted with unavailable invitation",
				slog.String("tenant_id", t.ID),
				slog.String("invitation", reg.Invitation),
			)
			return ErrInvitationUnavailable
		}

		// 3. Build the user
		u, err := domain.NewUser(t.ID, reg.Username, reg.Password, reg.Enablement, reg.Person)
		if err != nil {
			return err
		}
		u.CreatedAt, u.UpdatedAt = now, now

		// 4. Store it
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUsernameTaken
			}
			log.Error("failed to create user", slog.String("username", reg.Username), slog.Any("error", err))
			return err
		}

		user = u
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	metrics.Registrations.Inc()
	log.Info("user registered",
		slog.String("tenant_id", user.TenantID),
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, tenantRef, username string) (domain.User, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return domain.User{}, err
	}
	return getUser(ctx, s.Store, t.ID, username)
}

// List returns the tenant's users ordered by username.
func (s *UserService) List(ctx context.Context, tenantRef string) ([]domain.User, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return nil, err
	}
	return s.Store.Users().ListUsers(ctx, t.ID)
}

// SearchSimilarlyNamed finds users whose first and last names start with
// the given prefixes.
func (s *UserService) SearchSimilarlyNamed(ctx context.Context, tenantRef, firstPrefix, lastPrefix string) ([]domain.User, error) {
	t, err := cachedTenant(ctx, s.Store, s.Cache, tenantRef)
	if err != nil {
		return nil, err
	}
	return s.Store.Users().FindSimilarlyNamedUsers(ctx, t.ID, firstPrefix, lastPrefix)
}

func (s *UserService) ChangePassword(ctx context.Context, tenantRef, username, current, next string) error {
	_, err := s.mutate(ctx, tenantRef, username, func(u *domain.User) error {
		return u.ChangePassword(current, next)
	})
	if err == nil {
		slogx.FromContext(ctx).Info("password changed", slog.String("username", username))
	}
	return err
}

func (s *UserService) ChangePersonalName(ctx context.Context, tenantRef, username string, name domain.FullName) (domain.User, error) {
	return s.mutate(ctx, tenantRef, username, func(u *domain.User) error {
		u.ChangePersonalName(name)
		return nil
	})
}

func (s *UserService) ChangeContactInformation(ctx context.Context, tenantRef, username string, contact domain.ContactInformation) (domain.User, error) {
	return s.mutate(ctx, tenantRef, username, func(u *domain.User) error {
		u.ChangeContactInformation(contact)
		return nil
	})
}

// DefineEnablement replaces the enabled flag and activity window.
func (s *UserService) DefineEnablement(ctx context.Context, tenantRef, username string, e domain.Enablement) (domain.User, error) {
	return s.mutate(ctx, tenantRef, username, func(u *domain.User) error {
		u.DefineEnablement(e)
		return nil
	})
}

// Delete removes the user, its person row and every group membership
// naming it.
func (s *UserService) Delete(ctx context.Context, tenantRef, username string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		u, err := getUser(ctx, tx, t.ID, username)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "user", u.Version); err != nil {
			return err
		}

		removed, err := tx.Groups().RemoveMemberEverywhere(ctx, t.ID, u.AsMember(), clock(s.Now))
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Debug("removed user memberships", slog.String("username", username), slog.Int64("count", removed))
		}
		return tx.Users().DeleteUser(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	log.Info("user deleted", slog.String("username", username))
	return nil
}

// Authenticate checks username and password within an active tenant. Any
// failure other than an inactive tenant is reported as
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, tenantRef, username, password string) (domain.UserDescriptor, error) {
	log := slogx.FromContext(ctx)

	fail := func(reason string) (domain.UserDescriptor, error) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		log.Warn("authentication failed",
			slog.String("tenant", tenantRef),
			slog.String("username", username),
			slog.String("reason", reason),
		)
		return domain.UserDescriptor{}, ErrInvalidCredentials
	}

	// 1. The tenant must exist and be active. Read the store, not the cache,
	// so a deactivation takes effect immediately.
	t, err := findTenant(ctx, s.Store, tenantRef)
	if err != nil {
		return domain.UserDescriptor{}, err
	}
	if !t.Enabled {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return domain.UserDescriptor{}, domain.ErrTenantNotActive
	}

	// 2. The user must exist and be enabled now.
	u, err := getUser(ctx, s.Store, t.ID, username)
	if errors.Is(err, ErrUserNotFound) {
		return fail("unknown user")
	}
	if err != nil {
		return domain.UserDescriptor{}, err
	}
	if !u.IsEnabledAt(clock(s.Now)) {
		return fail("user not enabled")
	}

	// 3. The password must verify.
	if err := u.VerifyPassword(password); err != nil {
		if errors.Is(err, domain.ErrPasswordNotVerified) {
			return fail("wrong password")
		}
		log.Error("failed to verify password", slog.String("username", username), slog.Any("error", err))
		return domain.UserDescriptor{}, err
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return u.Descriptor(t.UUID), nil
}

func (s *UserService) mutate(ctx context.Context, tenantRef, username string, fn func(u *domain.User) error) (domain.User, error) {
	log := slogx.FromContext(ctx)

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := findTenant(ctx, tx, tenantRef)
		if err != nil {
			return err
		}
		u, err := getUser(ctx, tx, t.ID, username)
		if err != nil {
			return err
		}
		if err := checkVersion(ctx, "user", u.Version); err != nil {
			return err
		}

		if err := fn(&u); err != nil {
			return err
		}
		if err := u.Validate(); err != nil {
			return err
		}
		u.UpdatedAt = clock(s.Now)

		v, err := tx.Users().UpdateUser(ctx, u)
		if err != nil {
			return versionErr("user", err)
		}
		u.Version = v
		user = u
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to update user", slog.String("username", username), slog.Any("error", err))
		}
		return domain.User{}, err
	}
	return user, nil
}
