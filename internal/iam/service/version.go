package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/iam/internal/iam/metrics"
	"github.com/aussiebroadwan/iam/internal/iam/store"
)

type expectedVersionKey struct{}

// WithExpectedVersion makes the next mutation fail with
// store.ErrVersionConflict unless the stored entity is at version v.
func WithExpectedVersion(ctx context.Context, v int64) context.Context {
	return context.WithValue(ctx, expectedVersionKey{}, v)
}

// ExpectedVersion returns the version set by WithExpectedVersion.
func ExpectedVersion(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(expectedVersionKey{}).(int64)
	return v, ok
}

func checkVersion(ctx context.Context, entity string, actual int64) error {
	if v, ok := ExpectedVersion(ctx); ok && v != actual {
		metrics.VersionConflicts.WithLabelValues(entity).Inc()
		return store.ErrVersionConflict
	}
	return nil
}

// versionErr counts CAS failures reported by the store.
func versionErr(entity string, err error) error {
	if errors.Is(err, store.ErrVersionConflict) {
		metrics.VersionConflicts.WithLabelValues(entity).Inc()
	}
	return err
}
