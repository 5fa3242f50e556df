// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records user authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_auth_attempts_total",
			Help: "Total number of user authentication attempts",
		},
		[]string{"result"},
	)

	// Registrations counts users registered through invitations.
	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iam_registrations_total",
			Help: "Total number of users registered through an invitation",
		},
	)

	// MembershipChecks counts group and role membership evaluations (member|not_member|error).
	MembershipChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_membership_checks_total",
			Help: "Total number of membership checks",
		},
		[]string{"kind", "result"},
	)

	// VersionConflicts counts optimistic concurrency failures per entity.
	VersionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_version_conflicts_total",
			Help: "Total number of rejected updates due to a stale version",
		},
		[]string{"entity"},
	)

	// TenantCacheLookups counts tenant cache lookups (hit|miss).
	TenantCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iam_tenant_cache_lookups_total",
			Help: "Tenant cache lookups by outcome",
		},
		[]string{"result"},
	)

	// InvitationsPurged counts expired invitations removed by housekeeping.
	InvitationsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iam_invitations_purged_total",
			Help: "Total number of expired invitations removed",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iam_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
