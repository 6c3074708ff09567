// Package metrics defines and registers the custom Prometheus metrics of the
// Codetyper API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codetyper"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_input" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "invalid_input", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AuthorizationDecisionsTotal counts Gate decisions.
// Labels:
//   - outcome: "granted", "unauthenticated" or "forbidden"
//   - reason: rejection reason for unauthenticated requests (e.g. "expired"), empty otherwise
var AuthorizationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_decisions_total",
		Help:      "Total number of authorization decisions, by outcome and rejection reason.",
	},
	[]string{"outcome", "reason"},
)

// PromotionsTotal counts successful role promotions.
// Label:
//   - role: the role granted
var PromotionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Total number of role promotions, by granted role.",
	},
	[]string{"role"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by what happened to them.
// Labels:
//   - kind: the event kind (e.g. "login_failed")
//   - result: "written", "dropped" or "error"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteDuration measures how long persisting one audit event takes.
var AuditWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_write_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// SubmissionsTotal counts task and snippet submissions.
// Labels:
//   - kind: "task" or "snippet"
//   - outcome: "shown" (staff submission) or "pending"
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of content submissions, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// ModerationDecisionsTotal counts accepted and denied requests.
// Labels:
//   - kind: "task" or "snippet"
//   - decision: "accepted" or "denied"
var ModerationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_decisions_total",
		Help:      "Total number of moderation decisions, by kind and decision.",
	},
	[]string{"kind", "decision"},
)

// LanguageCacheTotal counts language catalogue cache lookups.
// Label:
//   - result: "hit", "miss", "error", or "stale" when a write-back was skipped
//     because the catalogue changed while it was loading
var LanguageCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "language_cache_total",
		Help:      "Total number of language cache lookups, by result.",
	},
	[]string{"result"},
)
