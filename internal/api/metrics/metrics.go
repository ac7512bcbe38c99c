// Package metrics defines and registers all custom Prometheus metrics for the
// DigiTicket credential service. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "digiticket"

// Label values for the result dimension.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts client registration attempts by outcome.
// Label:
//   - result: "success" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of client registration attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts session tokens handed out on successful login or
// registration.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of session tokens issued.",
	},
)

// PasswordHashDuration observes how long a single password hash takes. The
// bcrypt cost factor dominates this, so the histogram is the signal to watch
// when tuning BCRYPT_COST.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Time spent hashing a password, in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
)
