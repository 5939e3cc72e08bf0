// Package metrics exposes review workflow metrics to Prometheus.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Review actions
const (
	ActionPrevious = "previous"
	ActionNext     = "next"
	ActionSkip     = "skip"
	ActionReload   = "reload"
	ActionReject   = "reject"
	ActionApprove  = "approve"
)

var (
	activeSubmissionsDesc = prometheus.NewDesc(
		"newsletter_active_submissions",
		"Submissions that are neither rejected nor uploaded",
		nil,
		nil,
	)

	reviewActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_review_actions_total",
			Help: "Completed review actions by action",
		},
		[]string{"action"},
	)

	promotionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_promotion_failures_total",
			Help: "Failed promotions by the step that failed",
		},
		[]string{"step"},
	)
)

// ActiveCounter counts the submissions still awaiting review.
type ActiveCounter interface {
	CountActiveSubmissions(ctx context.Context) (int, error)
}

// QueueCollector reads the review queue size from the database on each scrape.
type QueueCollector struct {
	db     ActiveCounter
	logger *zap.Logger
}

// NewQueueCollector creates a collector backed by db.
func NewQueueCollector(db ActiveCounter, logger *zap.Logger) *QueueCollector {
	return &QueueCollector{db: db, logger: logger}
}

// Describe sends the metric descriptor to the channel.
func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- activeSubmissionsDesc
}

// Collect queries the active submission count and emits it as a gauge.
func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := c.db.CountActiveSubmissions(ctx)
	if err != nil {
		c.logger.Error("failed to collect active submission metric", zap.Error(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(activeSubmissionsDesc, prometheus.GaugeValue, float64(count))
}

// SessionCounter reports how many review sessions are open.
type SessionCounter interface {
	Len() int
}

// NewSessionGauge reports the open review sessions on each scrape.
func NewSessionGauge(sessions SessionCounter) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "newsletter_review_sessions",
			Help: "Review sessions that have not expired",
		},
		func() float64 { return float64(sessions.Len()) },
	)
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(db ActiveCounter, sessions SessionCounter, logger *zap.Logger) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			NewQueueCollector(db, logger),
			NewSessionGauge(sessions),
			reviewActions,
			promotionFailures,
		)
	})
}

// RecordAction counts a completed review action.
func RecordAction(action string) {
	reviewActions.WithLabelValues(action).Inc()
}

// RecordPromotionFailure counts a promotion that failed at step.
func RecordPromotionFailure(step string) {
	if step == "" {
		step = "unknown"
	}
	promotionFailures.WithLabelValues(step).Inc()
}
