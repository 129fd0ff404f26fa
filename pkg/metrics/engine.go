package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records the auction engine's operational counters.
type EngineMetrics struct {
	bidsAccepted  *prometheus.CounterVec
	bidsRejected  *prometheus.CounterVec
	itemsSold     *prometheus.CounterVec
	itemsRequeued *prometheus.CounterVec
	timerExpiries *prometheus.CounterVec
	activeTimers  prometheus.Gauge
	commandWait   *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	bidsAccepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_accepted_total",
		Help: "Bids that cleared arbitration.",
	}, []string{"event"})
	bidsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_rejected_total",
		Help: "Bids refused by arbitration, labeled with the rejection reason.",
	}, []string{"event", "reason"})
	itemsSold := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_items_sold_total",
		Help: "Items finalized as sold.",
	}, []string{"event"})
	itemsRequeued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_items_requeued_total",
		Help: "Items returned to rotation after a no-bid expiry.",
	}, []string{"event"})
	timerExpiries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_timer_expiries_total",
		Help: "Deadline expiries delivered to the engine.",
	}, []string{"event"})
	activeTimers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auction_active_timers",
		Help: "Countdown timers currently armed.",
	})
	commandWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_command_duration_seconds",
		Help:    "Time spent executing engine commands.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})
	reg.MustRegister(bidsAccepted, bidsRejected, itemsSold, itemsRequeued, timerExpiries, activeTimers, commandWait)
	return &EngineMetrics{
		bidsAccepted:  bidsAccepted,
		bidsRejected:  bidsRejected,
		itemsSold:     itemsSold,
		itemsRequeued: itemsRequeued,
		timerExpiries: timerExpiries,
		activeTimers:  activeTimers,
		commandWait:   commandWait,
	}
}

// IncBidAccepted increments the accepted bid counter for an event.
func (m *EngineMetrics) IncBidAccepted(event string) {
	if m == nil || m.bidsAccepted == nil {
		return
	}
	m.bidsAccepted.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncBidRejected increments the rejected bid counter with its reason.
func (m *EngineMetrics) IncBidRejected(event, reason string) {
	if m == nil || m.bidsRejected == nil {
		return
	}
	m.bidsRejected.WithLabelValues(normalizeLabel(event), normalizeLabel(reason)).Inc()
}

// IncItemSold increments the sold counter for an event.
func (m *EngineMetrics) IncItemSold(event string) {
	if m == nil || m.itemsSold == nil {
		return
	}
	m.itemsSold.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncItemRequeued increments the requeue counter for an event.
func (m *EngineMetrics) IncItemRequeued(event string) {
	if m == nil || m.itemsRequeued == nil {
		return
	}
	m.itemsRequeued.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncTimerExpiry increments the expiry counter for an event.
func (m *EngineMetrics) IncTimerExpiry(event string) {
	if m == nil || m.timerExpiries == nil {
		return
	}
	m.timerExpiries.WithLabelValues(normalizeLabel(event)).Inc()
}

// TimerArmed adjusts the active timer gauge.
func (m *EngineMetrics) TimerArmed(delta float64) {
	if m == nil || m.activeTimers == nil {
		return
	}
	m.activeTimers.Add(delta)
}

// ObserveCommand records the duration of an engine command.
func (m *EngineMetrics) ObserveCommand(command string, duration time.Duration) {
	if m == nil || m.commandWait == nil {
		return
	}
	m.commandWait.WithLabelValues(normalizeLabel(command)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
