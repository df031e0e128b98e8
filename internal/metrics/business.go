package metrics

import "time"

// Broadcast results
const (
	BroadcastSent    = "sent"
	BroadcastFailed  = "failed"
	BroadcastSkipped = "skipped"
)

// RecordCommand counts one handled command
func (m *Metrics) RecordCommand(kind string, err error) {
	m.safeExecute("RecordCommand", func() {
		m.CommandsTotal.WithLabelValues(kind).Inc()
		if err != nil {
			m.CommandFailures.WithLabelValues(kind).Inc()
		}
	})
}

// IncrementListOpened counts a newly opened list of the given kind
func (m *Metrics) IncrementListOpened(kind string) {
	m.safeExecute("IncrementListOpened", func() {
		m.ListsOpenedTotal.WithLabelValues(kind).Inc()
	})
}

// IncrementListClosed counts a closed list
func (m *Metrics) IncrementListClosed() {
	m.safeExecute("IncrementListClosed", func() {
		m.ListsClosedTotal.Inc()
	})
}

// SetOpenLists sets the open list gauge
func (m *Metrics) SetOpenLists(count int64) {
	m.safeExecute("SetOpenLists", func() {
		m.OpenLists.Set(float64(count))
	})
}

// RecordBroadcast counts one per-conversation broadcast outcome
func (m *Metrics) RecordBroadcast(result string) {
	m.safeExecute("RecordBroadcast", func() {
		m.BroadcastsTotal.WithLabelValues(result).Inc()
	})
}

// ObserveBroadcastRun records how long a full broadcast run took
func (m *Metrics) ObserveBroadcastRun(duration time.Duration) {
	m.safeExecute("ObserveBroadcastRun", func() {
		m.BroadcastDuration.Observe(duration.Seconds())
	})
}
