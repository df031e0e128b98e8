package metrics

import (
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getTestMetrics() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry(), nil)
}

// TestMetricsInitialization tests that all metrics are properly initialized
func TestMetricsInitialization(t *testing.T) {
	m := getTestMetrics()

	collectors := map[string]prometheus.Collector{
		"HTTPRequestsTotal":          m.HTTPRequestsTotal,
		"HTTPRequestDuration":        m.HTTPRequestDuration,
		"DBConnectionsOpen":          m.DBConnectionsOpen,
		"DBConnectionsInUse":         m.DBConnectionsInUse,
		"DBConnectionsIdle":          m.DBConnectionsIdle,
		"DBConnectionsMax":           m.DBConnectionsMax,
		"DBConnectionWaitTotal":      m.DBConnectionWaitTotal,
		"DBConnectionWaitDuration":   m.DBConnectionWaitDuration,
		"DBQueryDuration":            m.DBQueryDuration,
		"DBQueryErrors":              m.DBQueryErrors,
		"ExternalAPIRequestDuration": m.ExternalAPIRequestDuration,
		"ExternalAPIRequestsTotal":   m.ExternalAPIRequestsTotal,
		"ExternalAPIErrors":          m.ExternalAPIErrors,
		"CommandsTotal":              m.CommandsTotal,
		"CommandFailures":            m.CommandFailures,
		"ListsOpenedTotal":           m.ListsOpenedTotal,
		"ListsClosedTotal":           m.ListsClosedTotal,
		"OpenLists":                  m.OpenLists,
		"BroadcastsTotal":            m.BroadcastsTotal,
		"BroadcastDuration":          m.BroadcastDuration,
	}
	for name, c := range collectors {
		if c == nil {
			t.Errorf("%s should not be nil", name)
		}
	}
}

// All metric names are snake_case, prefixed by the namespace and documented
func TestMetricNamingAndHelp(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry, nil)

	// Vectors only show up once a label set exists
	m.RecordHTTPRequest("GET", "/health", 200, 0)
	m.RecordDBQuery("select", "signup_lists", 0, nil)
	m.RecordExternalAPICall("/v2/bot/message/push", "POST", 500, 0, nil)
	m.RecordCommand("join", errTest)
	m.IncrementListOpened("SIMPLE")
	m.RecordBroadcast(BroadcastSent)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("Expected gathered metric families")
	}

	snake := regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	for _, mf := range families {
		name := mf.GetName()
		if !snake.MatchString(name) {
			t.Errorf("Metric '%s' is not snake_case", name)
		}
		if !strings.HasPrefix(name, namespace+"_") {
			t.Errorf("Metric '%s' is missing the %s prefix", name, namespace)
		}
		if strings.TrimSpace(mf.GetHelp()) == "" {
			t.Errorf("Metric '%s' has an empty help description", name)
		}
	}
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("Failed to write gauge metric: %v", err)
	}
	return metric.Gauge.GetValue()
}
