package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	dto "github.com/prometheus/client_model/go"
)

// Metrics prints the sync collectors gathered from the app registry.
func (a *App) Metrics(ctx context.Context) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(tw, "%s%s\t%s\n", mf.GetName(), labels(m), value(mf.GetType(), m))
		}
	}
	return tw.Flush()
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%.3fs", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "-"
	}
}
