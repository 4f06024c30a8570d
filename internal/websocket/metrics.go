package websocket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// hubMetrics holds the OpenTelemetry instruments of a hub. A nil
// *hubMetrics records nothing.
type hubMetrics struct {
	connections metric.Int64Counter
	active      metric.Int64UpDownCounter
	sent        metric.Int64Counter
	dropped     metric.Int64Counter
}

func newHubMetrics(meter metric.Meter) (*hubMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	connections, err := meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of event stream subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"websocket_active_clients",
		metric.WithDescription("Event stream subscribers currently connected"),
	)
	if err != nil {
		return nil, err
	}

	sent, err := meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Events queued for subscribers"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter(
		"websocket_messages_dropped_total",
		metric.WithDescription("Events dropped because the hub or a subscriber was saturated"),
	)
	if err != nil {
		return nil, err
	}

	return &hubMetrics{connections: connections, active: active, sent: sent, dropped: dropped}, nil
}

func (m *hubMetrics) connected(ctx context.Context) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, 1)
	m.active.Add(ctx, 1)
}

func (m *hubMetrics) disconnected(ctx context.Context) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
}

func (m *hubMetrics) delivered(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.sent.Add(ctx, int64(n))
}

func (m *hubMetrics) drop(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
