package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	tripsCreated        metric.Int64Counter
	invitationsCreated  metric.Int64Counter
	invitationResponses metric.Int64Counter
	pdfExports          metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tripline"
	}
	meter := provider.Meter(name)

	tripsCreated, err := meter.Int64Counter("tripline_trips_created_total")
	if err != nil {
		return nil, err
	}
	invitationsCreated, err := meter.Int64Counter("tripline_invitations_created_total")
	if err != nil {
		return nil, err
	}
	invitationResponses, err := meter.Int64Counter("tripline_invitation_responses_total")
	if err != nil {
		return nil, err
	}
	pdfExports, err := meter.Int64Counter("tripline_pdf_exports_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		tripsCreated:        tripsCreated,
		invitationsCreated:  invitationsCreated,
		invitationResponses: invitationResponses,
		pdfExports:          pdfExports,
	}, nil
}

// RecordTripCreated increments the trip creation counter.
func (m *Metrics) RecordTripCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.tripsCreated.Add(ctx, 1)
}

// RecordInvitationCreated increments the invitation creation counter.
func (m *Metrics) RecordInvitationCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.invitationsCreated.Add(ctx, 1)
}

// RecordInvitationResponse increments the response counter tagged by outcome.
func (m *Metrics) RecordInvitationResponse(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.invitationResponses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", strings.TrimSpace(outcome)),
	))
}

// RecordPDFExport increments the PDF export counter.
func (m *Metrics) RecordPDFExport(ctx context.Context) {
	if m == nil {
		return
	}
	m.pdfExports.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
