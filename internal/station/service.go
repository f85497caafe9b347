package station

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chargespot/chargespot/internal/telemetry"
	"github.com/chargespot/chargespot/pkg/geo"
)

const tracerName = "github.com/chargespot/chargespot/internal/station"

// DefaultTimeout bounds one search round trip.
const DefaultTimeout = 30 * time.Second

// radiusTolerance absorbs upstream rounding when checking distances against the radius.
const radiusTolerance = 0.01

// Provider defines the interface for charging-station directories.
type Provider interface {
	// SearchStations fetches the stations around q.Center within q.RadiusKM.
	SearchStations(ctx context.Context, q Query) ([]Station, error)

	// Name returns the provider name for logging.
	Name() string
}

// HealthRecorder receives the outcome of each provider call.
type HealthRecorder interface {
	RecordSuccess(name string)
	RecordFailure(name string, err error)
}

// ServiceConfig holds configuration for the station service.
type ServiceConfig struct {
	// Provider is the station directory client.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Timeout bounds each search (default: 30 seconds).
	Timeout time.Duration

	// Health is optional; when set it is told about every provider call.
	Health HealthRecorder

	// Metrics is optional.
	Metrics *telemetry.ProviderMetrics

	// Now is the clock used for FetchedAt (default: time.Now).
	Now func() time.Time
}

// Service runs station searches. It holds no state between calls.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	timeout  time.Duration
	health   HealthRecorder
	metrics  *telemetry.ProviderMetrics
	now      func() time.Time
	tracer   trace.Tracer
}

// NewService creates a new station service.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		timeout:  timeout,
		health:   cfg.Health,
		metrics:  cfg.Metrics,
		now:      now,
		tracer:   otel.Tracer(tracerName),
	}
}

// Search validates q, fetches a fresh batch from the provider and returns it.
// Every returned station carries a distance no greater than the search radius.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "station.Search", trace.WithAttributes(
		attribute.String("provider.name", s.provider.Name()),
		attribute.Float64("search.radius_km", q.RadiusKM),
		attribute.Int("search.max_results", q.MaxResults),
		attribute.Bool("search.api_key", q.APIKey != ""),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Debug().
		Float64("lat", q.Center.Lat).
		Float64("lon", q.Center.Lon).
		Float64("radius_km", q.RadiusKM).
		Int("max_results", q.MaxResults).
		Str("provider", s.provider.Name()).
		Msg("searching stations")

	start := time.Now()
	stations, err := s.provider.SearchStations(ctx, q)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), "search", time.Since(start), err)
	}

	if err != nil {
		err = classifyDeadline(ctx, err)
		if s.health != nil {
			s.health.RecordFailure(s.provider.Name(), err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		s.logger.Error().Err(err).
			Float64("lat", q.Center.Lat).
			Float64("lon", q.Center.Lon).
			Msg("station search failed")
		return nil, err
	}

	if s.health != nil {
		s.health.RecordSuccess(s.provider.Name())
	}

	within := s.withinRadius(q, stations)
	if s.metrics != nil {
		s.metrics.RecordResults(s.provider.Name(), len(within))
	}
	span.SetAttributes(attribute.Int("search.result_count", len(within)))

	s.logger.Info().
		Int("received", len(stations)).
		Int("returned", len(within)).
		Dur("duration", time.Since(start)).
		Msg("station search completed")

	return &Result{
		Query:     q,
		Stations:  within,
		FetchedAt: s.now(),
	}, nil
}

// withinRadius fills in distances the provider did not echo and drops stations
// lying beyond the radius.
func (s *Service) withinRadius(q Query, stations []Station) []Station {
	limit := q.RadiusKM * (1 + radiusTolerance)
	out := make([]Station, 0, len(stations))
	for _, st := range stations {
		if st.DistanceKM == nil {
			d := geo.DistanceKM(q.Center, st.Location)
			st.DistanceKM = &d
		}
		if *st.DistanceKM > limit {
			s.logger.Debug().
				Int("station_id", st.ID).
				Float64("distance_km", *st.DistanceKM).
				Msg("dropping station outside search radius")
			continue
		}
		out = append(out, st)
	}
	return out
}

// classifyDeadline reports an expired search deadline as a network timeout.
func classifyDeadline(ctx context.Context, err error) error {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &NetworkError{Timeout: true, Err: err}
	}
	return err
}
