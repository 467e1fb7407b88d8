// Package services provides external service integrations and technical concerns like notifications and storage
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/icct-platform/registration-backend/repository"
)

// Allocation attempts partitioned by sequence name and outcome
var identifierAllocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identifier_allocations_total",
		Help: "Total identifier allocation attempts by sequence and outcome",
	},
	[]string{"sequence", "outcome"},
)

// ErrSequenceUnavailable is returned when an identifier could not be issued
// after exhausting retries. Callers must not guess what value, if any, was
// consumed: the allocation state is unknown and the request should be retried
// as a whole.
var ErrSequenceUnavailable = errors.New("sequence temporarily unavailable")

// IsSequenceUnavailable reports whether err means allocation gave up
func IsSequenceUnavailable(err error) bool {
	return errors.Is(err, ErrSequenceUnavailable)
}

// IdentifierService issues human-readable sequential identifiers backed by
// named database counters. Identifiers are unique and strictly increasing per
// sequence; gaps only appear when a caller discards an issued identifier.
type IdentifierService interface {
	// AllocateNext issues the next identifier for the sequence and returns
	// both the formatted form (e.g. ICCT-042) and the raw counter value.
	AllocateNext(ctx context.Context, sequence string) (string, int64, error)
	// CurrentValue returns the last issued counter value without consuming one.
	CurrentValue(ctx context.Context, sequence string) (int64, error)
	// Resync forces the counter to the given value. Administrative use only.
	Resync(ctx context.Context, sequence string, value int64) error
	// Format renders a raw counter value as a display identifier.
	Format(value int64) string
}

// IdentifierServiceConfig tunes formatting and retry behavior
type IdentifierServiceConfig struct {
	Prefix       string
	PadWidth     int
	MaxRetries   int
	RetryBackoff time.Duration
}

// IdentifierServiceImpl implements IdentifierService
type IdentifierServiceImpl struct {
	repo   repository.SequenceCounterRepository
	config IdentifierServiceConfig
}

// NewIdentifierService creates a new identifier service
func NewIdentifierService(repo repository.SequenceCounterRepository, config IdentifierServiceConfig) IdentifierService {
	if config.PadWidth <= 0 {
		config.PadWidth = 3
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 50 * time.Millisecond
	}
	return &IdentifierServiceImpl{
		repo:   repo,
		config: config,
	}
}

// AllocateNext increments the backing counter, retrying on transient database
// contention with linear backoff. Retries never happen after a successful
// increment, so a committed value is returned exactly once.
func (s *IdentifierServiceImpl) AllocateNext(ctx context.Context, sequence string) (string, int64, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.config.RetryBackoff
			select {
			case <-ctx.Done():
				return "", 0, fmt.Errorf("%w: %w", ErrSequenceUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			log.Printf("retrying allocation for sequence %q (attempt %d/%d): %v",
				sequence, attempt, s.config.MaxRetries, lastErr)
		}

		value, err := s.repo.Increment(ctx, sequence)
		if err == nil {
			identifierAllocationsTotal.WithLabelValues(sequence, "success").Inc()
			return s.Format(value), value, nil
		}

		lastErr = err
		if !isTransientDBError(err) {
			identifierAllocationsTotal.WithLabelValues(sequence, "failure").Inc()
			return "", 0, fmt.Errorf("failed to allocate identifier for sequence %q: %w", sequence, err)
		}
	}

	identifierAllocationsTotal.WithLabelValues(sequence, "exhausted").Inc()
	log.Printf("allocation for sequence %q exhausted %d retries: %v", sequence, s.config.MaxRetries, lastErr)
	return "", 0, fmt.Errorf("%w: %w", ErrSequenceUnavailable, lastErr)
}

// CurrentValue reads the counter without advancing it
func (s *IdentifierServiceImpl) CurrentValue(ctx context.Context, sequence string) (int64, error) {
	return s.repo.Current(ctx, sequence)
}

// Resync forces the counter to the given value
func (s *IdentifierServiceImpl) Resync(ctx context.Context, sequence string, value int64) error {
	return s.repo.Resync(ctx, sequence, value)
}

// Format renders a counter value as PREFIX-NNN, widening past the pad width
// when the counter outgrows it (pad 3 yields ICCT-999 then ICCT-1000)
func (s *IdentifierServiceImpl) Format(value int64) string {
	return fmt.Sprintf("%s-%0*d", s.config.Prefix, s.config.PadWidth, value)
}

// PlayerDisplayID derives a roster identifier from the owning team's display
// identifier and the player's 1-based roster position
func PlayerDisplayID(teamDisplayID string, position int) string {
	return fmt.Sprintf("%s-P%02d", teamDisplayID, position)
}

// isTransientDBError reports whether the allocation failure is worth
// retrying: lock contention, serialization conflicts, deadlocks, and broken
// connections. Constraint violations and anything else are permanent.
func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isTransientSQLState(string(pqErr.Code))
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

func isTransientSQLState(code string) bool {
	switch code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03", // lock_not_available
		"57014": // query_canceled (lock_timeout expiry)
		return true
	}
	// Class 08: connection exceptions
	return len(code) >= 2 && code[:2] == "08"
}
