package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
	apperrors "github.com/AsimRauf/jewellery-store-sub002/pkg/errors"
)

// ErrBreakerOpen is returned while a collection's breaker rejects calls.
var ErrBreakerOpen = gobreaker.ErrOpenState

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "store_circuit_breaker_state",
		Help: "Current state of the per-collection circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"collection"},
)

// BreakerConfig configures the per-collection circuit breakers.
type BreakerConfig struct {
	Enabled bool `env:"BREAKER_ENABLED" envDefault:"true"`

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32 `env:"BREAKER_MAX_REQUESTS" envDefault:"1"`

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `env:"BREAKER_INTERVAL" envDefault:"60s"`

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`

	// FailureRatio trips the breaker once MinRequests calls were observed.
	FailureRatio float64 `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	MinRequests  uint32  `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerStore guards every collection of a store with its own circuit
// breaker, so one failing category fails fast without affecting the others.
type BreakerStore struct {
	Store

	cfg    BreakerConfig
	logger *slog.Logger

	mu          sync.Mutex
	collections map[string]*breakerCollection
}

// NewBreakerStore wraps s.
func NewBreakerStore(s Store, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	return &BreakerStore{
		Store:       s,
		cfg:         cfg,
		logger:      logger,
		collections: make(map[string]*breakerCollection),
	}
}

// Collection returns the guarded collection. Breakers are created on first
// use and shared by later calls.
func (s *BreakerStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c
	}
	c := &breakerCollection{
		name:    name,
		inner:   s.Store.Collection(name),
		breaker: s.newBreaker(name),
	}
	s.collections[name] = c
	return c
}

// State returns the breaker state of a collection. Collections never used
// report closed.
func (s *BreakerStore) State(name string) gobreaker.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c.breaker.State()
	}
	return gobreaker.StateClosed
}

func (s *BreakerStore) newBreaker(name string) *gobreaker.CircuitBreaker[[]domain.ProductRecord] {
	cfg := s.cfg
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state change",
				slog.String("collection", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	breakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[[]domain.ProductRecord](settings)
}

type breakerCollection struct {
	name    string
	inner   Collection
	breaker *gobreaker.CircuitBreaker[[]domain.ProductRecord]
}

// rejected maps a breaker refusal to a 503 so writers can retry later.
func (c *breakerCollection) rejected(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable("collection "+c.name+" is temporarily unavailable", err)
	}
	return err
}

func (c *breakerCollection) Find(ctx context.Context, filter Filter) ([]domain.ProductRecord, error) {
	records, err := c.breaker.Execute(func() ([]domain.ProductRecord, error) {
		return c.inner.Find(ctx, filter)
	})
	return records, c.rejected(err)
}

func (c *breakerCollection) Upsert(ctx context.Context, records []domain.ProductRecord) error {
	_, err := c.breaker.Execute(func() ([]domain.ProductRecord, error) {
		return nil, c.inner.Upsert(ctx, records)
	})
	return c.rejected(err)
}

func (c *breakerCollection) Delete(ctx context.Context, id string) error {
	_, err := c.breaker.Execute(func() ([]domain.ProductRecord, error) {
		return nil, c.inner.Delete(ctx, id)
	})
	return c.rejected(err)
}
