package patterns

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/prakashtraders/checkout-service/internal/metrics"
)

// Breaker wraps gobreaker with Prometheus metrics for one backend
// collaborator (order creation or payment verification).
type Breaker struct {
	*gobreaker.CircuitBreaker
	name    string
	service string
}

// BreakerStatus is the snapshot exposed on the circuit-status endpoint.
type BreakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Value int    `json:"value"`
}

// NewBreaker creates a circuit breaker for a collaborator. Checkout traffic
// is one request per attempt, so the trip threshold is kept low: three
// observed requests with a 60% failure ratio opens the circuit.
func NewBreaker(name, service string) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(service, cbName).Set(stateValue(to))

			log.WithFields(log.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	b := &Breaker{CircuitBreaker: cb, name: name, service: service}
	metrics.CircuitBreakerState.WithLabelValues(service, name).Set(0)
	return b
}

// Execute runs fn through the circuit breaker, counting failures.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.CircuitBreaker.Execute(fn)
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(b.service, b.name).Inc()
	}
	return result, err
}

// Status returns the breaker's current state snapshot.
func (b *Breaker) Status() BreakerStatus {
	return BreakerStatus{
		Name:  b.name,
		State: b.State().String(),
		Value: int(stateValue(b.State())),
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// FormatError rewords breaker sentinel errors with the collaborator name;
// any other error passes through unchanged.
func FormatError(circuitName string, err error) error {
	if err == gobreaker.ErrOpenState {
		return fmt.Errorf("circuit breaker %s is open (service unavailable)", circuitName)
	}
	if err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("circuit breaker %s: too many requests in half-open state", circuitName)
	}
	return err
}
