package patterns

import (
	"fmt"
	"time"

	"github.com/prakashtraders/checkout-service/internal/metrics"
)

// Bulkhead caps concurrent calls to one collaborator. The gateway clients
// use size 1: no attempt may ever have two outbound requests in flight.
type Bulkhead struct {
	semaphore chan struct{}
	name      string
	service   string
}

// NewBulkhead creates a bulkhead with the given capacity.
func NewBulkhead(size int, name, service string) *Bulkhead {
	return &Bulkhead{
		semaphore: make(chan struct{}, size),
		name:      name,
		service:   service,
	}
}

// Execute runs fn within the bulkhead's limits, rejecting after a bounded
// wait for a slot.
func (b *Bulkhead) Execute(fn func() error) error {
	select {
	case b.semaphore <- struct{}{}:
		metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Inc()
		defer func() {
			<-b.semaphore
			metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Dec()
		}()
		return fn()

	case <-time.After(1 * time.Second):
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: timeout acquiring resource", b.name)
	}
}
