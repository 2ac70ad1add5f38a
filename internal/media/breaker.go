package media

import (
	"context"
	"time"

	"portfolio/internal/metrics"
	"portfolio/pkg/types"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/sirupsen/logrus"
)

const breakerName = "media-host"

// BreakerHost fails fast while the wrapped host keeps failing.
type BreakerHost struct {
	host Host
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreakerHost opens after maxFailures consecutive failures and probes again
// after cooldown.
func NewBreakerHost(host Host, logger *logrus.Logger, maxFailures uint32, cooldown time.Duration) *BreakerHost {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	metrics.MediaBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("media host circuit breaker changed state")
			metrics.MediaBreakerState.Set(stateValue(to))
		},
	})

	return &BreakerHost{host: host, cb: cb}
}

func (b *BreakerHost) Upload(ctx context.Context, file types.Upload) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.host.Upload(ctx, file)
	})
}

func (b *BreakerHost) Delete(ctx context.Context, url string) error {
	_, err := b.cb.Execute(func() (string, error) {
		return "", b.host.Delete(ctx, url)
	})
	return err
}

func (b *BreakerHost) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
