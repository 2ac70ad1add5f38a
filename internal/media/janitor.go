package media

import (
	"context"
	"errors"
	"sync"
	"time"

	"portfolio/internal/metrics"

	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 256

// Deleter removes one remote object by URL.
type Deleter interface {
	Delete(ctx context.Context, url string) error
}

type JanitorOptions struct {
	QueueSize int
	Retries   int
	Backoff   time.Duration
	Timeout   time.Duration
}

// Janitor deletes remote media in the background. Deletions that still fail
// after the configured retries are logged and dropped.
type Janitor struct {
	host    Deleter
	logger  *logrus.Logger
	retries int
	backoff time.Duration
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan string

	cancel context.CancelFunc
	done   chan struct{}
}

func NewJanitor(host Deleter, logger *logrus.Logger, opts JanitorOptions) *Janitor {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Janitor{
		host:    host,
		logger:  logger,
		retries: opts.Retries,
		backoff: opts.Backoff,
		timeout: opts.Timeout,
		queue:   make(chan string, opts.QueueSize),
		done:    make(chan struct{}),
	}
}

func (j *Janitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel

	go func() {
		defer close(j.done)
		for url := range j.queue {
			metrics.MediaCleanupQueue.Dec()
			j.remove(ctx, url)
		}
	}()
}

// Enqueue never blocks. URLs that do not fit in the queue are logged and
// dropped.
func (j *Janitor) Enqueue(urls ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, url := range urls {
		if url == "" {
			continue
		}
		if j.closed {
			j.logger.WithField("url", url).Warn("media janitor stopped, leaving remote object in place")
			metrics.MediaCleanup.WithLabelValues("dropped").Inc()
			continue
		}

		select {
		case j.queue <- url:
			metrics.MediaCleanupQueue.Inc()
		default:
			j.logger.WithField("url", url).Warn("media janitor queue full, leaving remote object in place")
			metrics.MediaCleanup.WithLabelValues("dropped").Inc()
		}
	}
}

// Stop drains the queue until ctx is done, then abandons the rest.
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()

	if j.cancel == nil {
		return nil
	}

	select {
	case <-j.done:
		j.cancel()
		return nil
	case <-ctx.Done():
		j.cancel()
		<-j.done
		return ctx.Err()
	}
}

func (j *Janitor) remove(ctx context.Context, url string) {
	var err error
	for attempt := 1; attempt <= j.retries; attempt++ {
		deleteCtx, cancel := context.WithTimeout(ctx, j.timeout)
		err = j.host.Delete(deleteCtx, url)
		cancel()
		if err == nil {
			metrics.MediaCleanup.WithLabelValues("success").Inc()
			j.logger.WithField("url", url).Debug("removed remote media")
			return
		}

		if attempt == j.retries || errors.Is(err, context.Canceled) {
			break
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			attempt = j.retries
		case <-time.After(j.backoff * time.Duration(attempt)):
		}
	}

	metrics.MediaCleanup.WithLabelValues("error").Inc()
	j.logger.WithError(err).WithField("url", url).Error("failed to remove remote media")
}
