package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
)

// ConfirmationSender delivers one booking confirmation.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, b models.Booking, t models.Temple) error
}

type Job struct {
	Booking models.Booking
	Temple  models.Temple
}

// DispatcherConfig contains configuration for the notification workers
type DispatcherConfig struct {
	WorkerCount   int
	QueueSize     int
	RetryAttempts int
	RetryDelay    time.Duration
	SendTimeout   time.Duration
}

// Stats is reported on the health endpoint.
type Stats struct {
	Scheduled int64 `json:"scheduled"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Queued    int   `json:"queued"`
}

// Dispatcher sends confirmations on background workers so that a slow or
// failing mail server never affects a booking response.
type Dispatcher struct {
	sender ConfirmationSender
	logger *logger.Logger
	config DispatcherConfig

	mu      sync.RWMutex
	closed  bool
	queue   chan Job
	wg      sync.WaitGroup
	stopCtx context.Context
	cancel  context.CancelFunc

	scheduled atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewDispatcher(sender ConfirmationSender, log *logger.Logger, config *DispatcherConfig) *Dispatcher {
	if config == nil {
		config = &DispatcherConfig{
			WorkerCount:   2,
			QueueSize:     100,
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
			SendTimeout:   30 * time.Second,
		}
	}
	if config.WorkerCount < 1 {
		config.WorkerCount = 1
	}
	if config.RetryAttempts < 1 {
		config.RetryAttempts = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sender:  sender,
		logger:  log,
		config:  *config,
		queue:   make(chan Job, config.QueueSize),
		stopCtx: ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	d.logger.LogProcess("NOTIFY", fmt.Sprintf("Starting notification dispatcher with %d workers", d.config.WorkerCount))
	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Schedule enqueues a confirmation. It never blocks: a full or stopped queue
// drops the job and reports false.
func (d *Dispatcher) Schedule(b models.Booking, t models.Temple) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("NOTIFY", fmt.Sprintf("Dispatcher stopped, dropping confirmation for booking %s", b.ID))
		return false
	}

	select {
	case d.queue <- Job{Booking: b, Temple: t}:
		d.scheduled.Add(1)
		d.logger.LogNotification("SCHEDULED", b.ID, "confirmation queued")
		return true
	default:
		d.dropped.Add(1)
		d.logger.Error("NOTIFY", fmt.Sprintf("Notification queue full, dropping confirmation for booking %s", b.ID))
		return false
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for job := range d.queue {
		if err := d.deliver(job); err != nil {
			d.failed.Add(1)
			d.logger.Error("NOTIFY", fmt.Sprintf("Worker %d gave up on booking %s: %v", id, job.Booking.ID, err))
			continue
		}
		d.delivered.Add(1)
		d.logger.LogNotification("DELIVERED", job.Booking.ID, fmt.Sprintf("confirmation sent to %s", job.Booking.Email))
	}
}

func (d *Dispatcher) deliver(job Job) error {
	var lastErr error
	for attempt := 1; attempt <= d.config.RetryAttempts; attempt++ {
		lastErr = d.sendOnce(job)
		if lastErr == nil {
			return nil
		}
		d.logger.Warn("NOTIFY", fmt.Sprintf("Attempt %d/%d failed for booking %s: %v",
			attempt, d.config.RetryAttempts, job.Booking.ID, lastErr))

		if attempt == d.config.RetryAttempts {
			break
		}
		select {
		case <-time.After(d.config.RetryDelay):
		case <-d.stopCtx.Done():
			return errors.Join(lastErr, d.stopCtx.Err())
		}
	}
	return lastErr
}

func (d *Dispatcher) sendOnce(job Job) error {
	ctx := d.stopCtx
	if d.config.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.SendTimeout)
		defer cancel()
	}
	return d.sender.SendConfirmation(ctx, job.Booking, job.Temple)
}

// Shutdown stops accepting jobs and waits for the queue to drain. When ctx
// expires first, in-flight sends are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.LogProcess("NOTIFY", "Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return fmt.Errorf("notification dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Scheduled: d.scheduled.Load(),
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Queued:    len(d.queue),
	}
}
