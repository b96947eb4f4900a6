package workers

import (
	"context"
	"log"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
	"github.com/comitanigiacomo/goalmate-engine/internal/metrics"
)

const (
	DefaultQueueSize   = 100
	DefaultMaxAttempts = 3

	sendTimeout = 15 * time.Second
)

type MailWorkerConfig struct {
	QueueSize    int
	MaxAttempts  int
	InitialDelay time.Duration
}

// MailWorker delivers queued emails in the background, retrying each
// message with exponential backoff.
type MailWorker struct {
	mailer   domain.Mailer
	jobs     chan domain.Email
	retryCfg retry.Config
	done     chan struct{}
}

func NewMailWorker(mailer domain.Mailer, cfg MailWorkerConfig) *MailWorker {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}

	return &MailWorker{
		mailer: mailer,
		jobs:   make(chan domain.Email, cfg.QueueSize),
		retryCfg: retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		done: make(chan struct{}),
	}
}

// Run drains the queue until ctx is cancelled. Emails still queued at that
// point are dropped.
func (w *MailWorker) Run(ctx context.Context) error {
	defer close(w.done)

	log.Println("[MAIL] worker started")
	for {
		select {
		case email := <-w.jobs:
			metrics.UpdateMailQueueDepth(len(w.jobs))
			w.deliver(ctx, email)
		case <-ctx.Done():
			if pending := len(w.jobs); pending > 0 {
				log.Printf("[MAIL] worker shutting down, dropping %d queued emails", pending)
			} else {
				log.Println("[MAIL] worker shutting down")
			}
			return nil
		}
	}
}

// Start runs the worker in its own goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	go func() {
		_ = w.Run(ctx)
	}()
}

// Done is closed once Run has returned.
func (w *MailWorker) Done() <-chan struct{} {
	return w.done
}

// Enqueue never blocks: a full queue yields domain.ErrMailQueueFull.
func (w *MailWorker) Enqueue(email domain.Email) error {
	select {
	case w.jobs <- email:
		metrics.UpdateMailQueueDepth(len(w.jobs))
		return nil
	default:
		metrics.RecordEmailDropped(email.Kind)
		log.Printf("[MAIL] queue full, dropping %s email for %s", email.Kind, email.ToAddress)
		return domain.ErrMailQueueFull
	}
}

func (w *MailWorker) deliver(ctx context.Context, email domain.Email) {
	r := retry.New[struct{}](w.retryCfg)

	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		return struct{}{}, w.mailer.Send(sendCtx, email)
	})
	if err != nil {
		metrics.RecordEmailFailed(email.Kind)
		log.Printf("[MAIL] giving up on %s email for %s: %v", email.Kind, email.ToAddress, err)
		return
	}

	metrics.RecordEmailSent(email.Kind)
}
