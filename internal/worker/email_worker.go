package worker

// email_worker.go
// Processes email jobs from QueueEmail: closing reports with their PDF attached.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Enviador sends one email. *infra.Mailer implements it.
type Enviador interface {
	EnviarConAdjunto(to, subject, body, pdfPath string) error
}

// EmailWorker sends emails through a circuit breaker, retrying transient failures.
type EmailWorker struct {
	mailer  Enviador
	breaker *infra.CircuitBreaker
	backoff time.Duration
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Enviador, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker, backoff: time.Second}
}

// Process sends an email with the PDF attached.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	err := withRetry(ctx, 3, w.backoff, func(attempt int) error {
		err := w.breaker.Execute(func() error {
			return w.mailer.EnviarConAdjunto(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
		if errors.Is(err, infra.ErrCircuitOpen) || errors.Is(err, infra.ErrSMTPNoConfigurado) {
			return stopRetry{err}
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).
				Msg("email_worker: send attempt failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: email sent")
	return nil
}

// stopRetry marks an error that makes further attempts pointless.
type stopRetry struct{ error }

func (s stopRetry) Unwrap() error { return s.error }

// withRetry calls fn up to maxAttempts times with exponential backoff
// (base, 2*base, ...). Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		var stop stopRetry
		if errors.As(err, &stop) {
			return stop.error
		}
		lastErr = err
	}
	return lastErr
}
