package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCorteReporte = "jobs:corte_reporte"
	QueueEmail        = "jobs:email"

	JobCorteReporte = "corte_reporte"
	JobEmail        = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Processor handles the payload of one job type. A returned error moves the job
// to the dead letter queue.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarReporteCorte pushes a closing report job to Redis.
func (d *Dispatcher) EncolarReporteCorte(ctx context.Context, corteID uuid.UUID) error {
	return d.enqueue(ctx, QueueCorteReporte, JobCorteReporte, CorteReportePayload{CorteID: corteID.String()})
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processors map[string]Processor) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, processors)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, processors map[string]Processor) {
	queues := []string{QueueCorteReporte, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, processors, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, processors map[string]Processor, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "invalid envelope: "+err.Error(), 0)
		return
	}

	p, ok := processors[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no processor for job type")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no processor registered", 0)
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	if err := p.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("job failed")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
	}
}
