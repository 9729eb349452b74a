package worker

// dlq.go
// Failed report and email jobs land in dlq:{queue} so the closing they belong to
// can be found and its report regenerated by hand.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// FalloJob is one dead-lettered job. Referencia names the closing (corte_id) or
// the email subject the job was about, empty when the payload could not be read.
type FalloJob struct {
	Cola       string          `json:"cola"`
	Tipo       string          `json:"tipo"`
	Referencia string          `json:"referencia,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Motivo     string          `json:"motivo"`
	FallidoAt  string          `json:"fallido_at"` // RFC 3339
	Intentos   int             `json:"intentos"`
}

// referenciaDe extracts what a human needs to retry the job by hand.
func referenciaDe(tipo string, payload json.RawMessage) string {
	switch tipo {
	case JobCorteReporte:
		var p CorteReportePayload
		if json.Unmarshal(payload, &p) == nil {
			return p.CorteID
		}
	case JobEmail:
		var p EmailJobPayload
		if json.Unmarshal(payload, &p) == nil {
			return p.Subject
		}
	}
	return ""
}

// SendToDLQ pushes a failed job to its queue's dead letter list. Failures are only logged.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	if !json.Valid(payload) {
		payload, _ = json.Marshal(string(payload))
	}
	fallo := FalloJob{
		Cola:       queue,
		Tipo:       jobType,
		Referencia: referenciaDe(jobType, payload),
		Payload:    payload,
		Motivo:     reason,
		FallidoAt:  time.Now().UTC().Format(time.RFC3339),
		Intentos:   attempts,
	}

	data, err := json.Marshal(fallo)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("referencia", fallo.Referencia).Msg("dlq: push failed, job lost")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).Str("referencia", fallo.Referencia).
		Str("reason", reason).Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of entries in a DLQ for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ListarDLQ returns up to limit failed jobs of queue, newest first. Unreadable
// entries are skipped.
func ListarDLQ(ctx context.Context, rdb *redis.Client, queue string, limit int64) ([]FalloJob, error) {
	if limit <= 0 {
		limit = 100
	}
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FalloJob, 0, len(raw))
	for _, r := range raw {
		var f FalloJob
		if json.Unmarshal([]byte(r), &f) != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
