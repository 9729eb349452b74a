package worker

// reconciliacion.go
// Sales whose stock effects could not be applied completely are recorded here for
// a person to fix by hand. Nothing consumes this list automatically.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const ListaReconciliacion = "reconciliacion:ventas"

// Inconsistencia describes a sale whose stock and record may disagree.
type Inconsistencia struct {
	VentaID     string `json:"venta_id"`
	ProductoID  string `json:"producto_id,omitempty"`
	Operacion   string `json:"operacion"` // registrar | cancelar
	Motivo      string `json:"motivo"`
	DetectadaAt string `json:"detectada_at"` // RFC 3339
}

// RegistrarInconsistencia appends inc to the reconciliation list.
func (d *Dispatcher) RegistrarInconsistencia(ctx context.Context, inc Inconsistencia) error {
	data, err := json.Marshal(inc)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, ListaReconciliacion, data).Err(); err != nil {
		return err
	}
	log.Warn().Str("venta_id", inc.VentaID).Str("producto_id", inc.ProductoID).
		Str("operacion", inc.Operacion).Msg("inconsistencia registrada para reconciliación")
	return nil
}

// PendientesReconciliacion returns how many entries wait for review.
func PendientesReconciliacion(ctx context.Context, rdb *redis.Client) (int64, error) {
	return rdb.LLen(ctx, ListaReconciliacion).Result()
}

// ListarInconsistencias returns up to limit entries, newest first.
func ListarInconsistencias(ctx context.Context, rdb *redis.Client, limit int64) ([]Inconsistencia, error) {
	if limit <= 0 {
		limit = 100
	}
	raw, err := rdb.LRange(ctx, ListaReconciliacion, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Inconsistencia, 0, len(raw))
	for _, r := range raw {
		var inc Inconsistencia
		if err := json.Unmarshal([]byte(r), &inc); err != nil {
			continue
		}
		out = append(out, inc)
	}
	return out, nil
}

// Inconsistencias lists the reconciliation entries through the dispatcher's client.
func (d *Dispatcher) Inconsistencias(ctx context.Context, limit int64) ([]Inconsistencia, error) {
	return ListarInconsistencias(ctx, d.rdb, limit)
}
