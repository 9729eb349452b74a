package worker

// reporte_worker.go
// Processes closing report jobs from QueueCorteReporte:
//  1. Load the CorteCaja
//  2. Render the PDF summary
//  3. Enqueue an email with the PDF when a recipient is configured

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabrilr/ferreteria-sistema/internal/infra"
	"github.com/gabrilr/ferreteria-sistema/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CorteReportePayload is the job envelope sent to QueueCorteReporte.
type CorteReportePayload struct {
	CorteID string `json:"corte_id"`
}

type emailEncolador interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type CorteReporteWorker struct {
	cortes       repository.CorteRepository
	emails       emailEncolador
	negocio      string
	pdfDir       string
	destinatario string
}

// NewCorteReporteWorker wires the report worker. An empty destinatario disables mailing.
func NewCorteReporteWorker(cortes repository.CorteRepository, emails emailEncolador, negocio, pdfDir, destinatario string) *CorteReporteWorker {
	return &CorteReporteWorker{
		cortes:       cortes,
		emails:       emails,
		negocio:      negocio,
		pdfDir:       pdfDir,
		destinatario: destinatario,
	}
}

func (w *CorteReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CorteReportePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("corte_reporte: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.CorteID)
	if err != nil {
		return fmt.Errorf("corte_reporte: invalid corte_id %q", payload.CorteID)
	}

	corte, err := w.cortes.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("corte_reporte: load corte %s: %w", id, err)
	}

	pdfPath, err := infra.GenerarCortePDF(corte, w.negocio, w.pdfDir)
	if err != nil {
		return fmt.Errorf("corte_reporte: %w", err)
	}
	log.Info().Str("pdf", pdfPath).Str("fecha", corte.Fecha).Msg("corte_reporte: PDF generated")

	if w.destinatario == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: w.destinatario,
		Subject: fmt.Sprintf("Corte de caja %s", corte.Fecha),
		Body: fmt.Sprintf("Corte de caja del %s realizado por %s.\nVentas completadas: %d\nVentas canceladas: %d\nTotal ingresos: $%s",
			corte.Fecha, corte.Responsable, corte.VentasCompletadas, corte.VentasCanceladas, corte.TotalIngresos.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		return fmt.Errorf("corte_reporte: enqueue email: %w", err)
	}
	return nil
}
