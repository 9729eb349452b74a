// cmd/seedcatalogo/main.go — Crea/actualiza un catálogo de demo.
// Uso: go run ./cmd/seedcatalogo
package main

import (
	"context"
	"os"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/config"
	"github.com/gabrilr/ferreteria-sistema/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type semilla struct {
	codigo      string
	nombre      string
	precio      string
	stock       int
	stockMinimo int
}

var catalogo = []semilla{
	{"MART-16", "Martillo de uña 16 oz", "189.90", 12, 3},
	{"DEST-PH2", "Desarmador Phillips #2", "64.50", 25, 5},
	{"CLAV-2", "Clavo estándar 2\" (kg)", "48.00", 40, 10},
	{"CINT-AM", "Cinta de aislar 19 mm", "22.00", 60, 15},
	{"TAL-13", "Taladro percutor 1/2\"", "1299.00", 4, 2},
	{"LIJA-120", "Lija de agua grano 120", "9.50", 0, 20},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, s := range catalogo {
		result := db.WithContext(ctx).Exec(`
			INSERT INTO productos (codigo, nombre, precio, stock, stock_minimo, activo, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, true, NOW(), NOW())
			ON CONFLICT ((lower(codigo))) DO UPDATE
			SET nombre = EXCLUDED.nombre,
			    precio = EXCLUDED.precio,
			    stock = EXCLUDED.stock,
			    stock_minimo = EXCLUDED.stock_minimo,
			    activo = true,
			    updated_at = NOW()
		`, s.codigo, s.nombre, decimal.RequireFromString(s.precio), s.stock, s.stockMinimo)
		if result.Error != nil {
			log.Fatal().Err(result.Error).Str("codigo", s.codigo).Msg("insert error")
		}
	}
	log.Info().Int("productos", len(catalogo)).Msg("catálogo de demo creado/actualizado")
}
