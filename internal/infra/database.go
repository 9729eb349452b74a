package infra

import (
	"fmt"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. TranslateError is on so
// repositories can tell unique violations (gorm.ErrDuplicatedKey) from other failures.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates / updates all tables, then applies the idempotent SQL
// patches that AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
		&model.CorteCaja{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements.  Each statement uses
// IF NOT EXISTS / existence guards so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// codigo is the case-insensitive match key of the catalog
		{"unique lower(codigo)",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_productos_codigo_lower ON productos (lower(codigo))`},
		// last line of defence for the conditional decrement in DescontarStockTx
		{"check stock >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock >= 0);
  END IF;
END $$`},
		{"check precio >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_precio_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_precio_no_negativo CHECK (precio >= 0);
  END IF;
END $$`},
		{"check ventas.estado", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ventas_estado') THEN
    ALTER TABLE ventas ADD CONSTRAINT chk_ventas_estado CHECK (estado IN ('completada', 'cancelada'));
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
