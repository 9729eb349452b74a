package config_test

import (
	"testing"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_TIMEZONE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 8, cfg.JWTExpirationHours)
	assert.Equal(t, 720*time.Minute, cfg.CarritoTTL())
	assert.Equal(t, time.Local, cfg.Location())
	assert.Equal(t, "Ferretería", cfg.NombreNegocio)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_TIMEZONE", "America/Mexico_City")
	t.Setenv("CARRITO_TTL_MINUTES", "30")
	t.Setenv("REPORTE_EMAIL", "gerencia@ferreteria.test")
	t.Setenv("NEGOCIO_NOMBRE", "Tlapalería El Tornillo")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "America/Mexico_City", cfg.Location().String())
	assert.Equal(t, 30*time.Minute, cfg.CarritoTTL())
	assert.Equal(t, "gerencia@ferreteria.test", cfg.ReporteEmail)
	assert.Equal(t, "Tlapalería El Tornillo", cfg.NombreNegocio)
}

func TestLoad_ZonaHorariaInvalida(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Marte/Olympus")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProduccionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "corto")

	_, err := config.Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
