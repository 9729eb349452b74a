// cmd/devtoken/main.go — Emite un JWT de desarrollo firmado con JWT_SECRET.
// Uso: go run ./cmd/devtoken -nombre "Ana" -rol supervisor
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/config"
	"github.com/gabrilr/ferreteria-sistema/internal/middleware"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	nombre := flag.String("nombre", "Vendedor Demo", "nombre registrado en ventas y cortes")
	rol := flag.String("rol", middleware.RolCajero, "cajero | supervisor | administrador")
	userID := flag.String("user", "", "id de usuario (default: uuid aleatorio)")
	ttl := flag.Duration("ttl", 0, "vigencia del token (default: JWT_EXPIRATION_HOURS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET vacío: defínalo en el entorno o en .env")
	}

	switch *rol {
	case middleware.RolCajero, middleware.RolSupervisor, middleware.RolAdministrador:
	default:
		log.Fatal().Str("rol", *rol).Msg("rol desconocido")
	}

	if *userID == "" {
		*userID = uuid.NewString()
	}
	if *ttl <= 0 {
		*ttl = time.Duration(cfg.JWTExpirationHours) * time.Hour
	}

	token, err := middleware.FirmarToken(cfg.JWTSecret, middleware.JWTClaims{
		UserID:   *userID,
		Username: *nombre,
		Nombre:   *nombre,
		Rol:      *rol,
	}, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Println(token)
}
