package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/carrito"

	"github.com/redis/go-redis/v9"
)

const carritoKeyPrefix = "carrito:"

// CarritoRepository stores one cart per selling session.
type CarritoRepository interface {
	// Get returns an empty cart when the session has none.
	Get(ctx context.Context, sesion string) (*carrito.Carrito, error)
	Save(ctx context.Context, sesion string, c *carrito.Carrito) error
	Delete(ctx context.Context, sesion string) error
}

type carritoRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCarritoRepository keeps carts in Redis as JSON. Each save refreshes the TTL,
// so an abandoned cart expires ttl after its last change.
func NewCarritoRepository(rdb *redis.Client, ttl time.Duration) CarritoRepository {
	return &carritoRepo{rdb: rdb, ttl: ttl}
}

func (r *carritoRepo) Get(ctx context.Context, sesion string) (*carrito.Carrito, error) {
	raw, err := r.rdb.Get(ctx, carritoKeyPrefix+sesion).Bytes()
	if errors.Is(err, redis.Nil) {
		return carrito.New(), nil
	}
	if err != nil {
		return nil, err
	}
	c := carrito.New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("carrito %s corrupto: %w", sesion, err)
	}
	if c.Items == nil {
		c.Items = []carrito.Item{}
	}
	return c, nil
}

func (r *carritoRepo) Save(ctx context.Context, sesion string, c *carrito.Carrito) error {
	if c.Vacio() {
		return r.Delete(ctx, sesion)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, carritoKeyPrefix+sesion, data, r.ttl).Err()
}

func (r *carritoRepo) Delete(ctx context.Context, sesion string) error {
	return r.rdb.Del(ctx, carritoKeyPrefix+sesion).Err()
}
