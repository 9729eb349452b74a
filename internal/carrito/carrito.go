// Package carrito implements the in-memory sale cart of one selling session.
//
// The cart never owns or caches stock: every mutating call receives the caller's
// current view of the product and checks the quantity against it, so a catalog
// change is observed by the next cart operation.
package carrito

import (
	"errors"
	"fmt"

	"github.com/gabrilr/ferreteria-sistema/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrSinStock is returned when adding a product whose stock is zero.
	ErrSinStock = errors.New("producto sin stock")
	// ErrStockInsuficiente matches every *StockInsuficienteError via errors.Is.
	ErrStockInsuficiente = errors.New("stock insuficiente")
)

// StockInsuficienteError names the product and the maximum quantity available.
type StockInsuficienteError struct {
	ProductoID uuid.UUID
	Nombre     string
	Solicitado int
	Disponible int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, máximo disponible %d",
		e.Nombre, e.Solicitado, e.Disponible)
}

func (e *StockInsuficienteError) Is(target error) bool { return target == ErrStockInsuficiente }

// Item is one cart line. Nombre and Precio are snapshots taken when the line was created.
type Item struct {
	ProductoID uuid.UUID       `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
}

// Subtotal returns Precio * Cantidad.
func (i Item) Subtotal() decimal.Decimal {
	return i.Precio.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

// Carrito keeps its lines in insertion order.
type Carrito struct {
	Items []Item `json:"items"`
}

func New() *Carrito { return &Carrito{Items: []Item{}} }

func (c *Carrito) indice(productoID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductoID == productoID {
			return i
		}
	}
	return -1
}

// AgregarOIncrementar inserts the product with quantity 1, or increments its line by one.
// The cart is left unchanged when the result would exceed p.Stock.
func (c *Carrito) AgregarOIncrementar(p model.Producto) error {
	i := c.indice(p.ID)
	if i < 0 {
		if p.Stock <= 0 {
			return fmt.Errorf("%w: %s", ErrSinStock, p.Nombre)
		}
		c.Items = append(c.Items, Item{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Precio:     p.Precio,
			Cantidad:   1,
		})
		return nil
	}

	nueva := c.Items[i].Cantidad + 1
	if nueva > p.Stock {
		return &StockInsuficienteError{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Solicitado: nueva,
			Disponible: p.Stock,
		}
	}
	c.Items[i].Cantidad = nueva
	return nil
}

// EstablecerCantidad replaces the quantity of p's line. A quantity <= 0 removes the line.
// When the product is not yet in the cart a new line is created with the snapshot of p.
func (c *Carrito) EstablecerCantidad(p model.Producto, cantidad int) error {
	if cantidad <= 0 {
		c.Quitar(p.ID)
		return nil
	}
	if cantidad > p.Stock {
		return &StockInsuficienteError{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Solicitado: cantidad,
			Disponible: p.Stock,
		}
	}
	if i := c.indice(p.ID); i >= 0 {
		c.Items[i].Cantidad = cantidad
		return nil
	}
	c.Items = append(c.Items, Item{
		ProductoID: p.ID,
		Nombre:     p.Nombre,
		Precio:     p.Precio,
		Cantidad:   cantidad,
	})
	return nil
}

// Quitar removes the line for productoID; no-op when absent.
func (c *Carrito) Quitar(productoID uuid.UUID) {
	if i := c.indice(productoID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Cantidad returns the quantity held for productoID (0 when absent).
func (c *Carrito) Cantidad(productoID uuid.UUID) int {
	if i := c.indice(productoID); i >= 0 {
		return c.Items[i].Cantidad
	}
	return 0
}

// Total is the sum of line subtotals.
func (c *Carrito) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Unidades is the sum of line quantities.
func (c *Carrito) Unidades() int {
	n := 0
	for _, it := range c.Items {
		n += it.Cantidad
	}
	return n
}

func (c *Carrito) Vacio() bool { return len(c.Items) == 0 }

func (c *Carrito) Vaciar() { c.Items = []Item{} }
