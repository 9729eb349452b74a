package service

import (
	"fmt"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/model"
)

// Calendario defines what "today" means: the location whose calendar days group
// sales and closings, and the clock that says what time it is.
type Calendario struct {
	Loc   *time.Location
	Ahora func() time.Time
}

func NewCalendario(loc *time.Location) Calendario {
	if loc == nil {
		loc = time.Local
	}
	return Calendario{Loc: loc, Ahora: time.Now}
}

// Hoy returns the current instant in the calendar's location.
func (c Calendario) Hoy() time.Time {
	return c.Ahora().In(c.Loc)
}

// Fecha returns the calendar-day key of t.
func (c Calendario) Fecha(t time.Time) string {
	return t.In(c.Loc).Format(model.FechaLayout)
}

// Parse reads a YYYY-MM-DD date in the calendar's location; empty means today.
func (c Calendario) Parse(fecha string) (time.Time, error) {
	if fecha == "" {
		return c.Hoy(), nil
	}
	t, err := time.ParseInLocation(model.FechaLayout, fecha, c.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrFechaInvalida, fecha)
	}
	return t, nil
}
