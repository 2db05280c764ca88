package calendar

import (
	"context"
	"time"
)

// Event es la proyección de solo lectura que se exporta al calendario.
type Event struct {
	ID       string
	Title    string
	Type     string
	Date     time.Time
	Notes    string
	Location string
}

// TimeMode define cómo se escriben las fechas en el .ics.
type TimeMode string

const (
	// TimeModeWallClock escribe la hora local del evento con sufijo Z.
	// Es el formato que ya consumen los calendarios existentes.
	TimeModeWallClock TimeMode = "wallclock"
	// TimeModeUTC convierte a UTC antes de formatear.
	TimeModeUTC TimeMode = "utc"
)

func ParseTimeMode(s string) TimeMode {
	if TimeMode(s) == TimeModeUTC {
		return TimeModeUTC
	}
	return TimeModeWallClock
}

const (
	FileName = "eventos-pet.ics"
	MIMEType = "text/calendar"
)

// EventSource aporta eventos de una mascota al export.
type EventSource interface {
	CalendarEvents(ctx context.Context, petID string) ([]Event, error)
}

// SourceFunc adapta una función a EventSource.
type SourceFunc func(ctx context.Context, petID string) ([]Event, error)

func (f SourceFunc) CalendarEvents(ctx context.Context, petID string) ([]Event, error) {
	return f(ctx, petID)
}
