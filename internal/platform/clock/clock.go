package clock

import (
	"strconv"
	"strings"
	"time"

	"petcare-plus/internal/platform/apperr"
)

// DateLayout es el formato de fecha que usa la plataforma (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Today formatea la fecha actual como YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseTimestamp acepta los formatos que devuelve la plataforma.
// Los formatos sin zona se interpretan en loc (UTC si loc es nil).
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.ErrInvalidTimestamp
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.ErrInvalidTimestamp
}

// ParseHHMM parsea "HH:MM". ok=false si no es una hora válida.
func ParseHHMM(s string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
