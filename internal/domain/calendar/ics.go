package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const icsTimeLayout = "20060102T150405"

type Options struct {
	ProductID       string
	CalName         string
	Timezone        string
	UIDDomain       string
	DefaultLocation string
	Duration        time.Duration
	TimeMode        TimeMode
}

// Serializer arma el VCALENDAR. Es puro salvo por DTSTAMP (now inyectable).
type Serializer struct {
	opts Options
	now  func() time.Time
}

func NewSerializer(opts Options) *Serializer {
	if opts.Duration <= 0 {
		opts.Duration = time.Hour
	}
	if opts.TimeMode == "" {
		opts.TimeMode = TimeModeWallClock
	}
	return &Serializer{opts: opts, now: time.Now}
}

// WithClock devuelve una copia con reloj fijo.
func (s *Serializer) WithClock(now func() time.Time) *Serializer {
	cp := *s
	cp.now = now
	return &cp
}

// Serialize genera un VEVENT por evento. Las líneas terminan en CRLF.
func (s *Serializer) Serialize(events []Event) []byte {
	var b strings.Builder
	stamp := s.now().UTC().Format(icsTimeLayout) + "Z"

	line(&b, "BEGIN:VCALENDAR")
	line(&b, "VERSION:2.0")
	line(&b, "PRODID:"+s.opts.ProductID)
	line(&b, "CALSCALE:GREGORIAN")
	if s.opts.CalName != "" {
		line(&b, "X-WR-CALNAME:"+escapeText(s.opts.CalName))
	}
	if s.opts.Timezone != "" {
		line(&b, "X-WR-TIMEZONE:"+s.opts.Timezone)
	}

	for _, e := range events {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = uuid.NewString()
		}
		location := strings.TrimSpace(e.Location)
		if location == "" {
			location = s.opts.DefaultLocation
		}

		line(&b, "BEGIN:VEVENT")
		line(&b, fmt.Sprintf("UID:%s@%s", id, s.opts.UIDDomain))
		line(&b, "DTSTAMP:"+stamp)
		line(&b, "DTSTART:"+s.formatTime(e.Date))
		line(&b, "DTEND:"+s.formatTime(e.Date.Add(s.opts.Duration)))
		line(&b, fmt.Sprintf("SUMMARY:%s (%s)", escapeText(e.Title), escapeText(e.Type)))
		line(&b, "DESCRIPTION:"+escapeText(e.Notes))
		line(&b, "LOCATION:"+escapeText(location))
		line(&b, "END:VEVENT")
	}

	line(&b, "END:VCALENDAR")
	return []byte(b.String())
}

func (s *Serializer) formatTime(t time.Time) string {
	if s.opts.TimeMode == TimeModeUTC {
		t = t.UTC()
	}
	return t.Format(icsTimeLayout) + "Z"
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteString("\r\n")
}

// escapeText convierte saltos de línea en la secuencia literal \n.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
