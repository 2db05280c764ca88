package reminders

import (
	"fmt"
	"time"

	"petcare-plus/internal/platform/clock"

	"golang.org/x/text/language"
)

// Class es la unidad en la que se expresa el tiempo restante.
type Class int

const (
	ClassNow Class = iota
	ClassMinutes
	ClassHours
	ClassDays
)

func (c Class) String() string {
	switch c {
	case ClassMinutes:
		return "minutes"
	case ClassHours:
		return "hours"
	case ClassDays:
		return "days"
	default:
		return "now"
	}
}

// Due es el tiempo restante hasta un recordatorio. Se recalcula en cada lectura.
type Due struct {
	Class Class
	Value int
}

// Compute es una función pura de (target, now).
// target <= now => ahora; < 60m => minutos; < 24h => horas; resto => días (floor).
func Compute(target, now time.Time) Due {
	d := target.Sub(now)
	if d <= 0 {
		return Due{Class: ClassNow}
	}
	switch {
	case d < time.Hour:
		return Due{Class: ClassMinutes, Value: int(d / time.Minute)}
	case d < 24*time.Hour:
		return Due{Class: ClassHours, Value: int(d / time.Hour)}
	default:
		hours := int(d / time.Hour)
		return Due{Class: ClassDays, Value: hours / 24}
	}
}

// ComputeRaw parsea el timestamp y calcula; timestamps inválidos devuelven
// apperr.ErrInvalidTimestamp en vez de un valor basura.
func ComputeRaw(raw string, now time.Time, loc *time.Location) (Due, error) {
	t, err := clock.ParseTimestamp(raw, loc)
	if err != nil {
		return Due{}, err
	}
	return Compute(t, now), nil
}

func (d Due) IsNow() bool { return d.Class == ClassNow }

// Within reporta si el recordatorio vence dentro de window (o ya venció).
func Within(target, now time.Time, window time.Duration) bool {
	return target.Sub(now) <= window
}

type unitForms struct {
	one   string
	other string
}

type phrasebook struct {
	now   string
	in    string // formato con cantidad y unidad
	units map[Class]unitForms
}

var phrasebooks = map[language.Tag]phrasebook{
	language.English: {
		now: "now",
		in:  "in %d %s",
		units: map[Class]unitForms{
			ClassMinutes: {"minute", "minutes"},
			ClassHours:   {"hour", "hours"},
			ClassDays:    {"day", "days"},
		},
	},
	language.BrazilianPortuguese: {
		now: "agora",
		in:  "em %d %s",
		units: map[Class]unitForms{
			ClassMinutes: {"minuto", "minutos"},
			ClassHours:   {"hora", "horas"},
			ClassDays:    {"dia", "dias"},
		},
	},
	language.Spanish: {
		now: "ahora",
		in:  "en %d %s",
		units: map[Class]unitForms{
			ClassMinutes: {"minuto", "minutos"},
			ClassHours:   {"hora", "horas"},
			ClassDays:    {"día", "días"},
		},
	},
}

// SupportedLocales en orden de preferencia del matcher.
var SupportedLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
	language.Spanish,
}

var matcher = language.NewMatcher(SupportedLocales)

// MatchLocale elige el phrasebook a partir de un header Accept-Language.
// Sin coincidencia devuelve fallback.
func MatchLocale(acceptLanguage string, fallback language.Tag) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return SupportedLocales[idx]
}

// ParseLocale acepta tags tipo "pt-BR"; desconocidos caen en inglés.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return SupportedLocales[idx]
}

// Label arma el texto "in 1 hour" / "em 45 minutos" / "now".
func (d Due) Label(locale language.Tag) string {
	pb, ok := phrasebooks[locale]
	if !ok {
		pb = phrasebooks[language.English]
	}
	if d.Class == ClassNow {
		return pb.now
	}
	forms := pb.units[d.Class]
	unit := forms.other
	if d.Value == 1 {
		unit = forms.one
	}
	return fmt.Sprintf(pb.in, d.Value, unit)
}
