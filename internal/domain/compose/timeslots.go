package compose

import "petcare-plus/internal/platform/clock"

// TimeSlot es un horario libre generado por la función get-available-slots.
type TimeSlot struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time,omitempty"`
	VetID     string `json:"vet_id,omitempty"`
}

// Band es la franja del día.
type Band string

const (
	BandMorning   Band = "morning"   // [06, 12)
	BandAfternoon Band = "afternoon" // [12, 18)
	BandEvening   Band = "evening"   // [18, 24)
)

type SlotGroups struct {
	Morning   []TimeSlot `json:"morning"`
	Afternoon []TimeSlot `json:"afternoon"`
	Evening   []TimeSlot `json:"evening"`
}

// BandOf devuelve la franja de un "HH:MM". ok=false si no parsea o cae antes de las 06.
func BandOf(startTime string) (Band, bool) {
	h, _, ok := clock.ParseHHMM(startTime)
	if !ok {
		return "", false
	}
	switch {
	case h >= 6 && h < 12:
		return BandMorning, true
	case h >= 12 && h < 18:
		return BandAfternoon, true
	case h >= 18:
		return BandEvening, true
	default:
		return "", false
	}
}

// GroupSlots reparte los slots en franjas conservando el orden de entrada.
// Los que no parsean o caen fuera de las franjas se descartan.
func GroupSlots(slots []TimeSlot) SlotGroups {
	g := SlotGroups{
		Morning:   []TimeSlot{},
		Afternoon: []TimeSlot{},
		Evening:   []TimeSlot{},
	}
	for _, s := range slots {
		band, ok := BandOf(s.StartTime)
		if !ok {
			continue
		}
		switch band {
		case BandMorning:
			g.Morning = append(g.Morning, s)
		case BandAfternoon:
			g.Afternoon = append(g.Afternoon, s)
		case BandEvening:
			g.Evening = append(g.Evening, s)
		}
	}
	return g
}

func (g SlotGroups) Len() int {
	return len(g.Morning) + len(g.Afternoon) + len(g.Evening)
}
