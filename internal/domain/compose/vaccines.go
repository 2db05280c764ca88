package compose

import (
	"sort"
	"time"

	"petcare-plus/internal/platform/clock"
)

type VaccinationRecord struct {
	ID           string `json:"id,omitempty"`
	PetID        string `json:"pet_id"`
	VaccineName  string `json:"vaccine_name"`
	DateApplied  string `json:"date_applied"`
	NextDueDate  string `json:"next_due_date,omitempty"`
	Veterinarian string `json:"veterinarian,omitempty"`
	Batch        string `json:"batch_number,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Timeline separa la carteira de vacunación para mostrar.
type Timeline struct {
	Applied  []VaccinationRecord `json:"applied"`  // más reciente primero
	Upcoming []VaccinationRecord `json:"upcoming"` // próxima dosis >= hoy, más cercana primero
	Overdue  []VaccinationRecord `json:"overdue"`  // próxima dosis < hoy
}

// VaccineTimeline compara fechas YYYY-MM-DD contra el día de now.
// Registros sin próxima dosis sólo aparecen en Applied.
func VaccineTimeline(records []VaccinationRecord, now time.Time) Timeline {
	today := clock.Today(now)
	tl := Timeline{
		Applied:  []VaccinationRecord{},
		Upcoming: []VaccinationRecord{},
		Overdue:  []VaccinationRecord{},
	}

	for _, r := range records {
		tl.Applied = append(tl.Applied, r)

		next := dateOnly(r.NextDueDate)
		if next == "" {
			continue
		}
		if next >= today {
			tl.Upcoming = append(tl.Upcoming, r)
		} else {
			tl.Overdue = append(tl.Overdue, r)
		}
	}

	sort.SliceStable(tl.Applied, func(i, j int) bool {
		return dateOnly(tl.Applied[i].DateApplied) > dateOnly(tl.Applied[j].DateApplied)
	})
	sort.SliceStable(tl.Upcoming, func(i, j int) bool {
		return dateOnly(tl.Upcoming[i].NextDueDate) < dateOnly(tl.Upcoming[j].NextDueDate)
	})
	sort.SliceStable(tl.Overdue, func(i, j int) bool {
		return dateOnly(tl.Overdue[i].NextDueDate) < dateOnly(tl.Overdue[j].NextDueDate)
	})
	return tl
}

// dateOnly normaliza a YYYY-MM-DD; vacío si no parsea.
func dateOnly(raw string) string {
	t, err := clock.ParseTimestamp(raw, time.UTC)
	if err != nil {
		return ""
	}
	return t.Format(clock.DateLayout)
}
