package compose

import (
	"context"
	"strings"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/clock"
	"petcare-plus/internal/ports/entities"
	"petcare-plus/internal/ports/functions"
)

// HealthLog es el registro diario de síntomas/actividad de una mascota.
type HealthLog struct {
	ID       string   `json:"id,omitempty"`
	PetID    string   `json:"pet_id"`
	Date     string   `json:"date"`
	Symptoms []string `json:"symptoms"`
	Activity []string `json:"activities"`
	Mood     string   `json:"mood,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// suggestionPool acota cuántos usuarios se leen para sugerir.
const suggestionPool = 50

type Service struct {
	functions functions.Invoker
	users     entities.Collection[User]
	follows   entities.Collection[Follow]
	vaccines  entities.Collection[VaccinationRecord]
	logs      entities.Collection[HealthLog]
	now       func() time.Time
}

func NewService(
	fn functions.Invoker,
	users entities.Collection[User],
	follows entities.Collection[Follow],
	vaccines entities.Collection[VaccinationRecord],
	logs entities.Collection[HealthLog],
) *Service {
	return &Service{
		functions: fn,
		users:     users,
		follows:   follows,
		vaccines:  vaccines,
		logs:      logs,
		now:       time.Now,
	}
}

type availableSlotsResponse struct {
	Slots []TimeSlot `json:"slots"`
}

// AvailableSlots pide los horarios libres del veterinario y los agrupa por franja.
func (s *Service) AvailableSlots(ctx context.Context, vetID, date string) (SlotGroups, error) {
	if strings.TrimSpace(vetID) == "" {
		return SlotGroups{}, apperr.Validation("vet_id", "is required")
	}
	if strings.TrimSpace(date) == "" {
		date = clock.Today(s.now())
	}
	if _, err := time.Parse(clock.DateLayout, date); err != nil {
		return SlotGroups{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}

	var out availableSlotsResponse
	err := s.functions.Invoke(ctx, functions.GetAvailableSlots, map[string]string{
		"vet_id": vetID,
		"date":   date,
	}, &out)
	if err != nil {
		return SlotGroups{}, err
	}
	return GroupSlots(out.Slots), nil
}

// Suggestions devuelve hasta MaxSuggestions usuarios que userID todavía no sigue.
func (s *Service) Suggestions(ctx context.Context, userID string) ([]User, error) {
	users, err := s.users.List(ctx, "-created_date", suggestionPool)
	if err != nil {
		return nil, err
	}
	follows, err := s.follows.Filter(ctx, entities.Query{"follower_id": userID}, "")
	if err != nil {
		return nil, err
	}

	following := make([]string, 0, len(follows))
	for _, f := range follows {
		following = append(following, f.FollowingID)
	}
	return SuggestFollows(users, userID, following, MaxSuggestions), nil
}

type HealthLogInput struct {
	Date     string
	Symptoms []string
	Activity []string
	Mood     string
	Notes    string
}

// RecordHealthLog normaliza síntomas y actividades como conjuntos antes de guardar.
func (s *Service) RecordHealthLog(ctx context.Context, petID string, in HealthLogInput) (HealthLog, error) {
	if strings.TrimSpace(petID) == "" {
		return HealthLog{}, apperr.Validation("pet_id", "is required")
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = clock.Today(s.now())
	} else if _, err := time.Parse(clock.DateLayout, date); err != nil {
		return HealthLog{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}

	log := HealthLog{
		PetID:    petID,
		Date:     date,
		Symptoms: NewSelection(in.Symptoms...).Items(),
		Activity: NewSelection(in.Activity...).Items(),
		Mood:     strings.TrimSpace(in.Mood),
		Notes:    strings.TrimSpace(in.Notes),
	}
	return s.logs.Create(ctx, log)
}

// VaccineTimeline arma la carteira de vacunación de la mascota.
func (s *Service) VaccineTimeline(ctx context.Context, petID string) (Timeline, error) {
	records, err := s.vaccines.Filter(ctx, entities.Query{"pet_id": petID}, "-date_applied")
	if err != nil {
		return Timeline{}, err
	}
	return VaccineTimeline(records, s.now()), nil
}
