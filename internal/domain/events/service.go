package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"petcare-plus/internal/domain/calendar"
	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/clock"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/entities"
)

var (
	ErrInvalidInput = apperr.Validation("", "invalid input")
	ErrNotFound     = fmt.Errorf("event %w", apperr.ErrNotFound)
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Service struct {
	events entities.Collection[Event]
	loc    *time.Location
	log    logger.Logger
	now    func() time.Time
}

// NewService: loc es la zona con la que se interpretan fechas sin offset (nil = UTC).
func NewService(events entities.Collection[Event], loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		events: events,
		loc:    loc,
		log:    log,
		now:    time.Now,
	}
}

type Actor struct {
	Type ActorType
	ID   string
}

type CreateInput struct {
	Type     EventType
	Date     time.Time
	Title    string
	Notes    string
	Location string
}

func (s *Service) Create(ctx context.Context, petID string, actor Actor, in CreateInput) (Event, error) {
	if strings.TrimSpace(petID) == "" {
		return Event{}, ErrInvalidInput
	}
	if in.Date.IsZero() {
		return Event{}, apperr.Validation("date", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, apperr.Validation("title", "is required")
	}
	if actor.Type == "" || strings.TrimSpace(actor.ID) == "" {
		return Event{}, ErrInvalidInput
	}

	return s.events.Create(ctx, Event{
		PetID:     petID,
		Type:      ParseEventType(string(in.Type)),
		Title:     strings.TrimSpace(in.Title),
		Date:      in.Date.Format(time.RFC3339),
		Notes:     strings.TrimSpace(in.Notes),
		Location:  strings.TrimSpace(in.Location),
		CreatedBy: actor.ID,
		ActorType: actor.Type,
		Status:    EventStatusActive,
		CreatedAt: s.now().UTC(),
	})
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	items, err := s.events.Filter(ctx, entities.Query{"id": id}, "")
	if err != nil {
		return Event{}, err
	}
	if len(items) == 0 {
		return Event{}, ErrNotFound
	}
	return items[0], nil
}

// ListByPet trae los eventos de la mascota y aplica el filtro localmente
// (la plataforma sólo filtra por igualdad). Orden: fecha descendente.
func (s *Service) ListByPet(ctx context.Context, petID string, filter ListFilter) ([]Event, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, ErrInvalidInput
	}
	items, err := s.events.Filter(ctx, entities.Query{"pet_id": petID}, "-date")
	if err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	type dated struct {
		ev Event
		at time.Time
	}
	kept := make([]dated, 0, len(items))
	for _, e := range items {
		if e.Status == EventStatusVoided && !filter.IncludeVoided {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, e.Type) {
			continue
		}
		at, err := clock.ParseTimestamp(e.Date, s.loc)
		if err != nil {
			s.log.Warn("event with invalid date", map[string]any{"event_id": e.ID, "date": e.Date})
			if filter.From != nil || filter.To != nil {
				continue
			}
		}
		if filter.From != nil && at.Before(*filter.From) {
			continue
		}
		if filter.To != nil && at.After(*filter.To) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Notes), q) {
			continue
		}
		kept = append(kept, dated{ev: e, at: at})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].at.After(kept[j].at)
	})

	out := make([]Event, 0, min(limit, len(kept)))
	for _, d := range kept {
		if len(out) == limit {
			break
		}
		out = append(out, d.ev)
	}
	return out, nil
}

// Void marca el evento como voided (no se borra).
func (s *Service) Void(ctx context.Context, id string) (Event, error) {
	ev, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ev.Status == EventStatusVoided {
		return ev, nil
	}
	return s.events.Update(ctx, ev.ID, map[string]any{"status": EventStatusVoided})
}

// Delete borra el evento en la plataforma.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

// CalendarEvents proyecta los eventos activos para el export .ics.
// Los eventos con fecha ilegible se omiten.
func (s *Service) CalendarEvents(ctx context.Context, petID string) ([]calendar.Event, error) {
	items, err := s.events.Filter(ctx, entities.Query{"pet_id": petID}, "date")
	if err != nil {
		return nil, err
	}

	out := make([]calendar.Event, 0, len(items))
	for _, e := range items {
		// Sin status cuenta como activo, igual que en ListByPet.
		if e.Status == EventStatusVoided {
			continue
		}
		at, err := clock.ParseTimestamp(e.Date, s.loc)
		if err != nil {
			s.log.Warn("event skipped in calendar export", map[string]any{"event_id": e.ID, "date": e.Date})
			continue
		}
		out = append(out, calendar.Event{
			ID:       e.ID,
			Title:    e.Title,
			Type:     string(e.Type),
			Date:     at,
			Notes:    e.Notes,
			Location: e.Location,
		})
	}
	return out, nil
}

func containsType(types []EventType, t EventType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
