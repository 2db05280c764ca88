package reminders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/clock"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/entities"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type Options struct {
	PreAlert  time.Duration
	ExitDelay time.Duration
	Locale    language.Tag
	Location  *time.Location
	Cue       CuePlayer
	Logger    logger.Logger
}

// Service une los recordatorios de la plataforma con los agendados localmente
// y mantiene un presenter por recordatorio pendiente.
type Service struct {
	remote entities.Collection[Reminder]
	local  Repository
	now    func() time.Time
	opts   Options
	log    logger.Logger

	mu         sync.Mutex
	presenters map[string]*Presenter
}

func NewService(remote entities.Collection[Reminder], local Repository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	return &Service{
		remote:     remote,
		local:      local,
		now:        time.Now,
		opts:       opts,
		log:        opts.Logger,
		presenters: map[string]*Presenter{},
	}
}

func (s *Service) Locale() language.Tag { return s.opts.Locale }

// View es un recordatorio con su tiempo restante calculado para "now".
type View struct {
	Reminder Reminder
	At       time.Time
	Due      Due
	Err      error
	State    State
}

type ScheduleInput struct {
	PetID       string
	Kind        Kind
	Title       string
	Description string
	Date        time.Time
}

// Schedule agenda un recordatorio local (pending).
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (Reminder, error) {
	if strings.TrimSpace(in.PetID) == "" {
		return Reminder{}, apperr.Validation("pet_id", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return Reminder{}, apperr.Validation("title", "is required")
	}
	if in.Date.IsZero() {
		return Reminder{}, apperr.Validation("date", "is required")
	}

	r := Reminder{
		ID:          uuid.NewString(),
		PetID:       strings.TrimSpace(in.PetID),
		Kind:        ParseKind(string(in.Kind)),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.Format(time.RFC3339),
		Status:      StatusPending,
		Source:      SourceLocal,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.local.Create(ctx, r); err != nil {
		return Reminder{}, err
	}
	s.log.Info("reminder scheduled", map[string]any{"reminder_id": r.ID, "pet_id": r.PetID})
	return r, nil
}

// List devuelve los recordatorios de las mascotas, ordenados por fecha e id.
// El tiempo restante se recalcula en cada llamada.
func (s *Service) List(ctx context.Context, petIDs []string) ([]View, error) {
	items, err := s.merged(ctx, petIDs)
	if err != nil {
		return nil, err
	}
	now := s.now()

	out := make([]View, 0, len(items))
	for _, r := range items {
		v := View{Reminder: r, State: StateHidden}
		at, err := clock.ParseTimestamp(r.Date, s.opts.Location)
		if err != nil {
			v.Err = err
		} else {
			v.At = at
			v.Due = Compute(at, now)
		}
		if p := s.presenter(r.ID); p != nil {
			v.State = p.State()
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		return a.Reminder.ID < b.Reminder.ID
	})
	return out, nil
}

// Active evalúa un presenter por recordatorio pendiente y devuelve los visibles.
func (s *Service) Active(ctx context.Context, petIDs []string) ([]View, error) {
	views, err := s.List(ctx, petIDs)
	if err != nil {
		return nil, err
	}
	now := s.now()

	out := make([]View, 0)
	for _, v := range views {
		if v.Reminder.Status != StatusPending {
			s.drop(v.Reminder.ID)
			continue
		}
		if v.Err != nil {
			s.log.Warn("reminder with invalid date", map[string]any{"reminder_id": v.Reminder.ID, "date": v.Reminder.Date})
			continue
		}
		p := s.presenterFor(v.Reminder, v.At)
		if st := p.Tick(ctx, now); st == StateVisible {
			v.State = st
			out = append(out, v)
		}
	}
	return out, nil
}

// Complete marca como completado un recordatorio cuya notificación está visible.
func (s *Service) Complete(ctx context.Context, id string) (Reminder, error) {
	p := s.presenter(id)
	if p == nil {
		return Reminder{}, ErrNotVisible
	}
	if err := p.Complete(ctx); err != nil {
		if !errors.Is(err, ErrPending) && !errors.Is(err, ErrNotVisible) {
			s.log.Warn("reminder completion failed", map[string]any{"reminder_id": id, "error": err.Error()})
		}
		return Reminder{}, err
	}
	s.log.Info("reminder completed", map[string]any{"reminder_id": id})
	return p.Reminder(), nil
}

// Dismiss oculta la notificación; con until no cero vuelve a aparecer en ese instante.
func (s *Service) Dismiss(_ context.Context, id string, until time.Time) error {
	p := s.presenter(id)
	if p == nil {
		return ErrNotVisible
	}
	return p.Dismiss(until)
}

// Presenter devuelve el presenter registrado para id (nil si no hay).
func (s *Service) Presenter(id string) *Presenter {
	return s.presenter(id)
}

// SetStatus implementa StatusUpdater: los remotos van a la plataforma y los locales al repo.
func (s *Service) SetStatus(ctx context.Context, r Reminder, status Status) error {
	if r.Source == SourceLocal {
		return s.local.UpdateStatus(ctx, r.ID, status)
	}
	_, err := s.remote.Update(ctx, r.ID, map[string]any{"status": string(status)})
	return err
}

// Close cierra todos los presenters; escrituras en vuelo se descartan.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.presenters {
		p.Close()
		delete(s.presenters, id)
	}
}

func (s *Service) merged(ctx context.Context, petIDs []string) ([]Reminder, error) {
	if len(petIDs) == 0 {
		return []Reminder{}, nil
	}

	// Filter sólo compara por igualdad: una consulta por mascota.
	var remote []Reminder
	for _, petID := range petIDs {
		items, err := s.remote.Filter(ctx, entities.Query{"pet_id": petID}, "date")
		if err != nil {
			return nil, err
		}
		remote = append(remote, items...)
	}
	local, err := s.local.ListByPets(ctx, petIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Reminder, len(remote)+len(local))
	for _, r := range local {
		r.Source = SourceLocal
		byID[r.ID] = r
	}
	for _, r := range remote {
		r.Source = SourceRemote
		byID[r.ID] = r
	}

	out := make([]Reminder, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) presenter(id string) *Presenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presenters[id]
}

func (s *Service) presenterFor(r Reminder, at time.Time) *Presenter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.presenters[r.ID]; ok {
		if p.At().Equal(at) {
			return p
		}
		// La fecha cambió en la plataforma: se rearma.
		p.Close()
	}
	p := NewPresenter(r, at, PresenterOptions{
		PreAlert:  s.opts.PreAlert,
		ExitDelay: s.opts.ExitDelay,
		Cue:       s.opts.Cue,
		Updater:   s,
		Logger:    s.log,
	})
	s.presenters[r.ID] = p
	return p
}

func (s *Service) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.presenters[id]; ok {
		p.Close()
		delete(s.presenters, id)
	}
}
