package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"petcare-plus/internal/adapters/platform"
	mem "petcare-plus/internal/adapters/storage/memory"
	pg "petcare-plus/internal/adapters/storage/postgres"
	"petcare-plus/internal/config"
	"petcare-plus/internal/domain/calendar"
	"petcare-plus/internal/domain/compose"
	"petcare-plus/internal/domain/events"
	"petcare-plus/internal/domain/invitations"
	"petcare-plus/internal/domain/pets"
	"petcare-plus/internal/domain/reminders"
	"petcare-plus/internal/domain/session"
	"petcare-plus/internal/domain/uploads"
	"petcare-plus/internal/middleware"
	"petcare-plus/internal/platform/logger"
	"petcare-plus/internal/ports/auth"
	"petcare-plus/internal/ports/entities"

	_ "petcare-plus/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Application
	Logger logger.Logger

	// Cliente de la plataforma (entidades, funciones, upload).
	Platform *platform.Client

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres para el estado local. Si no, in-memory.
	DB *sql.DB
}

// Services agrupa los servicios por módulo ya cableados.
type Services struct {
	Pets        *pets.Service
	Events      *events.Service
	Invitations *invitations.Service
	Reminders   *reminders.Service
	Calendar    *calendar.Exporter
	Compose     *compose.Service
	Uploads     *uploads.Service
	Session     *session.Service
}

// Close libera los presenters de recordatorios.
func (s *Services) Close() {
	if s.Reminders != nil {
		s.Reminders.Close()
	}
}

func NewServices(opts Options) *Services {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	cfg := opts.Config
	pc := opts.Platform

	loc := loadLocation(cfg.Calendar.Timezone, log)

	// Estado local: Postgres si hay DB, si no in-memory
	var (
		reminderRepo reminders.Repository
		intents      session.IntentStore
		prefs        session.PreferenceStore
	)
	if opts.DB != nil {
		reminderRepo = pg.NewRemindersRepo(opts.DB)
		intents = pg.NewIntentStore(opts.DB)
		prefs = pg.NewPreferenceStore(opts.DB)
	} else {
		reminderRepo = mem.NewReminderRepo()
		intents = mem.NewIntentStore()
		prefs = mem.NewPreferenceStore()
	}

	// Services por módulo
	invSvc := invitations.NewService(platform.NewCollection[invitations.Invitation](pc, entities.VetInvitation), pc, log)
	petsSvc := pets.NewService(platform.NewCollection[pets.Pet](pc, entities.Pet), invSvc)
	eventsSvc := events.NewService(platform.NewCollection[events.Event](pc, entities.Event), loc, log)

	remSvc := reminders.NewService(
		platform.NewCollection[reminders.Reminder](pc, entities.Reminder),
		reminderRepo,
		reminders.Options{
			PreAlert:  cfg.Reminders.PreAlert,
			ExitDelay: cfg.Reminders.ExitDelay,
			Locale:    reminders.ParseLocale(cfg.Reminders.Locale),
			Location:  loc,
			Cue:       reminders.LoggerCue{Log: log},
			Logger:    log,
		},
	)

	ser := calendar.NewSerializer(calendar.Options{
		ProductID:       cfg.Calendar.ProductID,
		Timezone:        cfg.Calendar.Timezone,
		UIDDomain:       cfg.Calendar.UIDDomain,
		DefaultLocation: cfg.Calendar.DefaultLocation,
		Duration:        cfg.Calendar.Duration,
		TimeMode:        calendar.ParseTimeMode(cfg.Calendar.TimeMode),
	})
	exporter := calendar.NewExporter(ser, log, eventsSvc, reminderSource(remSvc))

	composeSvc := compose.NewService(
		pc,
		platform.NewCollection[compose.User](pc, entities.User),
		platform.NewCollection[compose.Follow](pc, entities.Follow),
		platform.NewCollection[compose.VaccinationRecord](pc, entities.VaccinationRecord),
		platform.NewCollection[compose.HealthLog](pc, entities.HealthLog),
	)

	verifier := opts.AuthVerifier
	if verifier == nil {
		verifier = devVerifier{}
	}
	sessionSvc := session.NewService(intents, prefs, verifier, session.Options{
		RedirectAttempts: cfg.Session.RedirectAttempts,
		RedirectBackoff:  cfg.Session.RedirectBackoff,
		DefaultRedirect:  cfg.Session.DefaultRedirect,
		Logger:           log,
	})

	return &Services{
		Pets:        petsSvc,
		Events:      eventsSvc,
		Invitations: invSvc,
		Reminders:   remSvc,
		Calendar:    exporter,
		Compose:     composeSvc,
		Uploads:     uploads.NewService(pc, cfg.Uploads.MaxBytes, log),
		Session:     sessionSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	return Mount(NewServices(opts), opts)
}

// Mount arma el chi.Router sobre servicios ya construidos.
func Mount(svcs *Services, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	pets.RegisterRoutes(r, svcs.Pets)
	events.RegisterRoutes(r, svcs.Events, svcs.Pets)
	invitations.RegisterRoutes(r, svcs.Invitations, svcs.Pets)
	reminders.RegisterRoutes(r, svcs.Reminders, svcs.Pets)
	calendar.RegisterRoutes(r, svcs.Calendar, svcs.Pets)
	compose.RegisterRoutes(r, svcs.Compose, svcs.Pets)
	uploads.RegisterRoutes(r, svcs.Uploads)
	session.RegisterRoutes(r, svcs.Session)

	return r
}

// reminderSource exporta los recordatorios pendientes con fecha válida.
func reminderSource(svc *reminders.Service) calendar.EventSource {
	return calendar.SourceFunc(func(ctx context.Context, petID string) ([]calendar.Event, error) {
		views, err := svc.List(ctx, []string{petID})
		if err != nil {
			return nil, err
		}
		out := make([]calendar.Event, 0, len(views))
		for _, v := range views {
			if v.Err != nil || v.Reminder.Status != reminders.StatusPending {
				continue
			}
			out = append(out, calendar.Event{
				ID:    v.Reminder.ID,
				Title: v.Reminder.Title,
				Type:  string(v.Reminder.Kind),
				Date:  v.At,
				Notes: v.Reminder.Description,
			})
		}
		return out, nil
	})
}

func loadLocation(name string, log logger.Logger) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("unknown timezone, using UTC", map[string]any{"timezone": name, "error": err.Error()})
		return time.UTC
	}
	return loc
}

// devVerifier: sin plataforma de auth, el token es el user id (igual que X-Debug-User-ID).
type devVerifier struct{}

func (devVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, platform.ErrTokenEmpty
	}
	return auth.Claims{UserID: token}, nil
}
