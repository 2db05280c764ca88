package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/platform/logger"
)

var (
	// ErrPending se devuelve cuando ya hay una escritura en vuelo.
	ErrPending = fmt.Errorf("reminder action already in progress: %w", apperr.ErrPrecondition)
	// ErrClosed se devuelve cuando el presenter fue cerrado.
	ErrClosed = fmt.Errorf("reminder presenter closed: %w", apperr.ErrPrecondition)
	// ErrNotVisible: la acción sólo aplica a una notificación visible.
	ErrNotVisible = fmt.Errorf("reminder notification not visible: %w", apperr.ErrPrecondition)
)

// State del presenter: Hidden -> Visible -> (Completed | Dismissed) -> Hidden.
type State string

const (
	StateHidden    State = "hidden"
	StateVisible   State = "visible"
	StateCompleted State = "completed"
	StateDismissed State = "dismissed"
)

// CuePlayer emite el aviso sonoro. Best effort: los errores se ignoran.
type CuePlayer interface {
	PlayCue(ctx context.Context, r Reminder) error
}

// StatusUpdater persiste el cambio de estado del recordatorio.
type StatusUpdater interface {
	SetStatus(ctx context.Context, r Reminder, status Status) error
}

type PresenterOptions struct {
	PreAlert  time.Duration
	ExitDelay time.Duration
	Cue       CuePlayer
	Updater   StatusUpdater
	Logger    logger.Logger
}

// Presenter es la notificación de un recordatorio.
// Guarda a lo sumo una escritura en vuelo y descarta resultados tras Close.
type Presenter struct {
	mu sync.Mutex

	reminder Reminder
	at       time.Time
	opts     PresenterOptions

	state    State
	pending  bool
	closed   bool
	resolved bool
	rearmAt  time.Time
	lastErr  error
	exit     *time.Timer
}

func NewPresenter(r Reminder, at time.Time, opts PresenterOptions) *Presenter {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Presenter{
		reminder: r,
		at:       at,
		opts:     opts,
		state:    StateHidden,
	}
}

func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Presenter) Reminder() Reminder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reminder
}

func (p *Presenter) At() time.Time { return p.at }

// LastError devuelve el último error de escritura (nil si la última tuvo éxito).
func (p *Presenter) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Tick evalúa la transición Hidden -> Visible para el instante now.
func (p *Presenter) Tick(ctx context.Context, now time.Time) State {
	p.mu.Lock()
	if p.closed || p.resolved || p.state != StateHidden {
		st := p.state
		p.mu.Unlock()
		return st
	}
	if !p.rearmAt.IsZero() && now.Before(p.rearmAt) {
		p.mu.Unlock()
		return StateHidden
	}
	if !Within(p.at, now, p.opts.PreAlert) {
		p.mu.Unlock()
		return StateHidden
	}
	p.state = StateVisible
	p.rearmAt = time.Time{}
	r := p.reminder
	p.mu.Unlock()

	p.playCue(ctx, r)
	return StateVisible
}

func (p *Presenter) playCue(ctx context.Context, r Reminder) {
	if p.opts.Cue == nil {
		return
	}
	if err := p.opts.Cue.PlayCue(ctx, r); err != nil {
		p.opts.Logger.Debug("reminder cue failed", map[string]any{"reminder_id": r.ID, "error": err.Error()})
	}
}

// Complete persiste status=completed y sólo después pasa a Completed.
// Si la escritura falla queda Visible y devuelve el error.
func (p *Presenter) Complete(ctx context.Context) error {
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return ErrClosed
	case p.pending:
		p.mu.Unlock()
		return ErrPending
	case p.state != StateVisible:
		p.mu.Unlock()
		return ErrNotVisible
	}
	p.pending = true
	r := p.reminder
	p.mu.Unlock()

	var err error
	if p.opts.Updater != nil {
		err = p.opts.Updater.SetStatus(ctx, r, StatusCompleted)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = false
	if p.closed {
		return ErrClosed
	}
	if err != nil {
		p.lastErr = err
		return err
	}
	p.lastErr = nil
	p.reminder.Status = StatusCompleted
	p.state = StateCompleted
	p.resolved = true
	p.scheduleHideLocked()
	return nil
}

// Dismiss oculta la notificación sin tocar el estado del recordatorio.
// Con until distinto de cero vuelve a quedar elegible en ese instante.
func (p *Presenter) Dismiss(until time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.closed:
		return ErrClosed
	case p.pending:
		return ErrPending
	case p.state != StateVisible:
		return ErrNotVisible
	}
	p.state = StateDismissed
	p.rearmAt = until
	p.resolved = until.IsZero()
	p.scheduleHideLocked()
	return nil
}

// Close marca el presenter como muerto y cancela el timer de salida.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.exit != nil {
		p.exit.Stop()
		p.exit = nil
	}
}

func (p *Presenter) scheduleHideLocked() {
	if p.opts.ExitDelay <= 0 {
		p.state = StateHidden
		return
	}
	if p.exit != nil {
		p.exit.Stop()
	}
	p.exit = time.AfterFunc(p.opts.ExitDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state == StateCompleted || p.state == StateDismissed {
			p.state = StateHidden
		}
		p.exit = nil
	})
}
