package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCue struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingCue) PlayCue(_ context.Context, _ Reminder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingCue) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// gatedUpdater bloquea cada escritura hasta que se libera el gate.
type gatedUpdater struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	err     error
}

func newGatedUpdater() *gatedUpdater {
	return &gatedUpdater{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (u *gatedUpdater) SetStatus(ctx context.Context, r Reminder, status Status) error {
	u.mu.Lock()
	u.calls++
	u.mu.Unlock()
	u.started <- struct{}{}
	<-u.release
	return u.err
}

type stubUpdater struct {
	calls int
	err   error
	last  Status
}

func (u *stubUpdater) SetStatus(ctx context.Context, r Reminder, status Status) error {
	u.calls++
	u.last = status
	return u.err
}

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func visiblePresenter(t *testing.T, opts PresenterOptions) *Presenter {
	t.Helper()
	p := NewPresenter(Reminder{ID: "r-1", PetID: "p-1", Status: StatusPending}, base.Add(10*time.Minute), opts)
	require.Equal(t, StateVisible, p.Tick(context.Background(), base))
	return p
}

func TestPresenter_TickRespectsPreAlertWindow(t *testing.T) {
	cue := &countingCue{err: errors.New("autoplay blocked")}
	p := NewPresenter(Reminder{ID: "r-1"}, base.Add(time.Hour), PresenterOptions{PreAlert: 15 * time.Minute, Cue: cue})
	ctx := context.Background()

	assert.Equal(t, StateHidden, p.Tick(ctx, base))
	assert.Equal(t, StateHidden, p.Tick(ctx, base.Add(44*time.Minute)))
	assert.Equal(t, StateVisible, p.Tick(ctx, base.Add(45*time.Minute)))
	assert.Equal(t, StateVisible, p.Tick(ctx, base.Add(50*time.Minute)))

	// el cue se dispara una sola vez por entrada y su error no afecta el estado
	assert.Equal(t, 1, cue.count())
}

func TestPresenter_CompleteFailureStaysVisible(t *testing.T) {
	up := &stubUpdater{err: errors.New("platform down")}
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, Updater: up})

	err := p.Complete(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateVisible, p.State())
	assert.Equal(t, StatusPending, p.Reminder().Status)
	assert.EqualError(t, p.LastError(), "platform down")

	// reintento manual
	up.err = nil
	require.NoError(t, p.Complete(context.Background()))
	assert.Equal(t, 2, up.calls)
	assert.Equal(t, StatusCompleted, up.last)
	assert.NoError(t, p.LastError())
}

func TestPresenter_CompleteThenExitDelay(t *testing.T) {
	up := &stubUpdater{}
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, ExitDelay: time.Hour, Updater: up})

	require.NoError(t, p.Complete(context.Background()))
	assert.Equal(t, StateCompleted, p.State())
	assert.Equal(t, StatusCompleted, p.Reminder().Status)

	p.Close()
}

func TestPresenter_CompleteHidesImmediatelyWithoutDelay(t *testing.T) {
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, Updater: &stubUpdater{}})

	require.NoError(t, p.Complete(context.Background()))
	assert.Equal(t, StateHidden, p.State())

	// completado no vuelve a aparecer
	assert.Equal(t, StateHidden, p.Tick(context.Background(), base.Add(time.Hour)))
	assert.ErrorIs(t, p.Complete(context.Background()), ErrNotVisible)
}

func TestPresenter_ReentrantActionsIgnoredWhilePending(t *testing.T) {
	up := newGatedUpdater()
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, Updater: up})

	done := make(chan error, 1)
	go func() { done <- p.Complete(context.Background()) }()
	<-up.started

	assert.ErrorIs(t, p.Complete(context.Background()), ErrPending)
	assert.ErrorIs(t, p.Dismiss(time.Time{}), ErrPending)

	close(up.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, up.calls)
}

func TestPresenter_ResultDiscardedAfterClose(t *testing.T) {
	up := newGatedUpdater()
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, Updater: up})

	done := make(chan error, 1)
	go func() { done <- p.Complete(context.Background()) }()
	<-up.started

	p.Close()
	close(up.release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, StateVisible, p.State())
	assert.Equal(t, StateVisible, p.Tick(context.Background(), base))
}

func TestPresenter_DismissDoesNotWriteAndCanRearm(t *testing.T) {
	up := &stubUpdater{}
	cue := &countingCue{}
	p := visiblePresenter(t, PresenterOptions{PreAlert: 15 * time.Minute, Updater: up, Cue: cue})
	ctx := context.Background()

	require.NoError(t, p.Dismiss(base.Add(10*time.Minute)))
	assert.Equal(t, StateHidden, p.State())
	assert.Equal(t, 0, up.calls)

	assert.Equal(t, StateHidden, p.Tick(ctx, base.Add(5*time.Minute)))
	assert.Equal(t, StateVisible, p.Tick(ctx, base.Add(10*time.Minute)))
	assert.Equal(t, 2, cue.count())

	require.NoError(t, p.Dismiss(time.Time{}))
	assert.Equal(t, StateHidden, p.Tick(ctx, base.Add(time.Hour)))
}

func TestPresenter_DismissRequiresVisible(t *testing.T) {
	p := NewPresenter(Reminder{ID: "r-1"}, base.Add(time.Hour), PresenterOptions{PreAlert: time.Minute})
	assert.ErrorIs(t, p.Dismiss(time.Time{}), ErrNotVisible)

	p.Close()
	assert.ErrorIs(t, p.Dismiss(time.Time{}), ErrClosed)
}
