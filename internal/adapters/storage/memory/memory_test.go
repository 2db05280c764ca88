package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"petcare-plus/internal/domain/reminders"
	"petcare-plus/internal/domain/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderRepo(t *testing.T) {
	repo := NewReminderRepo()
	ctx := context.Background()
	base := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "b", PetID: "p1", Status: reminders.StatusPending, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "a", PetID: "p1", Status: reminders.StatusPending, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, reminders.Reminder{ID: "c", PetID: "p2", Status: reminders.StatusPending, CreatedAt: base}))
	assert.Error(t, repo.Create(ctx, reminders.Reminder{ID: "a"}))

	list, err := repo.ListByPets(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)

	require.NoError(t, repo.UpdateStatus(ctx, "a", reminders.StatusCompleted))
	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, reminders.StatusCompleted, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "zzz", reminders.StatusCompleted), reminders.ErrNotFound)
}

func TestIntentStore_ConsumeOnce(t *testing.T) {
	store := NewIntentStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", session.Intent{RedirectAfterLogin: "/pets"}))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.Consume(ctx, "s1")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestPreferenceStore_AcceptCookies(t *testing.T) {
	store := NewPreferenceStore()
	ctx := context.Background()
	at := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

	p, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, p.CookiesAccepted)

	changed, err := store.AcceptCookies(ctx, "s1", at)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.AcceptCookies(ctx, "s1", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	p, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, p.AcceptedAt)
	assert.True(t, p.AcceptedAt.Equal(at))
}
