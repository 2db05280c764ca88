package compose

import (
	"context"
	"net/http"
	"testing"
	"time"

	"petcare-plus/internal/adapters/platform"
	"petcare-plus/internal/adapters/platform/platformtest"
	"petcare-plus/internal/platform/apperr"
	"petcare-plus/internal/ports/entities"
	"petcare-plus/internal/ports/functions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlatformService(t *testing.T) (*Service, *platformtest.Server) {
	t.Helper()
	srv := platformtest.New("app-1")
	t.Cleanup(srv.Close)

	c, err := platform.NewClient(platform.Config{BaseURL: srv.URL, AppID: srv.AppID, Timeout: time.Second})
	require.NoError(t, err)

	svc := NewService(
		c,
		platform.NewCollection[User](c, entities.User),
		platform.NewCollection[Follow](c, entities.Follow),
		platform.NewCollection[VaccinationRecord](c, entities.VaccinationRecord),
		platform.NewCollection[HealthLog](c, entities.HealthLog),
	)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	return svc, srv
}

func TestService_AvailableSlots(t *testing.T) {
	svc, srv := newPlatformService(t)

	var gotDate any
	srv.HandleFunction(functions.GetAvailableSlots, func(body map[string]any, _ string) (int, any) {
		gotDate = body["date"]
		return http.StatusOK, map[string]any{"slots": []map[string]any{
			{"id": "s1", "start_time": "05:30"},
			{"id": "s2", "start_time": "09:00"},
			{"id": "s3", "start_time": "19:00"},
		}}
	})

	g, err := svc.AvailableSlots(context.Background(), "vet-1", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", gotDate)
	assert.Len(t, g.Morning, 1)
	assert.Empty(t, g.Afternoon)
	assert.Len(t, g.Evening, 1)

	_, err = svc.AvailableSlots(context.Background(), "vet-1", "10/03/2025")
	assert.True(t, apperr.IsValidation(err))
}

func TestService_Suggestions(t *testing.T) {
	svc, srv := newPlatformService(t)
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		srv.Seed(entities.User, map[string]any{"id": id, "full_name": "User " + id})
	}
	srv.Seed(entities.Follow, map[string]any{"follower_id": "u1", "following_id": "u2"})
	srv.Seed(entities.Follow, map[string]any{"follower_id": "u9", "following_id": "u3"})

	got, err := svc.Suggestions(context.Background(), "u1")
	require.NoError(t, err)

	ids := []string{}
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{"u3", "u4", "u5"}, ids)
}

func TestService_RecordHealthLog(t *testing.T) {
	svc, srv := newPlatformService(t)

	log, err := svc.RecordHealthLog(context.Background(), "p1", HealthLogInput{
		Symptoms: []string{"tosse", "tosse", " febre "},
		Activity: []string{"passeio"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "2025-03-10", log.Date)
	assert.Equal(t, []string{"tosse", "febre"}, log.Symptoms)
	assert.Equal(t, 1, srv.Calls("POST "+entities.HealthLog))

	_, err = svc.RecordHealthLog(context.Background(), "p1", HealthLogInput{Date: "ontem"})
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 1, srv.Calls("POST "+entities.HealthLog))
}

func TestService_VaccineTimeline(t *testing.T) {
	svc, srv := newPlatformService(t)
	srv.Seed(entities.VaccinationRecord, map[string]any{"id": "v1", "pet_id": "p1", "vaccine_name": "V10", "date_applied": "2024-03-01", "next_due_date": "2025-03-01"})
	srv.Seed(entities.VaccinationRecord, map[string]any{"id": "v2", "pet_id": "p2", "vaccine_name": "V8", "date_applied": "2024-03-01", "next_due_date": "2026-03-01"})

	tl, err := svc.VaccineTimeline(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, tl.Applied, 1)
	assert.Len(t, tl.Overdue, 1)
	assert.Empty(t, tl.Upcoming)
}
