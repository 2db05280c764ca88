package compose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func startTimes(slots []TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime)
	}
	return out
}

func TestGroupSlots(t *testing.T) {
	var slots []TimeSlot
	for _, st := range []string{"05:30", "09:00", "14:00", "20:15", "23:59"} {
		slots = append(slots, TimeSlot{ID: st, StartTime: st})
	}

	g := GroupSlots(slots)
	assert.Equal(t, []string{"09:00"}, startTimes(g.Morning))
	assert.Equal(t, []string{"14:00"}, startTimes(g.Afternoon))
	assert.Equal(t, []string{"20:15", "23:59"}, startTimes(g.Evening))
	assert.Equal(t, 4, g.Len())
}

func TestGroupSlots_BandEdgesAndGarbage(t *testing.T) {
	g := GroupSlots([]TimeSlot{
		{StartTime: "06:00"}, {StartTime: "11:59"}, {StartTime: "12:00"},
		{StartTime: "17:59"}, {StartTime: "18:00"},
		{StartTime: "nope"}, {StartTime: ""}, {StartTime: "25:00"}, {StartTime: "10"},
	})
	assert.Equal(t, []string{"06:00", "11:59"}, startTimes(g.Morning))
	assert.Equal(t, []string{"12:00", "17:59"}, startTimes(g.Afternoon))
	assert.Equal(t, []string{"18:00"}, startTimes(g.Evening))
}

func TestSuggestFollows(t *testing.T) {
	users := []User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}, {ID: "u4"}, {ID: "u5"}}

	got := SuggestFollows(users, "u1", []string{"u2"}, MaxSuggestions)

	ids := []string{}
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"u3", "u4", "u5"}, ids)
}

func TestSuggestFollows_Truncates(t *testing.T) {
	users := []User{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	got := SuggestFollows(users, "x", nil, 0)
	assert.Len(t, got, MaxSuggestions)
	assert.Equal(t, "a", got[0].ID)

	assert.Empty(t, SuggestFollows(nil, "x", nil, 3))
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection()

	assert.True(t, s.Toggle("vômito"))
	assert.False(t, s.Toggle("vômito"))
	assert.Empty(t, s.Items())

	s.Toggle("tosse")
	s.Toggle("apatia")
	s.Add("tosse")
	s.Toggle(" ")
	assert.Equal(t, []string{"tosse", "apatia"}, s.Items())

	s.Toggle("tosse")
	assert.Equal(t, []string{"apatia"}, s.Items())
	assert.True(t, s.Has("apatia"))
}

func TestSelection_DedupesInput(t *testing.T) {
	s := NewSelection("febre", "febre", "coceira")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"febre", "coceira"}, s.Items())
}

func TestVaccineTimeline(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	records := []VaccinationRecord{
		{ID: "v1", VaccineName: "V10", DateApplied: "2024-03-01", NextDueDate: "2025-03-01"},
		{ID: "v2", VaccineName: "Antirrábica", DateApplied: "2024-06-10", NextDueDate: "2025-06-10"},
		{ID: "v3", VaccineName: "Giárdia", DateApplied: "2025-03-10", NextDueDate: "2025-03-10"},
		{ID: "v4", VaccineName: "Gripe", DateApplied: "2023-01-01"},
	}

	tl := VaccineTimeline(records, now)

	ids := func(rs []VaccinationRecord) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []string{"v3", "v2", "v1", "v4"}, ids(tl.Applied))
	assert.Equal(t, []string{"v3", "v2"}, ids(tl.Upcoming))
	assert.Equal(t, []string{"v1"}, ids(tl.Overdue))
}
