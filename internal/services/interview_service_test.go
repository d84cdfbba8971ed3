package services

import (
	"context"
	"testing"
	"time"

	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleRequest(candidateID uint, interviewer, typ string) *dtos.ScheduleInterviewRequest {
	return &dtos.ScheduleInterviewRequest{
		CandidateID: candidateID,
		Name:        "Technical round",
		JobTitle:    "Go Engineer",
		Interviewer: interviewer,
		ScheduledAt: time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC),
		Duration:    45,
		Type:        typ,
	}
}

func TestScheduleInterview(t *testing.T) {
	ctx := context.Background()
	db, board := newBoard(t)
	s := NewInterviewService(db, board)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusReviewed, nil)

	interview, err := s.Schedule(ctx, "u1", scheduleRequest(c.ID, "Priya", "video"))
	require.NoError(t, err)
	assert.NotZero(t, interview.ID)
	assert.Equal(t, "u1", interview.UserID)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusInterviewScheduled, stored.JobStatus)

	evs := events(t, db, c.ID)
	require.Len(t, evs, 1)
	assert.Equal(t, EventInterviewScheduled, evs[0].EventType)
	assert.Equal(t, "Interview with Priya scheduled for May 20, 2025 at 10:30 AM", evs[0].Details)
}

func TestScheduleInterviewUnknownCandidate(t *testing.T) {
	db, board := newBoard(t)
	s := NewInterviewService(db, board)

	_, err := s.Schedule(context.Background(), "u1", scheduleRequest(42, "Priya", "phone"))
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.InterviewSchedule{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is written when the candidate is missing")
}

func TestListInterviews(t *testing.T) {
	ctx := context.Background()
	db, board := newBoard(t)
	s := NewInterviewService(db, board)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusNew, nil)

	for _, r := range []struct{ interviewer, typ string }{
		{"Priya", "video"},
		{"Priya", "phone"},
		{"Arjun", "video"},
	} {
		_, err := s.Schedule(ctx, "u1", scheduleRequest(c.ID, r.interviewer, r.typ))
		require.NoError(t, err)
	}

	tests := []struct {
		interviewer, typ string
		want             int
	}{
		{FilterAll, FilterAll, 3},
		{"", "", 3},
		{"Priya", FilterAll, 2},
		{FilterAll, "video", 2},
		{"Arjun", "phone", 0},
	}
	for _, tt := range tests {
		got, err := s.List(ctx, tt.interviewer, tt.typ)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "%s/%s", tt.interviewer, tt.typ)
	}
}
