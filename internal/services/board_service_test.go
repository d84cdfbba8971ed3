package services

import (
	"context"
	"errors"
	"testing"

	"github.com/justsurfingit/talent-tracker/internal/metrics"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBoardGroupsByStatus(t *testing.T) {
	db, s := newBoard(t)
	seedCandidate(t, db, "u1", "Ann", models.StatusNew, nil)
	seedCandidate(t, db, "u1", "Ben", "", nil)
	seedCandidate(t, db, "u1", "Cat", models.StatusOffered, nil)
	seedCandidate(t, db, "u1", "Dan", "onHold", nil)
	seedCandidate(t, db, "u2", "Eve", models.StatusNew, nil)

	board, err := s.Board(context.Background(), "u1", tablequery.Params{})
	require.NoError(t, err)

	assert.Equal(t, int64(4), board.TotalCount)
	assert.Equal(t, BoardPageSize, board.PageSize)
	require.Len(t, board.Columns, 6)

	var statuses []string
	for _, col := range board.Columns {
		statuses = append(statuses, col.Status)
	}
	assert.Equal(t, []string{"new", "reviewed", "interviewScheduled", "rejected", "offered", "onHold"}, statuses)

	assert.Equal(t, "Interview Scheduled", board.Columns[2].Title)
	assert.Len(t, board.Columns[0].Candidates, 2, "empty status counts as new")
	assert.NotNil(t, board.Columns[1].Candidates)
	assert.Empty(t, board.Columns[1].Candidates)
	assert.Equal(t, "Dan", board.Columns[5].Candidates[0].Name)
}

func TestBoardSearch(t *testing.T) {
	db, s := newBoard(t)
	seedCandidate(t, db, "u1", "Ann", models.StatusNew, nil)
	seedCandidate(t, db, "u1", "Ben", models.StatusRejected, nil)

	board, err := s.Board(context.Background(), "u1", tablequery.Params{SearchTerm: "rejec"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), board.TotalCount)
	assert.Len(t, board.Columns[3].Candidates, 1)
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	db, s := newBoard(t)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusNew, nil)

	res, err := s.Move(ctx, "u1", c.ID, models.StatusNew, models.StatusInterviewScheduled)
	require.NoError(t, err)
	assert.Equal(t, "Moved Jane to interview scheduled", res.Message)
	assert.Equal(t, models.StatusNew, res.FromStatus)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusInterviewScheduled, stored.JobStatus)

	evs := events(t, db, c.ID)
	require.Len(t, evs, 1)
	assert.Equal(t, EventStatusChange, evs[0].EventType)
	assert.Equal(t, models.StatusNew, evs[0].FromStatus)
	assert.Equal(t, models.StatusInterviewScheduled, evs[0].ToStatus)

	// A move without a source column is accepted as is.
	res, err = s.Move(ctx, "u1", c.ID, "", models.StatusOffered)
	require.NoError(t, err)
	assert.Equal(t, "Moved Jane to offered", res.Message)
}

func TestMoveErrors(t *testing.T) {
	ctx := context.Background()
	db, s := newBoard(t)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusReviewed, nil)

	_, err := s.Move(ctx, "u1", c.ID, models.StatusNew, models.StatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)

	_, err = s.Move(ctx, "u1", c.ID, "", "hired")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.Move(ctx, "u1", 999, "", models.StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Move(ctx, "u2", c.ID, "", models.StatusRejected)
	assert.ErrorIs(t, err, ErrNotFound)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusReviewed, stored.JobStatus)
	assert.Empty(t, events(t, db, c.ID))
}

func TestSetStatusRefusesChangedCandidate(t *testing.T) {
	db, s := newBoard(t)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusNew, nil)

	var loaded models.Candidate
	require.NoError(t, db.Select("id", "name", "job_status").First(&loaded, c.ID).Error)

	// Another move lands between the load and the write.
	require.NoError(t, db.Model(&models.Candidate{}).Where("id = ?", c.ID).Update("job_status", models.StatusRejected).Error)

	err := s.setStatus(db, &loaded, models.StatusOffered, EventStatusChange, "")
	assert.ErrorIs(t, err, ErrStatusConflict)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusRejected, stored.JobStatus)
	assert.Empty(t, events(t, db, c.ID))
}

func TestMoveCountsOnlyCommittedChanges(t *testing.T) {
	ctx := context.Background()
	db, s := newBoard(t)
	c := seedCandidate(t, db, "u1", "Jane", models.StatusNew, nil)
	moves := metrics.StatusMoves.WithLabelValues(models.StatusReviewed, EventStatusChange)

	before := testutil.ToFloat64(moves)
	_, err := s.Move(ctx, "u1", c.ID, models.StatusNew, models.StatusReviewed)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(moves))

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("fail_events", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.CandidateEvent); ok {
			tx.AddError(errors.New("disk full"))
		}
	}))

	before = testutil.ToFloat64(moves)
	_, err = s.Move(ctx, "u1", c.ID, models.StatusReviewed, models.StatusNew)
	require.Error(t, err)
	_, err = s.Move(ctx, "u1", c.ID, "", models.StatusReviewed)
	require.Error(t, err)
	assert.Equal(t, before, testutil.ToFloat64(moves))

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, models.StatusReviewed, stored.JobStatus, "the status write rolls back with the event")
	assert.Len(t, events(t, db, c.ID), 1)
}

func TestStatusTitle(t *testing.T) {
	assert.Equal(t, "Interview Scheduled", statusTitle("interviewScheduled"))
	assert.Equal(t, "Één", statusTitle("één"))
}

func TestStatusWords(t *testing.T) {
	tests := map[string]string{
		"interviewScheduled": "interview scheduled",
		"new":                "new",
		"offered":            "offered",
		"onHoldByClient":     "on hold by client",
	}
	for in, want := range tests {
		assert.Equal(t, want, statusWords(in), in)
	}
}
