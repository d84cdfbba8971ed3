package services

import (
	"strings"
	"testing"
	"time"

	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/testdb"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newBoard(t *testing.T) (*gorm.DB, *BoardService) {
	t.Helper()
	db := testdb.New(t)
	return db, NewBoardService(db, zap.NewNop())
}

func candidateValues(name, email string) map[string]any {
	return map[string]any{
		"resume_url":         "https://cdn.example.com/resumes/" + name + ".pdf",
		"name":               name,
		"email":              email,
		"exp_min":            2.0,
		"exp_max":            5.0,
		"ctc":                950000.0,
		"current_company":    "Initech",
		"current_location":   "Pune",
		"preferred_location": "Bengaluru",
		"notice_period":      30.0,
		"remarks":            "Strong Go background",
	}
}

func seedCandidate(t *testing.T, db *gorm.DB, owner, name, status string, jobPosting *uint) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		UserID:       owner,
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		JobStatus:    status,
		JobPostingID: jobPosting,
	}
	require.NoError(t, db.Create(c).Error)
	if status == "" {
		// The column default fills in empty statuses on insert.
		require.NoError(t, db.Model(c).Update("job_status", "").Error)
	}
	return c
}

func seedPosting(t *testing.T, db *gorm.DB, owner, role string, clientID, assignID *uint, created time.Time) *models.JobPosting {
	t.Helper()
	jp := &models.JobPosting{
		UserID:    owner,
		Role:      role,
		Skills:    []string{"Go"},
		Location:  []string{"Remote"},
		JobStatus: "full_time",
		Position:  "Senior",
		ModeOfJob: "Remote",
		ClientID:  clientID,
		AssignID:  assignID,
	}
	jp.CreatedAt = created
	require.NoError(t, db.Create(jp).Error)
	return jp
}

func events(t *testing.T, db *gorm.DB, candidateID uint) []models.CandidateEvent {
	t.Helper()
	var out []models.CandidateEvent
	require.NoError(t, db.Where("candidate_id = ?", candidateID).Order("id ASC").Find(&out).Error)
	return out
}
