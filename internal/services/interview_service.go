package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/metrics"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilterAll disables an interview filter.
const FilterAll = "all"

type InterviewService struct {
	DB    *gorm.DB
	Board *BoardService
}

func NewInterviewService(db *gorm.DB, board *BoardService) *InterviewService {
	return &InterviewService{DB: db, Board: board}
}

// List returns interviews, optionally narrowed to one interviewer and one
// interview type. An empty value or "all" leaves that filter off.
func (s *InterviewService) List(ctx context.Context, interviewer, interviewType string) ([]models.InterviewSchedule, error) {
	q := s.DB.WithContext(ctx).Model(&models.InterviewSchedule{})
	if interviewer != "" && interviewer != FilterAll {
		q = q.Where("interviewer = ?", interviewer)
	}
	if interviewType != "" && interviewType != FilterAll {
		q = q.Where("type = ?", interviewType)
	}

	var interviews []models.InterviewSchedule
	if err := q.Order("scheduled_at ASC").Find(&interviews).Error; err != nil {
		return nil, fmt.Errorf("fetching interviews: %w", err)
	}
	return interviews, nil
}

// Schedule books an interview and moves the candidate to the
// interviewScheduled column. Both writes commit together.
func (s *InterviewService) Schedule(ctx context.Context, owner string, req *dtos.ScheduleInterviewRequest) (*models.InterviewSchedule, error) {
	interview := &models.InterviewSchedule{
		UserID:      owner,
		CandidateID: req.CandidateID,
		Name:        req.Name,
		JobTitle:    req.JobTitle,
		Interviewer: req.Interviewer,
		ScheduledAt: req.ScheduledAt,
		Duration:    req.Duration,
		Type:        req.Type,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		err := tx.Scopes(ownerScope(owner)).
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id", "name", "job_status").
			First(&candidate, req.CandidateID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("candidate %d: %w", req.CandidateID, ErrNotFound)
			}
			return err
		}

		if err := tx.Create(interview).Error; err != nil {
			return database.TranslateError(err)
		}

		details := fmt.Sprintf("Interview with %s scheduled for %s", req.Interviewer, req.ScheduledAt.Format("Jan 02, 2006 at 3:04 PM"))
		return s.Board.setStatus(tx, &candidate, models.StatusInterviewScheduled, EventInterviewScheduled, details)
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusMoves.WithLabelValues(models.StatusInterviewScheduled, EventInterviewScheduled).Inc()
	return interview, nil
}
