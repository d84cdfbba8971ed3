package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/metrics"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Candidate event types.
const (
	EventStatusChange       = "STATUS_CHANGE"
	EventInterviewScheduled = "INTERVIEW_SCHEDULED"
	EventEmailUpdate        = "EMAIL_UPDATE"
)

// BoardPageSize is how many candidates the board loads when the caller does
// not ask for a page size.
const BoardPageSize = 100

// Columns are the board's status columns, left to right.
var Columns = []string{
	models.StatusNew,
	models.StatusReviewed,
	models.StatusInterviewScheduled,
	models.StatusRejected,
	models.StatusOffered,
}

type BoardColumn struct {
	Status     string             `json:"status"`
	Title      string             `json:"title"`
	Candidates []models.Candidate `json:"candidates"`
}

type Board struct {
	Columns    []BoardColumn `json:"columns"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

type BoardService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewBoardService(db *gorm.DB, log *zap.Logger) *BoardService {
	return &BoardService{DB: db, Log: log}
}

// Board loads a page of the caller's candidates and groups it by status.
func (s *BoardService) Board(ctx context.Context, owner string, p tablequery.Params) (*Board, error) {
	if p.PageSize == 0 {
		p.PageSize = BoardPageSize
	}
	if p.SearchTerm != "" && len(p.SearchColumns) == 0 {
		p.SearchColumns = CandidateSearchColumns
	}

	page, err := listRecords[models.Candidate](ctx, s.DB, owner, p)
	if err != nil {
		return nil, err
	}

	return &Board{
		Columns:    groupByStatus(page.Data),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

func isColumn(status string) bool {
	return slices.Contains(Columns, status)
}

// groupByStatus puts each candidate in its status column. Every known column
// is present even when empty; unknown statuses get columns after them.
func groupByStatus(candidates []models.Candidate) []BoardColumn {
	cols := make([]BoardColumn, 0, len(Columns))
	index := make(map[string]int, len(Columns))
	for _, status := range Columns {
		index[status] = len(cols)
		cols = append(cols, BoardColumn{Status: status, Title: statusTitle(status), Candidates: []models.Candidate{}})
	}

	for _, c := range candidates {
		status := c.JobStatus
		if status == "" {
			status = models.StatusNew
		}
		i, ok := index[status]
		if !ok {
			i = len(cols)
			index[status] = i
			cols = append(cols, BoardColumn{Status: status, Title: statusTitle(status)})
		}
		cols[i].Candidates = append(cols[i].Candidates, c)
	}
	return cols
}

// Move drops a candidate into another column. from is the column the card
// left; when it no longer matches the stored status the move is refused.
func (s *BoardService) Move(ctx context.Context, owner string, id uint, from, to string) (*dtos.MoveResult, error) {
	return s.transition(ctx, owner, id, from, to, EventStatusChange, "")
}

// transition is Move with the audit event spelled out. An empty details
// string records the columns involved.
func (s *BoardService) transition(ctx context.Context, owner string, id uint, from, to, eventType, details string) (*dtos.MoveResult, error) {
	if !isColumn(to) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	var result *dtos.MoveResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		err := tx.Scopes(ownerScope(owner)).
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Select("id", "name", "job_status").
			First(&candidate, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("candidate %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		stored := candidate.JobStatus
		if stored == "" {
			stored = models.StatusNew
		}
		if from != "" && from != stored {
			return fmt.Errorf("%w: candidate %d is %s, not %s", ErrStatusConflict, id, stored, from)
		}

		if details == "" {
			details = fmt.Sprintf("Moved from %s to %s", stored, to)
		}
		if err := s.setStatus(tx, &candidate, to, eventType, details); err != nil {
			return err
		}

		result = &dtos.MoveResult{
			CandidateID: candidate.ID,
			FromStatus:  stored,
			ToStatus:    to,
			Message:     fmt.Sprintf("Moved %s to %s", candidate.Name, statusWords(to)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.StatusMoves.WithLabelValues(to, eventType).Inc()

	s.Log.Info("Candidate moved",
		zap.Uint("candidate_id", id),
		zap.String("from", result.FromStatus),
		zap.String("to", to),
		zap.String("event", eventType))
	return result, nil
}

// setStatus writes the new status and its audit event on tx. candidate must
// have its ID and current status loaded; the write only lands while the
// stored status still matches.
func (s *BoardService) setStatus(tx *gorm.DB, candidate *models.Candidate, to, eventType, details string) error {
	from := candidate.JobStatus
	res := tx.Model(&models.Candidate{}).
		Where("id = ? AND job_status = ?", candidate.ID, from).
		Update("job_status", to)
	if res.Error != nil {
		return fmt.Errorf("updating candidate %d: %w", candidate.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: candidate %d changed while moving", ErrStatusConflict, candidate.ID)
	}
	candidate.JobStatus = to

	event := models.CandidateEvent{
		CandidateID: candidate.ID,
		EventType:   eventType,
		FromStatus:  from,
		ToStatus:    to,
		Details:     details,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("recording event for candidate %d: %w", candidate.ID, err)
	}
	return nil
}

// statusWords splits a camelCase status into lower case words:
// "interviewScheduled" becomes "interview scheduled".
func statusWords(status string) string {
	var b strings.Builder
	for i, r := range status {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func statusTitle(status string) string {
	words := strings.Fields(statusWords(status))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
