package services

import (
	"context"
	"strings"
	"time"

	"github.com/justsurfingit/talent-tracker/internal/dateutil"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ReportForeignKeys are the relations embedded in each tracker row.
var ReportForeignKeys = map[string][]string{
	"client":       {"id", "name", "contract_type"},
	"user_profile": {"name", "role"},
}

// CandidateStats counts a posting's candidates by pipeline stage.
type CandidateStats struct {
	Assigned int64 `json:"assigned"`
	Reviewed int64 `json:"reviewed"`
	Offered  int64 `json:"offered"`
	Rejected int64 `json:"rejected"`
	New      int64 `json:"new"`
	Other    int64 `json:"other"`
}

func (s *CandidateStats) add(status string, n int64) {
	s.Assigned += n
	switch strings.ToLower(status) {
	case "review", "reviewed", "interviewscheduled":
		s.Reviewed += n
	case models.StatusOffered:
		s.Offered += n
	case models.StatusRejected:
		s.Rejected += n
	case models.StatusNew, "":
		s.New += n
	default:
		s.Other += n
	}
}

// JobReport is one row of the report tracker.
type JobReport struct {
	models.JobPosting
	PostedOn string         `json:"posted_on"`
	Stats    CandidateStats `json:"stats"`
}

type ReportService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db, Now: time.Now}
}

// Tracker pages through postings newest first, each with its client,
// assignee and candidate counts.
func (s *ReportService) Tracker(ctx context.Context, owner string, p tablequery.Params) (*tablequery.Page[JobReport], error) {
	if p.SortColumn == "" {
		p.SortColumn, p.SortDirection = "created_at", tablequery.SortDesc
	}
	if p.SearchTerm != "" && len(p.SearchColumns) == 0 {
		p.SearchColumns = JobPostingSearchColumns
	}
	p.ForeignKeys = ReportForeignKeys

	page, err := listRecords[models.JobPosting](ctx, s.DB, owner, p)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(page.Data))
	for _, jp := range page.Data {
		ids = append(ids, jp.ID)
	}
	stats, err := s.candidateStats(ctx, owner, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]JobReport, 0, len(page.Data))
	for _, jp := range page.Data {
		postedOn := jp.DateOfPosting
		if postedOn == nil {
			postedOn = &jp.CreatedAt
		}
		rows = append(rows, JobReport{
			JobPosting: jp,
			PostedOn:   dateutil.Format(postedOn),
			Stats:      stats[jp.ID],
		})
	}

	return &tablequery.Page[JobReport]{
		Data:       rows,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

type statusCount struct {
	JobPosting uint
	JobStatus  string
	Total      int64
}

func (s *ReportService) candidateStats(ctx context.Context, owner string, jobPostingIDs []uint) (map[uint]CandidateStats, error) {
	out := make(map[uint]CandidateStats, len(jobPostingIDs))
	if len(jobPostingIDs) == 0 {
		return out, nil
	}

	var counts []statusCount
	err := s.DB.WithContext(ctx).
		Model(&models.Candidate{}).
		Scopes(ownerScope(owner)).
		Select("job_posting, job_status, COUNT(*) AS total").
		Where("job_posting IN ?", jobPostingIDs).
		Group("job_posting, job_status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		st := out[c.JobPosting]
		st.add(c.JobStatus, c.Total)
		out[c.JobPosting] = st
	}
	return out, nil
}

// Metrics counts the caller's records for the dashboard home page.
func (s *ReportService) Metrics(ctx context.Context, owner string) (*dtos.DashboardMetrics, error) {
	var m dtos.DashboardMetrics
	g, ctx := errgroup.WithContext(ctx)

	count := func(model any, dst *int64, scopes ...func(*gorm.DB) *gorm.DB) {
		g.Go(func() error {
			return s.DB.WithContext(ctx).Model(model).Scopes(ownerScope(owner)).Scopes(scopes...).Count(dst).Error
		})
	}
	count(&models.Client{}, &m.Clients)
	count(&models.JobPosting{}, &m.JobPostings)
	count(&models.Candidate{}, &m.Candidates)
	now := s.Now()
	count(&models.InterviewSchedule{}, &m.UpcomingInterviews, func(db *gorm.DB) *gorm.DB {
		return db.Where("scheduled_at > ?", now)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &m, nil
}
