package services

import (
	"context"
	"io"

	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/forms"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/storage"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"gorm.io/gorm"
)

// CandidateSearchColumns are searched by the candidates and board screens.
var CandidateSearchColumns = []string{
	"name",
	"email",
	"current_company",
	"current_location",
	"preferred_location",
	"job_status",
}

type CandidateService struct {
	DB      *gorm.DB
	Resumes *storage.ResumeUploader
	form    *formschema.Schema
}

// NewCandidateService wires the candidate store. resumes may be nil, in which
// case uploads are refused.
func NewCandidateService(db *gorm.DB, resumes *storage.ResumeUploader) *CandidateService {
	return &CandidateService{
		DB:      db,
		Resumes: resumes,
		form:    formschema.Build(forms.Candidate(nil)),
	}
}

// Create stores a candidate. New candidates always start in the "new" column.
func (s *CandidateService) Create(ctx context.Context, owner string, values map[string]any) (*models.Candidate, error) {
	return createRecord(ctx, s.DB, s.form, owner, values, func(c *models.Candidate) {
		c.JobStatus = models.StatusNew
	})
}

func (s *CandidateService) Update(ctx context.Context, owner string, id uint, values map[string]any) (*models.Candidate, error) {
	return updateRecord[models.Candidate](ctx, s.DB, s.form, owner, id, values)
}

func (s *CandidateService) Get(ctx context.Context, owner string, id uint) (*models.Candidate, error) {
	return getRecord[models.Candidate](ctx, s.DB, owner, id)
}

func (s *CandidateService) Delete(ctx context.Context, owner string, id uint) error {
	return deleteRecord[models.Candidate](ctx, s.DB, owner, id)
}

func (s *CandidateService) List(ctx context.Context, owner string, p tablequery.Params) (*tablequery.Page[models.Candidate], error) {
	if p.SearchTerm != "" && len(p.SearchColumns) == 0 {
		p.SearchColumns = CandidateSearchColumns
	}
	return listRecords[models.Candidate](ctx, s.DB, owner, p)
}

// ForJobPosting returns the caller's candidates assigned to a posting.
func (s *CandidateService) ForJobPosting(ctx context.Context, owner string, jobPostingID uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := s.DB.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Where("job_posting = ?", jobPostingID).
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// Summaries returns the slim candidate list used by pickers.
func (s *CandidateService) Summaries(ctx context.Context, owner string) ([]dtos.CandidateSummary, error) {
	var candidates []models.Candidate
	err := s.DB.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Select("id", "name", "email", "job_status").
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	out := make([]dtos.CandidateSummary, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, dtos.CandidateSummary{
			ID:        uintString(c.ID),
			Name:      c.Name,
			Email:     c.Email,
			JobStatus: c.JobStatus,
		})
	}
	return out, nil
}

// UploadResume stores a resume file and returns its public URL.
func (s *CandidateService) UploadResume(ctx context.Context, filename string, body io.ReadSeeker) (string, error) {
	if s.Resumes == nil {
		return "", ErrStorageDisabled
	}
	return s.Resumes.Upload(ctx, filename, body)
}
