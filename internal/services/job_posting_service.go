package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/forms"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"gorm.io/gorm"
)

// JobPostingSearchColumns are searched by the postings screen.
var JobPostingSearchColumns = []string{"role", "job_status", "position", "mode_of_job"}

type JobPostingService struct {
	DB   *gorm.DB
	form *formschema.Schema
}

func NewJobPostingService(db *gorm.DB) *JobPostingService {
	return &JobPostingService{
		DB:   db,
		form: formschema.Build(forms.JobPosting(nil, nil)),
	}
}

// Create stores a posting. A client created from the form commits together
// with the posting.
func (s *JobPostingService) Create(ctx context.Context, owner string, values map[string]any) (*models.JobPosting, error) {
	if _, errs := s.form.Validate(values); errs != nil {
		return nil, errs
	}

	var rec *models.JobPosting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resolveClient(tx, owner, values); err != nil {
			return err
		}
		var err error
		rec, err = createRecord[models.JobPosting](ctx, tx, s.form, owner, values, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *JobPostingService) Update(ctx context.Context, owner string, id uint, values map[string]any) (*models.JobPosting, error) {
	if _, errs := s.form.ValidatePartial(values); errs != nil {
		return nil, errs
	}

	var rec *models.JobPosting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resolveClient(tx, owner, values); err != nil {
			return err
		}
		var err error
		rec, err = updateRecord[models.JobPosting](ctx, tx, s.form, owner, id, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// resolveClient supports the "add new" entry of the client combobox: a
// client_id that is not an ID is a client name, created on tx if it does not
// exist yet.
func (s *JobPostingService) resolveClient(tx *gorm.DB, owner string, values map[string]any) error {
	name, isString := values["client_id"].(string)
	name = strings.TrimSpace(name)
	if !isString || name == "" {
		return nil
	}
	if _, err := strconv.ParseUint(name, 10, 0); err == nil {
		return nil
	}

	client := models.Client{UserID: owner, Name: name}
	err := tx.
		Where(models.Client{UserID: owner, Name: name}).
		FirstOrCreate(&client).Error
	if err != nil {
		return database.TranslateError(err)
	}
	values["client_id"] = uintString(client.ID)
	return nil
}

func (s *JobPostingService) Get(ctx context.Context, owner string, id uint) (*models.JobPosting, error) {
	rec := new(models.JobPosting)
	err := s.DB.WithContext(ctx).
		Scopes(ownerScope(owner)).
		Preload("Client").
		Preload("UserProfile").
		First(rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *JobPostingService) Delete(ctx context.Context, owner string, id uint) error {
	return deleteRecord[models.JobPosting](ctx, s.DB, owner, id)
}

// List pages through postings newest first, with their client embedded.
func (s *JobPostingService) List(ctx context.Context, owner string, p tablequery.Params) (*tablequery.Page[models.JobPosting], error) {
	if p.SortColumn == "" {
		p.SortColumn, p.SortDirection = "created_at", tablequery.SortDesc
	}
	if p.SearchTerm != "" && len(p.SearchColumns) == 0 {
		p.SearchColumns = JobPostingSearchColumns
	}
	if p.ForeignKeys == nil {
		p.ForeignKeys = map[string][]string{"client": {"id", "name", "contract_type"}}
	}
	return listRecords[models.JobPosting](ctx, s.DB, owner, p)
}

// Assignable lists every posting with the fields needed to assign a
// candidate to it, oldest first.
func (s *JobPostingService) Assignable(ctx context.Context) ([]dtos.AssignableJobPosting, error) {
	var postings []models.JobPosting
	err := s.DB.WithContext(ctx).
		Select("id", "role", "skills", "location", "client_id", "created_at").
		Preload("Client", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name") }).
		Order("created_at ASC").
		Find(&postings).Error
	if err != nil {
		return nil, err
	}

	out := make([]dtos.AssignableJobPosting, 0, len(postings))
	for _, p := range postings {
		item := dtos.AssignableJobPosting{
			ID:       p.ID,
			Role:     p.Role,
			Skills:   p.Skills,
			Location: p.Location,
		}
		if p.Client != nil {
			item.Client = &dtos.ClientRef{ID: p.Client.ID, Name: p.Client.Name}
		}
		out = append(out, item)
	}
	return out, nil
}

// Options renders Assignable as combobox entries labelled "Client (Role)".
func (s *JobPostingService) Options(ctx context.Context) ([]dtos.Option, error) {
	postings, err := s.Assignable(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.Option, 0, len(postings))
	for _, p := range postings {
		client := ""
		if p.Client != nil {
			client = p.Client.Name
		}
		out = append(out, dtos.Option{
			Label: client + " (" + p.Role + ")",
			Value: uintString(p.ID),
		})
	}
	return out, nil
}
