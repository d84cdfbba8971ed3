package services

import (
	"context"
	"testing"
	"time"

	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/formschema"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
	"github.com/justsurfingit/talent-tracker/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewClientService(testdb.New(t))

	created, err := s.Create(ctx, "u1", map[string]any{
		"name":          "  Acme Corp ",
		"contract_type": "contract",
		"start_date":    "2024-03-01",
		"ignored":       "dropped",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Acme Corp", created.Name)
	require.NotNil(t, created.StartDate)
	assert.Equal(t, "2024-03-01", created.StartDate.Format(time.DateOnly))

	updated, err := s.Update(ctx, "u1", created.ID, map[string]any{"name": "Acme Inc"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", updated.Name)
	assert.Equal(t, "contract", updated.ContractType, "fields not sent keep their value")

	got, err := s.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", got.Name)

	_, err = s.Get(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := s.List(ctx, "u1", tablequery.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	require.NoError(t, s.Delete(ctx, "u1", created.ID))
	_, err = s.Get(ctx, "u1", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "u1", created.ID), ErrNotFound)
}

func TestClientValidation(t *testing.T) {
	s := NewClientService(testdb.New(t))

	_, err := s.Create(context.Background(), "u1", map[string]any{"contract_type": "contract"})
	var fieldErrs formschema.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "Client name is required", fieldErrs["name"])
	assert.Equal(t, "Start Date is required", fieldErrs["start_date"])

	_, err = s.Update(context.Background(), "u1", 1, map[string]any{"name": ""})
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "name")
}

func TestClientOptions(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewClientService(db)
	require.NoError(t, db.Create(&models.Client{UserID: "u1", Name: "Zeta"}).Error)
	require.NoError(t, db.Create(&models.Client{UserID: "u2", Name: "Alpha"}).Error)

	opts, err := s.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "Alpha", opts[0].Label)
	assert.Equal(t, "2", opts[0].Value)
}

func TestCandidateCreateStartsNew(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewCandidateService(db, nil)

	jp := seedPosting(t, db, "u1", "Go Engineer", nil, nil, time.Now())
	values := candidateValues("Jane", "jane@example.com")
	values["job_posting"] = jp.ID
	values["job_status"] = models.StatusOffered

	c, err := s.Create(ctx, "u1", values)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, c.JobStatus)
	require.NotNil(t, c.JobPostingID)
	assert.Equal(t, jp.ID, *c.JobPostingID)
	assert.Equal(t, 30.0, c.NoticePeriod)

	linked, err := s.ForJobPosting(ctx, "u1", jp.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Jane", linked[0].Name)

	linked, err = s.ForJobPosting(ctx, "u2", jp.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestCandidateSummariesAndSearch(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewCandidateService(db, nil)
	seedCandidate(t, db, "u1", "Jane", models.StatusReviewed, nil)
	seedCandidate(t, db, "u1", "John", models.StatusNew, nil)
	seedCandidate(t, db, "u2", "Other", models.StatusNew, nil)

	summaries, err := s.Summaries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "1", summaries[0].ID)
	assert.Equal(t, "jane@example.com", summaries[0].Email)
	assert.Equal(t, models.StatusReviewed, summaries[0].JobStatus)

	page, err := s.List(ctx, "u1", tablequery.Params{SearchTerm: "JOHN"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "John", page.Data[0].Name)
}

func TestCandidateUploadWithoutStorage(t *testing.T) {
	s := NewCandidateService(testdb.New(t), nil)
	_, err := s.UploadResume(context.Background(), "cv.pdf", nil)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestJobPostingAssignable(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewJobPostingService(db)

	client := &models.Client{UserID: "u1", Name: "Acme"}
	require.NoError(t, db.Create(client).Error)
	now := time.Now()
	seedPosting(t, db, "u1", "Later", &client.ID, nil, now)
	seedPosting(t, db, "u2", "Earlier", nil, nil, now.Add(-time.Hour))

	postings, err := s.Assignable(ctx)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "Earlier", postings[0].Role)
	assert.Nil(t, postings[0].Client)
	require.NotNil(t, postings[1].Client)
	assert.Equal(t, "Acme", postings[1].Client.Name)
	assert.Equal(t, []string{"Go"}, postings[1].Skills)

	opts, err := s.Options(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "Acme (Later)", opts[1].Label)
}

func TestJobPostingCreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewJobPostingService(db)

	client := &models.Client{UserID: "u1", Name: "Acme"}
	require.NoError(t, db.Create(client).Error)
	profile := &models.UserProfile{Name: "Riya", Role: "Recruiter"}
	require.NoError(t, db.Create(profile).Error)

	jp, err := s.Create(ctx, "u1", map[string]any{
		"role":            "Backend Engineer",
		"skills":          []any{"Go", "PostgreSQL"},
		"location":        []any{"Remote"},
		"job_description": "Build APIs",
		"exp_min":         3,
		"exp_max":         "6",
		"budget_min":      100000,
		"budget_max":      200000,
		"employment_type": "Full Time",
		"mode_of_job":     "Remote",
		"position":        "Senior",
		"job_status":      "full_time",
		"client_id":       "1",
		"assign":          1.0,
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, "u1", jp.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.Skills)
	assert.Equal(t, 6.0, got.ExpMax)
	require.NotNil(t, got.Client)
	assert.Equal(t, "Acme", got.Client.Name)
	require.NotNil(t, got.UserProfile)
	assert.Equal(t, "Riya", got.UserProfile.Name)

	page, err := s.List(ctx, "u1", tablequery.Params{SearchTerm: "backend"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Data[0].Client)
	assert.Equal(t, "Acme", page.Data[0].Client.Name)
}

func TestProfileOptions(t *testing.T) {
	ctx := context.Background()
	s := NewProfileService(testdb.New(t))

	for _, name := range []string{"Zara", "Amit"} {
		_, err := s.Create(ctx, &dtos.UserProfileRequest{Name: name, Role: "Recruiter"})
		require.NoError(t, err)
	}

	opts, err := s.AssignOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, "Amit", opts[0].Label)
	assert.Equal(t, "2", opts[0].Value)
}

func TestJobPostingCreatesNewClient(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewJobPostingService(db)
	require.NoError(t, db.Create(&models.UserProfile{Name: "Riya"}).Error)

	values := map[string]any{
		"role": "QA", "skills": []any{"Selenium"}, "location": []any{"Pune"},
		"job_description": "Test things", "exp_min": 1, "exp_max": 3,
		"budget_min": 1, "budget_max": 2, "employment_type": "Contract",
		"mode_of_job": "Onsite", "position": "Junior", "job_status": "contract",
		"client_id": "Globex", "assign": "1",
	}
	first, err := s.Create(ctx, "u1", values)
	require.NoError(t, err)
	require.NotNil(t, first.ClientID)

	values["client_id"] = "Globex"
	second, err := s.Create(ctx, "u1", values)
	require.NoError(t, err)
	assert.Equal(t, *first.ClientID, *second.ClientID, "an existing client is reused")

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCandidateUpdateClearsJobPosting(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewCandidateService(db, nil)

	jp := seedPosting(t, db, "u1", "Go Engineer", nil, nil, time.Now())
	c := seedCandidate(t, db, "u1", "Jane", models.StatusNew, &jp.ID)

	updated, err := s.Update(ctx, "u1", c.ID, map[string]any{"job_posting": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.JobPostingID)

	var stored models.Candidate
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Nil(t, stored.JobPostingID)
	assert.Equal(t, "Jane", stored.Name, "fields not sent are kept")

	_, err = s.Update(ctx, "u1", c.ID, map[string]any{"name": nil})
	var fieldErrs formschema.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "name")
}

func TestJobPostingRejectedWriteLeavesNoClient(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	s := NewJobPostingService(db)

	_, err := s.Create(ctx, "u1", map[string]any{"client_id": "Brand New Co"})
	var fieldErrs formschema.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "role")

	_, err = s.Update(ctx, "u1", 999, map[string]any{"client_id": "Brand New Co"})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Where("name = ?", "Brand New Co").Count(&count).Error)
	assert.Zero(t, count)
}
