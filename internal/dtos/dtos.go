package dtos

import (
	"time"

	"github.com/justsurfingit/talent-tracker/internal/formschema"
)

// Option is a combobox entry.
type Option = formschema.Option

type JobPostingExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type ScheduleInterviewRequest struct {
	CandidateID uint      `json:"candidate_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	JobTitle    string    `json:"job_title" binding:"required"`
	Interviewer string    `json:"interviewer" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Duration    int       `json:"duration" binding:"required,gt=0"`
	Type        string    `json:"type" binding:"required,oneof=phone video in-person"`
}

type MoveCandidateRequest struct {
	// FromStatus is the column the card was dragged out of. When set it must
	// match the stored status.
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status" binding:"required"`
}

type UserProfileRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Role  string `json:"role" binding:"max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// FormResponse describes a form and its initial values.
type FormResponse struct {
	Name     string             `json:"name"`
	Fields   []formschema.Field `json:"fields"`
	Defaults map[string]any     `json:"defaults"`
}

type ResumeUploadResponse struct {
	URL string `json:"url"`
}

type CandidateSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	JobStatus string `json:"job_status"`
}

type ClientRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// AssignableJobPosting is the slim posting used to assign candidates.
type AssignableJobPosting struct {
	ID       uint       `json:"id"`
	Role     string     `json:"role"`
	Skills   []string   `json:"skills"`
	Location []string   `json:"location"`
	Client   *ClientRef `json:"client"`
}

type MoveResult struct {
	CandidateID uint   `json:"candidate_id"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
	Message     string `json:"message"`
}

type DashboardMetrics struct {
	Clients            int64 `json:"clients"`
	JobPostings        int64 `json:"job_postings"`
	Candidates         int64 `json:"candidates"`
	UpcomingInterviews int64 `json:"upcoming_interviews"`
}

// ExtractedJobPosting is what the assistant reads out of a job ad. Missing
// values stay nil so the form can tell them apart from zero.
type ExtractedJobPosting struct {
	Role           string   `json:"role"`
	Skills         []string `json:"skills"`
	Location       []string `json:"location"`
	JobDescription string   `json:"job_description"`
	ExpMin         *float64 `json:"exp_min"`
	ExpMax         *float64 `json:"exp_max"`
	BudgetMin      *float64 `json:"budget_min"`
	BudgetMax      *float64 `json:"budget_max"`
	EmploymentType string   `json:"employment_type"`
	ModeOfJob      string   `json:"mode_of_job"`
	Position       string   `json:"position"`
	ClientName     string   `json:"client_name"`
}

// ReplyClassification is the assistant's reading of a candidate's email.
type ReplyClassification struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}
