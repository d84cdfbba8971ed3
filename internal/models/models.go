package models

import (
	"time"

	"gorm.io/gorm"
)

// Candidate pipeline statuses, in board column order.
const (
	StatusNew                = "new"
	StatusReviewed           = "reviewed"
	StatusInterviewScheduled = "interviewScheduled"
	StatusRejected           = "rejected"
	StatusOffered            = "offered"
)

// UserProfile is a recruiter that job postings can be assigned to.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"not null" json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID       string     `gorm:"index" json:"user_id"`
	Name         string     `gorm:"not null" json:"name"`
	ContractType string     `json:"contract_type"`
	StartDate    *time.Time `json:"start_date"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`

	// 'omitempty' prevents loops when a posting embeds its client.
	JobPostings []JobPosting `json:"job_postings,omitempty"`
}

type JobPosting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID          string     `gorm:"index" json:"user_id"`
	Role            string     `gorm:"not null" json:"role"`
	Skills          []string   `gorm:"serializer:json" json:"skills"`
	Location        []string   `gorm:"serializer:json" json:"location"`
	JobDescription  string     `gorm:"type:text" json:"job_description"`
	ExpMin          float64    `json:"exp_min"`
	ExpMax          float64    `json:"exp_max"`
	BudgetMin       float64    `json:"budget_min"`
	BudgetMax       float64    `json:"budget_max"`
	EmploymentType  string     `json:"employment_type"`
	ModeOfJob       string     `json:"mode_of_job"`
	DateOfPosting   *time.Time `json:"date_of_posting"`
	Position        string     `json:"position"`
	Refer           *string    `json:"refer"`
	NotifyRecruiter *string    `json:"notify_recruiter"`
	JobStatus       string     `json:"job_status"`
	DraftStatus     *string    `json:"draft_status"`

	// Foreign keys. Associations are only filled on Preload().
	ClientID    *uint        `gorm:"index" json:"client_id"`
	Client      *Client      `json:"client,omitempty"`
	AssignID    *uint        `gorm:"column:assign" json:"assign"`
	UserProfile *UserProfile `gorm:"foreignKey:AssignID" json:"user_profile,omitempty"`
}

type Candidate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID            string  `gorm:"index" json:"user_id"`
	Name              string  `gorm:"not null" json:"name"`
	Email             string  `gorm:"index" json:"email"`
	EmailVerified     *bool   `json:"email_verified"`
	PhoneVerified     *bool   `json:"phone_verified"`
	ExpMin            float64 `json:"exp_min"`
	ExpMax            float64 `json:"exp_max"`
	CTC               float64 `gorm:"column:ctc" json:"ctc"`
	CurrentCompany    string  `json:"current_company"`
	CurrentLocation   string  `json:"current_location"`
	PreferredLocation string  `json:"preferred_location"`
	NoticePeriod      float64 `json:"notice_period"`
	Remarks           string  `gorm:"type:text" json:"remarks"`
	ResumeURL         string  `json:"resume_url"`
	JobStatus         string  `gorm:"index;default:'new'" json:"job_status"`

	JobPostingID *uint       `gorm:"column:job_posting;index" json:"job_posting"`
	JobPosting   *JobPosting `gorm:"foreignKey:JobPostingID" json:"job_posting_detail,omitempty"`
}

type InterviewSchedule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string    `gorm:"index" json:"user_id"`
	CandidateID uint      `gorm:"index;not null" json:"candidate_id"`
	Name        string    `json:"name"`
	JobTitle    string    `json:"job_title"`
	Interviewer string    `gorm:"index" json:"interviewer"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Duration    int       `json:"duration"`
	Type        string    `json:"type"`
}

// CandidateEvent is the audit trail of a candidate's status changes.
type CandidateEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	CandidateID uint      `gorm:"index" json:"candidate_id"`
	EventType   string    `json:"event_type"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	Details     string    `gorm:"type:text" json:"details"`
}

// MailboxState bookmarks the last mailbox history ID that was synced.
type MailboxState struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Mailbox       string `gorm:"uniqueIndex;not null" json:"mailbox"`
	LastHistoryID uint64 `json:"last_history_id"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// All lists every model the migration must create.
func All() []any {
	return []any{
		&UserProfile{},
		&Client{},
		&JobPosting{},
		&Candidate{},
		&InterviewSchedule{},
		&CandidateEvent{},
		&MailboxState{},
		&ProcessedEmail{},
	}
}
