// Package forms holds the field descriptors of the dashboard's entry forms.
// Field names double as column names, so validated values can be written
// straight to the matching record.
package forms

import (
	fs "github.com/justsurfingit/talent-tracker/internal/formschema"
)

const (
	ClientForm     = "client"
	JobPostingForm = "job_posting"
	CandidateForm  = "candidate"
)

var ContractTypes = []fs.Option{
	{Value: "contract", Label: "Contract"},
	{Value: "full_time", Label: "Full Time"},
	{Value: "sub_vendor", Label: "Sub Vendor"},
}

// Names lists every form that can be requested.
var Names = []string{ClientForm, JobPostingForm, CandidateForm}

func Client() []fs.Field {
	return []fs.Field{
		{Type: fs.Text, Name: "name", Label: "Client Name", Required: true, ErrorMsg: "Client name is required"},
		{Type: fs.Combobox, Name: "contract_type", Label: "Contract Type", Options: ContractTypes, Required: true, ErrorMsg: "Contract Type is required"},
		{Type: fs.Date, Name: "start_date", Label: "Start Date", Required: true, ErrorMsg: "Start Date is required"},
	}
}

// JobPosting takes the client and assignee choices, which are loaded per
// request. Validation does not depend on them.
func JobPosting(clients, assignees []fs.Option) []fs.Field {
	return []fs.Field{
		{Type: fs.Text, Name: "role", Label: "Job Role", Required: true, ErrorMsg: "Job Role is required"},
		{Type: fs.Multiselect, Name: "skills", Label: "Skills", Required: true, ErrorMsg: "Skills is required"},
		{Type: fs.Multiselect, Name: "location", Label: "Location", Required: true, ErrorMsg: "location is required"},
		{Type: fs.Textarea, Name: "job_description", Label: "Job Description", Required: true, ErrorMsg: "Job Description is required"},
		{Type: fs.Number, Name: "exp_min", Label: "Experience min", Required: true, ErrorMsg: "Experience min is required"},
		{Type: fs.Number, Name: "exp_max", Label: "Experience Max", Required: true, ErrorMsg: "Experience Max is required"},
		{Type: fs.Number, Name: "budget_min", Label: "Budget Min", Required: true, ErrorMsg: "Budget Min is required"},
		{Type: fs.Number, Name: "budget_max", Label: "Budget Max", Required: true, ErrorMsg: "Budget Max is required"},
		{Type: fs.Text, Name: "employment_type", Label: "Employment Type", Required: true, ErrorMsg: "Employment Type is required"},
		{Type: fs.Text, Name: "mode_of_job", Label: "Mode Of Job", Required: true, ErrorMsg: "mode of job is required"},
		{Type: fs.Text, Name: "position", Label: "Position", Required: true, ErrorMsg: "position is required"},
		{Type: fs.Combobox, Name: "job_status", Label: "Job Status", Options: ContractTypes, Required: true, ErrorMsg: "job status is required"},
		{Type: fs.Date, Name: "date_of_posting", Label: "Date Of Posting"},
		{Type: fs.Combobox, Name: "client_id", Label: "Client", Options: clients, AllowAddNew: true, Required: true, ErrorMsg: "Client is required"},
		{Type: fs.Combobox, Name: "assign", Label: "Assign To", Options: assignees, Required: true, ErrorMsg: "Assign To is required"},
	}
}

func Candidate(jobPostings []fs.Option) []fs.Field {
	return []fs.Field{
		{Type: fs.Upload, Name: "resume_url", Label: "Resume", Required: true, ErrorMsg: "Resume is required"},
		{Type: fs.Text, Name: "name", Label: "Name", Required: true, ErrorMsg: "Name is required"},
		{Type: fs.Text, Name: "email", Label: "Email", Required: true, ErrorMsg: "Email is required"},
		{Type: fs.Number, Name: "exp_min", Label: "Experience min", Required: true, ErrorMsg: "Experience min is required"},
		{Type: fs.Number, Name: "exp_max", Label: "Experience Max", Required: true, ErrorMsg: "Experience Max is required"},
		{Type: fs.Number, Name: "ctc", Label: "CTC", Required: true, ErrorMsg: "CTC is required"},
		{Type: fs.Text, Name: "current_company", Label: "Current Company", Required: true, ErrorMsg: "Current Company is required"},
		{Type: fs.Text, Name: "current_location", Label: "Current Location", Required: true, ErrorMsg: "Current Location is required"},
		{Type: fs.Text, Name: "preferred_location", Label: "Preferred Location", Required: true, ErrorMsg: "Preferred Location is required"},
		{Type: fs.Number, Name: "notice_period", Label: "Notice Period", Required: true, ErrorMsg: "Notice Period is required"},
		{Type: fs.Text, Name: "remarks", Label: "Remarks", Required: true, ErrorMsg: "Remarks is required"},
		{Type: fs.Combobox, Name: "job_posting", Label: "Assign Job", Options: jobPostings, ErrorMsg: "Assign Job is required"},
	}
}
