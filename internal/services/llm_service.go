package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/talent-tracker/internal/config"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// MaxExtractionInput caps how much of a page is sent to the model.
const MaxExtractionInput = 20000

// NoChange is the classification for replies that do not move a candidate.
const NoChange = "NO_CHANGE"

type LLMService struct {
	// Client is nil when no API key is configured.
	Client llms.Model
}

// NewLLMService creates the Gemini client. Without an API key the service is
// returned disabled and every call fails with ErrAssistantDisabled.
func NewLLMService(ctx context.Context, cfg config.LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return &LLMService{}, nil
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.Client != nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data for a recruiting agency.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "client_name": "Name of the hiring company",
    "role": "Job title (e.g., Senior Backend Engineer)",
    "skills": ["Array", "of", "skills", "mentioned"],
    "location": ["Array of job locations, or 'Remote'"],
    "job_description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "exp_min": "Minimum years of experience as a number",
    "exp_max": "Maximum years of experience as a number",
    "budget_min": "Minimum salary as a number",
    "budget_max": "Maximum salary as a number",
    "employment_type": "e.g., Full Time, Part Time, Contract",
    "mode_of_job": "One of: Remote, Hybrid, Onsite",
    "position": "Number of openings or seniority if stated"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobPosting reads job posting fields out of a raw job ad.
func (s *LLMService) ExtractJobPosting(ctx context.Context, rawHTML string) (*dtos.ExtractedJobPosting, error) {
	if !s.Enabled() {
		return nil, ErrAssistantDisabled
	}
	rawHTML = truncate(rawHTML, MaxExtractionInput)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extracting job posting: %w", err)
	}

	var out dtos.ExtractedJobPosting
	if err := json.Unmarshal([]byte(cleanJSON(resp)), &out); err != nil {
		return nil, fmt.Errorf("parsing extracted job posting: %w", err)
	}
	return &out, nil
}

const replyClassificationPrompt = `
You track candidates through a hiring pipeline. Read the email below from candidate %q about the role %q and decide whether it changes their status.

Allowed statuses: %s, or %s when the email does not change anything.

Respond with valid JSON only, without markdown:
{"status": "<one allowed status>", "summary": "<one sentence summary of the email>"}

Subject: %s

%s
`

// ClassifyReply decides which board column a candidate's email puts them
// in. Anything the model answers outside the board columns is NoChange.
func (s *LLMService) ClassifyReply(ctx context.Context, candidate, jobTitle, subject, body string) (*dtos.ReplyClassification, error) {
	if !s.Enabled() {
		return nil, ErrAssistantDisabled
	}
	body = truncate(body, MaxExtractionInput)

	prompt := fmt.Sprintf(replyClassificationPrompt, candidate, jobTitle, strings.Join(Columns, ", "), NoChange, subject, body)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifying reply: %w", err)
	}

	var out dtos.ReplyClassification
	if err := json.Unmarshal([]byte(cleanJSON(resp)), &out); err != nil {
		return nil, fmt.Errorf("parsing reply classification: %w", err)
	}
	if !isColumn(out.Status) {
		out.Status = NoChange
	}
	return &out, nil
}

// cleanJSON strips the markdown fence models sometimes add despite being
// told not to.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
