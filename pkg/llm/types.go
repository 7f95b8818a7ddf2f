package llm

import (
	"github.com/nikogura/resume-studio/pkg/resume"
)

// SummaryRequest asks for a professional summary.
type SummaryRequest struct {
	TargetJobRole string
	Preferences   string
}

// ExperienceRequest asks for responsibilities for one job.
type ExperienceRequest struct {
	TargetJobRole string
	JobTitle      string
	Company       string
	Preferences   string
}

// EnhanceRequest asks for the user's own notes on a job to be rewritten.
type EnhanceRequest struct {
	JobTitle    string
	Company     string
	Points      string
	Preferences string
}

// CoverLetterRequest asks for a cover letter tailored to a job description.
type CoverLetterRequest struct {
	Document       resume.Document
	JobDescription string
	CompanyName    string
	HiringManager  string
	CompanyAddress string
}
