package llm

import (
	"fmt"
	"strings"
)

const bulletInstructions = `Each bullet point should start with a strong action verb and be a single, concise sentence.
Quantify achievements with metrics where possible, using realistic numbers that fit the context.
Return only the bullet points, each on a new line starting with '- '. Do not include any other text, titles, or explanations.`

// preferencesSection appends the learned preference log to a prompt.
func preferencesSection(preferences string) (section string) {
	if strings.TrimSpace(preferences) == "" {
		return section
	}
	section = fmt.Sprintf(`

IMPORTANT: When generating the text, adhere to the following user preferences that have been learned from their past edits:
%s`, preferences)
	return section
}

func orDefault(value, fallback string) (s string) {
	s = strings.TrimSpace(value)
	if s == "" {
		s = fallback
	}
	return s
}

// buildSummaryPrompt creates the professional summary prompt.
func buildSummaryPrompt(req SummaryRequest) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional resume writer. Write a compelling, 2-3 sentence professional summary for a resume targeting the role of a '%s'.
Highlight key skills and experience relevant to this role.
Return only the summary text, without any titles or explanations.`, req.TargetJobRole)

	prompt += preferencesSection(req.Preferences)
	return prompt
}

// buildExperiencePrompt creates the prompt that drafts responsibilities from a title alone.
func buildExperiencePrompt(req ExperienceRequest) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional resume writer. For a job title of '%s' at company '%s', in the context of a career targeting '%s', generate 3-5 professional, action-oriented bullet points describing key responsibilities and achievements.
%s`, orDefault(req.JobTitle, "employee"), orDefault(req.Company, "a company"), req.TargetJobRole, bulletInstructions)

	prompt += preferencesSection(req.Preferences)
	return prompt
}

// buildEnhancePrompt creates the prompt that polishes user-written responsibilities.
func buildEnhancePrompt(req EnhanceRequest) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional resume writer. Based on the job title '%s' at '%s', and these user-provided key responsibilities and achievements:
---
%s
---
Rewrite them into 3-5 professional, action-oriented bullet points for an ATS-friendly resume.
%s`, req.JobTitle, req.Company, req.Points, bulletInstructions)

	prompt += preferencesSection(req.Preferences)
	return prompt
}

// buildLearnPrompt asks for one sentence describing what an edit says about the user.
func buildLearnPrompt(original, edited string) (prompt string) {
	prompt = fmt.Sprintf(`You are a helpful assistant that analyzes user edits to AI-generated text to understand their preferences.

An AI generated the ORIGINAL TEXT. The user then edited it to produce the USER'S TEXT.
Based on the differences, describe the user's preference in a single, concise, actionable sentence that can be used to guide future AI generations.

For example, if the user added metrics, the preference could be "The user prefers to include quantifiable achievements and metrics."
If the user made sentences shorter, the preference could be "The user prefers shorter, more direct sentences."

Return only that sentence.

---
ORIGINAL TEXT:
%s
---
USER'S TEXT:
%s
---`, original, edited)

	return prompt
}

// buildCoverLetterPrompt creates the cover letter prompt.
func buildCoverLetterPrompt(req CoverLetterRequest) (prompt string) {
	doc := req.Document
	manager := orDefault(req.HiringManager, "Hiring Manager")

	experience := make([]string, 0, len(doc.Experience))
	for _, exp := range doc.Experience {
		responsibilities := strings.Join(strings.Fields(exp.Responsibilities), " ")
		experience = append(experience, fmt.Sprintf("- %s at %s: %s", exp.JobTitle, exp.Company, responsibilities))
	}

	skills := make([]string, 0, len(doc.Skills))
	for _, skill := range doc.Skills {
		skills = append(skills, skill.Name)
	}

	certifications := make([]string, 0, len(doc.Certifications))
	for _, cert := range doc.Certifications {
		certifications = append(certifications, fmt.Sprintf("%s - %s", cert.Name, cert.Issuer))
	}

	addressLine := ""
	if req.CompanyAddress != "" {
		addressLine = fmt.Sprintf("\n- Company Address: %s", req.CompanyAddress)
	}

	prompt = fmt.Sprintf(`You are a professional career coach. Write a compelling and professional cover letter for a job application that is concise and fits on a single page.

Use the provided resume and job description to tailor the cover letter. The tone should be enthusiastic, professional, and confident.

FORMATTING REQUIREMENTS:
- Word Count: Strictly between 180 and 200 words.
- Structure: 3-4 concise paragraphs for the body.
- Paragraph Spacing: Separate each paragraph with a blank line.

DETAILS:
- Company Name: %s
- Hiring Manager: %s%s
- Highlight 2-3 key skills or experiences from the resume that are most relevant to the job description.
- Express genuine interest in the role and the company.
- End with a strong call to action.

CANDIDATE'S RESUME:
---
Name: %s
Summary: %s
Experience:
%s
Skills: %s
Certifications: %s
---

JOB DESCRIPTION:
---
%s
---

Generate only the cover letter text, starting with a salutation (e.g., "Dear %s,") and ending with a closing (e.g., "Sincerely,\n%s"). Do not include any other explanations or surrounding text.`,
		req.CompanyName,
		manager,
		addressLine,
		doc.PersonalInfo.Name,
		doc.Summary,
		strings.Join(experience, "\n"),
		strings.Join(skills, ", "),
		orDefault(strings.Join(certifications, ", "), "N/A"),
		req.JobDescription,
		manager,
		doc.PersonalInfo.Name,
	)

	return prompt
}

// buildATSPrompt creates the applicant tracking system check prompt.
func buildATSPrompt(resumeText string) (prompt string) {
	prompt = fmt.Sprintf(`Act as an advanced Applicant Tracking System (ATS) checker. Analyze the following resume text for ATS compatibility.
---
%s
---
Provide a detailed, easy-to-read analysis in Markdown. Keep all points clear and concise.

The output MUST follow this structure:
1. A first line of the form "ATS Score: NN%%".
2. A "## Keyword Analysis" section.
3. A "## Formatting & Parseability" section.
4. A "## Clarity & Action Verbs" section.
5. A "## Actionable Suggestions" section.
6. A "## Overall Feedback" section with a single concise paragraph.

Within sections, list points as bullets prefixed with "+" for positives, "-" for negatives and "*" for suggestions.`, resumeText)

	return prompt
}

// buildJobMatchPrompt creates the resume versus job description comparison prompt.
func buildJobMatchPrompt(resumeText, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional career coach providing a job match analysis. Compare the following resume with the provided job description.

---RESUME---
%s
---END RESUME---

---JOB DESCRIPTION---
%s
---END JOB DESCRIPTION---

Provide a detailed, easy-to-read analysis in Markdown. Each bullet point must be clear and concise. If a point is complex, break it into a shorter sentence.

The output MUST follow this structure:
1. A first line of the form "Match Score: NN%%".
2. A "## Strengths" section.
3. A "## Weaknesses" section.
4. A "## Suggestions for Improvement" section.
5. A "## Overall Feedback" section with a one-to-two sentence final verdict.`, resumeText, jobDescription)

	return prompt
}

// buildInterviewPrepPrompt creates the interview preparation kit prompt.
func buildInterviewPrepPrompt(resumeText, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert career coach and interview preparer. Based on the provided resume and job description, generate a comprehensive and personalized interview preparation kit.

---RESUME---
%s
---END RESUME---

---JOB DESCRIPTION---
%s
---END JOB DESCRIPTION---

The kit must contain:
1. behavioralQuestions: 5-7 likely behavioral questions. For each, a suggested answer using the STAR method, tailored to the experiences in the resume. Each STAR part is a single, concise paragraph.
2. technicalQuestions: 3-5 technical questions based on the skills and technologies in both the resume and the job description.
3. questionsForInterviewer: 3 insightful questions the candidate can ask the interviewer.

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "behavioralQuestions": [
    {
      "question": "the interview question",
      "answer": {
        "situation": "the context",
        "task": "the candidate's role or task",
        "action": "the action taken",
        "result": "the outcome"
      }
    }
  ],
  "technicalQuestions": ["question"],
  "questionsForInterviewer": ["question"]
}`, resumeText, jobDescription)

	return prompt
}
