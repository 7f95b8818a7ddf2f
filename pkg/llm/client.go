package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
)

const (
	// DefaultModel is used for suggestions, streaming analyses and learning.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultAnalysisModel is used for the interview prep kit.
	DefaultAnalysisModel = "claude-sonnet-4-5-20250929"
	// DefaultMaxTokens bounds every response.
	DefaultMaxTokens = 4096
)

// messageService is the subset of the SDK messages API the client uses.
type messageService interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
	NewStreaming(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

// Client generates resume content through the Anthropic Messages API.
type Client struct {
	messages      messageService
	model         string
	analysisModel string
	maxTokens     int64
}

// ClientOption configures a Client.
type ClientOption func(c *clientOptions)

type clientOptions struct {
	analysisModel  string
	maxTokens      int64
	requestOptions []option.RequestOption
}

// WithAnalysisModel sets the model used for the interview prep kit.
func WithAnalysisModel(model string) (opt ClientOption) {
	opt = func(c *clientOptions) {
		c.analysisModel = model
	}
	return opt
}

// WithMaxTokens overrides DefaultMaxTokens.
func WithMaxTokens(n int64) (opt ClientOption) {
	opt = func(c *clientOptions) {
		c.maxTokens = n
	}
	return opt
}

// WithRequestOptions passes options through to the SDK client, e.g. a base URL.
func WithRequestOptions(opts ...option.RequestOption) (opt ClientOption) {
	opt = func(c *clientOptions) {
		c.requestOptions = append(c.requestOptions, opts...)
	}
	return opt
}

// NewClient creates a new client.
func NewClient(apiKey, model string, opts ...ClientOption) (client *Client) {
	co := clientOptions{}
	for _, opt := range opts {
		opt(&co)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{
			Timeout: 120 * time.Second,
		}),
	}
	reqOpts = append(reqOpts, co.requestOptions...)

	sdk := anthropic.NewClient(reqOpts...)
	client = newClient(&sdk.Messages, model, co)
	return client
}

func newClient(messages messageService, model string, co clientOptions) (client *Client) {
	if model == "" {
		model = DefaultModel
	}
	if co.analysisModel == "" {
		co.analysisModel = DefaultAnalysisModel
	}
	if co.maxTokens <= 0 {
		co.maxTokens = DefaultMaxTokens
	}
	client = &Client{
		messages:      messages,
		model:         model,
		analysisModel: co.analysisModel,
		maxTokens:     co.maxTokens,
	}
	return client
}

// Generate sends one prompt and returns the trimmed text reply.
func (c *Client) Generate(ctx context.Context, prompt string) (text string, err error) {
	text, err = c.send(ctx, c.model, prompt)
	return text, err
}

// GenerateStreaming sends one prompt and returns the reply as a stream of chunks.
func (c *Client) GenerateStreaming(ctx context.Context, prompt string) (stream *Stream) {
	params := c.params(c.model, prompt)
	stream = newStream(c.messages.NewStreaming(ctx, params))
	return stream
}

// SuggestSummary drafts a professional summary for the target role.
func (c *Client) SuggestSummary(ctx context.Context, req SummaryRequest) (summary string, err error) {
	summary, err = c.Generate(ctx, buildSummaryPrompt(req))
	if err != nil {
		err = errors.Wrap(err, "summary suggestion request failed")
		return summary, err
	}
	return summary, err
}

// SuggestExperience drafts responsibilities for one job from its title and company.
func (c *Client) SuggestExperience(ctx context.Context, req ExperienceRequest) (bullets string, err error) {
	bullets, err = c.Generate(ctx, buildExperiencePrompt(req))
	if err != nil {
		err = errors.Wrap(err, "experience suggestion request failed")
		return bullets, err
	}
	return bullets, err
}

// EnhanceExperience rewrites the user's own responsibilities into polished bullets.
func (c *Client) EnhanceExperience(ctx context.Context, req EnhanceRequest) (bullets string, err error) {
	bullets, err = c.Generate(ctx, buildEnhancePrompt(req))
	if err != nil {
		err = errors.Wrap(err, "experience enhancement request failed")
		return bullets, err
	}
	return bullets, err
}

// SummarizeDiff describes the user's preference shown by their edit of AI text.
func (c *Client) SummarizeDiff(ctx context.Context, original, edited string) (preference string, err error) {
	preference, err = c.Generate(ctx, buildLearnPrompt(original, edited))
	if err != nil {
		err = errors.Wrap(err, "learn-from-edit request failed")
		return preference, err
	}
	return preference, err
}

// CoverLetter streams a cover letter tailored to the job description.
func (c *Client) CoverLetter(ctx context.Context, req CoverLetterRequest) (stream ChunkStream) {
	stream = c.GenerateStreaming(ctx, buildCoverLetterPrompt(req))
	return stream
}

// ATSCheck streams an applicant tracking system compatibility report.
func (c *Client) ATSCheck(ctx context.Context, resumeText string) (stream ChunkStream) {
	stream = c.GenerateStreaming(ctx, buildATSPrompt(resumeText))
	return stream
}

// JobMatch streams an analysis of how well the resume fits the job description.
func (c *Client) JobMatch(ctx context.Context, resumeText, jobDescription string) (stream ChunkStream) {
	stream = c.GenerateStreaming(ctx, buildJobMatchPrompt(resumeText, jobDescription))
	return stream
}

// InterviewPrep generates an interview preparation kit.
func (c *Client) InterviewPrep(ctx context.Context, resumeText, jobDescription string) (prep resume.InterviewPrep, err error) {
	var responseText string
	responseText, err = c.send(ctx, c.analysisModel, buildInterviewPrepPrompt(resumeText, jobDescription))
	if err != nil {
		err = errors.Wrap(err, "interview prep request failed")
		return prep, err
	}

	cleanedText := stripMarkdownCodeFences(responseText)

	err = json.Unmarshal([]byte(cleanedText), &prep)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse interview prep response: %s", responseText)
		return prep, err
	}

	if len(prep.BehavioralQuestions) == 0 && len(prep.TechnicalQuestions) == 0 {
		err = errors.New("interview prep response contained no questions")
		return prep, err
	}

	return prep, err
}

// send issues a non-streaming request and concatenates the text blocks.
func (c *Client) send(ctx context.Context, model, prompt string) (responseText string, err error) {
	var msg *anthropic.Message
	msg, err = c.messages.New(ctx, c.params(model, prompt))
	if err != nil {
		err = errors.Wrap(err, "messages request failed")
		return responseText, err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	responseText = strings.TrimSpace(b.String())
	if responseText == "" {
		err = errors.New("no content in response")
		return responseText, err
	}

	return responseText, err
}

func (c *Client) params(model, prompt string) (params anthropic.MessageNewParams) {
	params = anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	return params
}

// stripMarkdownCodeFences removes markdown code fences from JSON responses.
func stripMarkdownCodeFences(text string) (cleaned string) {
	cleaned = strings.TrimSpace(text)

	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line, with or without a language tag
	newline := strings.IndexByte(cleaned, '\n')
	if newline == -1 {
		cleaned = strings.Trim(cleaned, "`")
		return cleaned
	}
	cleaned = cleaned[newline+1:]

	cleaned = strings.TrimRight(cleaned, " \r\n")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimRight(cleaned, " \r\n")

	return cleaned
}
