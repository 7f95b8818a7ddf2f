package renderer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Acme Corp", want: "acme"},
		{in: "Stormlight Capital, LLC", want: "stormlight-capital"},
		{in: "Initech Inc.", want: "initech"},
		{in: "Costco", want: "costco"},
		{in: "Jane  Doe", want: "jane-doe"},
		{in: "Sr. DevOps/SRE", want: "sr-devops-sre"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestBaseFilename(t *testing.T) {
	assert.Equal(t, "jane-doe-acme-senior-site-reliability-engineer", baseFilename("Jane Doe", "Acme Inc", "Senior Site Reliability Engineer II"))
	assert.Equal(t, "jane-doe", baseFilename("Jane Doe", "", ""))
	assert.Equal(t, "resume", baseFilename("", "", ""))
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []Format
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "pdf", want: []Format{FormatPDF}},
		{in: " HTML , docx,html", want: []Format{FormatHTML, FormatDOCX}},
		{in: "word,markdown", want: []Format{FormatDOCX, FormatMarkdown}},
		{in: "all", want: []Format{FormatPDF, FormatHTML, FormatDOCX}},
		{in: "html,rtf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportFormats(t *testing.T) {
	withPDF := PandocOptions{TemplatePath: "t.latex", ClassFile: "r.cls"}

	tests := []struct {
		name             string
		opts             ExportOptions
		wantFormats      []Format
		wantUnconfigured []Format
		wantKeep         bool
	}{
		{name: "markdown only by default", opts: ExportOptions{}, wantKeep: true},
		{name: "pdf by default when configured", opts: ExportOptions{Pandoc: withPDF}, wantFormats: []Format{FormatPDF}},
		{name: "pdf without template", opts: ExportOptions{Formats: []Format{FormatPDF, FormatHTML}}, wantFormats: []Format{FormatHTML}, wantUnconfigured: []Format{FormatPDF}},
		{name: "markdown requested keeps it", opts: ExportOptions{Formats: []Format{FormatMarkdown, FormatDOCX}}, wantFormats: []Format{FormatDOCX}, wantKeep: true},
		{name: "keep flag", opts: ExportOptions{Formats: []Format{FormatHTML}, KeepMarkdown: true}, wantFormats: []Format{FormatHTML}, wantKeep: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formats, unconfigured, keep := exportFormats(tt.opts)
			assert.Equal(t, tt.wantFormats, formats)
			assert.Equal(t, tt.wantUnconfigured, unconfigured)
			assert.Equal(t, tt.wantKeep, keep)
		})
	}
}

func TestExportMarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	doc := resume.Default()
	doc.CoverLetter = "Dear Hiring Manager,\n\nHello."

	result, err := Export(context.Background(), doc, resume.DefaultSettings(), ExportOptions{
		Dir:     dir,
		Company: "Acme",
		Role:    "SRE",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "jane-doe-acme-sre-resume.md"), result.Resume[FormatMarkdown])
	assert.Equal(t, filepath.Join(dir, "jane-doe-acme-sre-cover.md"), result.CoverLetter[FormatMarkdown])
	assert.Empty(t, result.Resume[FormatPDF])
	assert.Empty(t, result.Skipped)
	assert.Len(t, result.Files(), 2)

	cover, err := os.ReadFile(result.CoverLetter[FormatMarkdown])
	require.NoError(t, err)
	assert.Contains(t, string(cover), "Dear Hiring Manager,\n\nHello.")
}

func TestExportSkipsEmptyCoverLetter(t *testing.T) {
	result, err := Export(context.Background(), resume.Default(), resume.DefaultSettings(), ExportOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Resume[FormatMarkdown])
	assert.Empty(t, result.CoverLetter)
}

func TestExportRequiresDir(t *testing.T) {
	_, err := Export(context.Background(), resume.Default(), resume.DefaultSettings(), ExportOptions{})
	assert.Error(t, err)
}

func TestExportWithoutPandoc(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	doc := resume.Default()
	doc.CoverLetter = "Hello."

	result, err := Export(context.Background(), doc, resume.DefaultSettings(), ExportOptions{
		Dir:     t.TempDir(),
		Formats: []Format{FormatHTML, FormatDOCX},
	})
	require.NoError(t, err)

	assert.Equal(t, []Format{FormatHTML, FormatDOCX}, result.Skipped)
	assert.Len(t, result.Files(), 2, "markdown is kept when formats are skipped")
	assert.FileExists(t, result.Resume[FormatMarkdown])
	assert.FileExists(t, result.CoverLetter[FormatMarkdown])
}

func TestExportPDFWithoutTemplate(t *testing.T) {
	result, err := Export(context.Background(), resume.Default(), resume.DefaultSettings(), ExportOptions{
		Dir:     t.TempDir(),
		Formats: []Format{FormatPDF},
	})
	require.NoError(t, err)

	assert.Equal(t, []Format{FormatPDF}, result.Skipped)
	assert.FileExists(t, result.Resume[FormatMarkdown])
}

func TestExportHTMLAndDOCX(t *testing.T) {
	if errors.Is(checkPandocExists(context.Background()), ErrPandocMissing) {
		t.Skip("Pandoc not installed, skipping test")
	}

	doc := resume.Default()
	doc.CoverLetter = "Dear Hiring Manager,\n\nHello."

	result, err := Export(context.Background(), doc, resume.DefaultSettings(), ExportOptions{
		Dir:     t.TempDir(),
		Formats: []Format{FormatHTML, FormatDOCX},
	})
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	for _, outputs := range []Outputs{result.Resume, result.CoverLetter} {
		assert.FileExists(t, outputs[FormatHTML])
		assert.FileExists(t, outputs[FormatDOCX])
		assert.Empty(t, outputs[FormatMarkdown], "markdown is removed once every format rendered")
	}

	html, err := os.ReadFile(result.Resume[FormatHTML])
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")
}
