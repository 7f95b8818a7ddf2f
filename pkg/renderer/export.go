package renderer

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
)

// ErrPandocMissing is returned when pandoc is not on the PATH.
var ErrPandocMissing = errors.New("pandoc not found in PATH")

// ExportOptions controls where and how Export writes files.
type ExportOptions struct {
	Dir     string
	Company string
	Role    string
	// Formats lists the formats to produce. Empty means markdown, plus PDF
	// when the LaTeX template is configured.
	Formats      []Format
	Pandoc       PandocOptions
	KeepMarkdown bool
	Logger       *slog.Logger
}

// Outputs maps each produced format to its file.
type Outputs map[Format]string

// ExportResult lists the files Export wrote and the requested formats it
// could not produce.
type ExportResult struct {
	Resume      Outputs
	CoverLetter Outputs
	Skipped     []Format
}

// Files returns every written path, resume first.
func (r ExportResult) Files() (files []string) {
	for _, outputs := range []Outputs{r.Resume, r.CoverLetter} {
		for _, f := range exportOrder {
			if path := outputs[f]; path != "" {
				files = append(files, path)
			}
		}
	}
	return files
}

type renderFunc func(ctx context.Context, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (err error)

//nolint:gochecknoglobals // Fixed format table
var (
	exportOrder = []Format{FormatMarkdown, FormatPDF, FormatHTML, FormatDOCX}
	renderers   = map[Format]renderFunc{
		FormatPDF:  RenderPDF,
		FormatHTML: RenderHTML,
		FormatDOCX: RenderDOCX,
	}
)

// Export writes the resume, and the cover letter when there is one, as
// markdown and then renders the requested formats from it with pandoc. A
// format that cannot be rendered is logged and listed in Skipped; the
// markdown stays in place so nothing is lost.
func Export(ctx context.Context, doc resume.Document, settings resume.Settings, opts ExportOptions) (result ExportResult, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Dir == "" {
		err = errors.New("export directory is required")
		return result, err
	}

	result.Resume = Outputs{}
	result.CoverLetter = Outputs{}
	base := baseFilename(doc.PersonalInfo.Name, opts.Company, opts.Role)

	resumeMD := filepath.Join(opts.Dir, base+"-resume.md")
	err = WriteMarkdown(Markdown(doc, settings), resumeMD)
	if err != nil {
		err = errors.Wrap(err, "failed to write resume markdown")
		return result, err
	}
	result.Resume[FormatMarkdown] = resumeMD

	if strings.TrimSpace(doc.CoverLetter) != "" {
		coverMD := filepath.Join(opts.Dir, base+"-cover.md")
		err = WriteMarkdown(CoverLetterMarkdown(doc, settings), coverMD)
		if err != nil {
			err = errors.Wrap(err, "failed to write cover letter markdown")
			return result, err
		}
		result.CoverLetter[FormatMarkdown] = coverMD
	}

	formats, unconfigured, keep := exportFormats(opts)
	if len(unconfigured) > 0 {
		logger.Warn("skipping PDF export, pandoc template is not configured")
		result.Skipped = append(result.Skipped, unconfigured...)
	}
	if len(formats) == 0 {
		return result, err
	}

	if pandocErr := checkPandocExists(ctx); pandocErr != nil {
		logger.Warn("skipping pandoc formats", "formats", formats, "error", pandocErr)
		result.Skipped = append(result.Skipped, formats...)
		return result, err
	}

	failed := make(map[Format]bool)
	for _, outputs := range []Outputs{result.Resume, result.CoverLetter} {
		markdownPath := outputs[FormatMarkdown]
		if markdownPath == "" {
			continue
		}
		for _, f := range formats {
			out := strings.TrimSuffix(markdownPath, ".md") + "." + string(f)
			renderErr := renderers[f](ctx, markdownPath, out, settings, opts.Pandoc)
			if renderErr != nil {
				logger.Warn("failed to render export", "format", f, "markdown", markdownPath, "error", renderErr)
				failed[f] = true
				continue
			}
			outputs[f] = out
		}
	}

	for _, f := range formats {
		if failed[f] {
			result.Skipped = append(result.Skipped, f)
		}
	}

	if keep || len(result.Skipped) > 0 {
		return result, err
	}

	for _, outputs := range []Outputs{result.Resume, result.CoverLetter} {
		markdownPath := outputs[FormatMarkdown]
		if markdownPath == "" {
			continue
		}
		if cleanupErr := CleanupMarkdown(markdownPath); cleanupErr != nil {
			logger.Warn("failed to clean up markdown", "error", cleanupErr)
			continue
		}
		delete(outputs, FormatMarkdown)
	}

	return result, err
}

// exportFormats splits the requested formats into those pandoc can render
// and those missing their configuration, and reports whether the markdown
// must be kept.
func exportFormats(opts ExportOptions) (formats, unconfigured []Format, keep bool) {
	requested := opts.Formats
	if len(requested) == 0 && opts.Pandoc.PDFEnabled() {
		requested = []Format{FormatPDF}
	}

	keep = opts.KeepMarkdown
	for _, f := range requested {
		switch {
		case f == FormatMarkdown:
			keep = true
		case f == FormatPDF && !opts.Pandoc.PDFEnabled():
			unconfigured = append(unconfigured, f)
		default:
			formats = append(formats, f)
		}
	}

	if len(formats) == 0 {
		keep = true
	}
	return formats, unconfigured, keep
}

// baseFilename builds "name-company-role", dropping empty parts. The role is
// cut to four words to keep names reasonable.
func baseFilename(name, company, role string) (base string) {
	roleWords := strings.Fields(role)
	if len(roleWords) > 4 {
		role = strings.Join(roleWords[:4], " ")
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{name, company, role} {
		if s := sanitizeFilename(p); s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		base = "resume"
		return base
	}

	base = strings.Join(parts, "-")
	return base
}

//nolint:gochecknoglobals // Compiled once
var (
	companySuffix  = regexp.MustCompile(`(?i)[, ]+(llc|inc\.?|corporation|corp\.?|limited|ltd\.?|co\.?)$`)
	nonFilenameRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// sanitizeFilename lowercases s, drops company suffixes and collapses
// everything else to dashes.
func sanitizeFilename(s string) (sanitized string) {
	sanitized = strings.TrimSpace(s)
	sanitized = companySuffix.ReplaceAllString(sanitized, "")
	sanitized = strings.ToLower(sanitized)
	sanitized = nonFilenameRun.ReplaceAllString(sanitized, "-")
	sanitized = strings.Trim(sanitized, "-")
	return sanitized
}
