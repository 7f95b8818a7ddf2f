package renderer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/pkg/errors"
)

// Format is an export file format.
type Format string

const (
	// FormatMarkdown is the pandoc source every other format is built from.
	FormatMarkdown Format = "md"
	// FormatPDF needs a LaTeX template and class.
	FormatPDF Format = "pdf"
	// FormatHTML is a standalone HTML page.
	FormatHTML Format = "html"
	// FormatDOCX is a Word document, optionally styled by a reference doc.
	FormatDOCX Format = "docx"
)

// ParseFormats reads a comma separated format list such as "pdf,html".
// "all" selects every rendered format. Markdown is always written and need
// not be listed.
func ParseFormats(list string) (formats []Format, err error) {
	seen := make(map[Format]bool)
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
			continue
		case "all":
			for _, f := range []Format{FormatPDF, FormatHTML, FormatDOCX} {
				if !seen[f] {
					seen[f] = true
					formats = append(formats, f)
				}
			}
			continue
		case "markdown":
			name = string(FormatMarkdown)
		case "word":
			name = string(FormatDOCX)
		}

		f := Format(name)
		switch f {
		case FormatMarkdown, FormatPDF, FormatHTML, FormatDOCX:
		default:
			err = errors.Errorf("unknown export format %q (use md, pdf, html or docx)", part)
			return formats, err
		}

		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, err
}

// PandocOptions locates the files pandoc styles its output with. Every field
// is optional: PDF needs TemplatePath and ClassFile, DOCX uses ReferenceDoc
// when it is set.
type PandocOptions struct {
	TemplatePath string
	ClassFile    string
	ReferenceDoc string
}

// PDFEnabled reports whether both template and class are configured.
func (o PandocOptions) PDFEnabled() (ok bool) {
	ok = o.TemplatePath != "" && o.ClassFile != ""
	return ok
}

// RenderPDF converts markdown to PDF using pandoc with a LaTeX template.
func RenderPDF(ctx context.Context, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (err error) {
	if !opts.PDFEnabled() {
		err = errors.New("PDF export needs pandoc.template_path and pandoc.class_file")
		return err
	}
	err = render(ctx, FormatPDF, markdownPath, outputPath, settings, opts)
	return err
}

// RenderHTML converts markdown to a standalone HTML page.
func RenderHTML(ctx context.Context, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (err error) {
	err = render(ctx, FormatHTML, markdownPath, outputPath, settings, opts)
	return err
}

// RenderDOCX converts markdown to a Word document.
func RenderDOCX(ctx context.Context, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (err error) {
	err = render(ctx, FormatDOCX, markdownPath, outputPath, settings, opts)
	return err
}

func render(ctx context.Context, format Format, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (err error) {
	err = checkPandocExists(ctx)
	if err != nil {
		return err
	}

	required := []string{markdownPath}
	switch format {
	case FormatPDF:
		required = append(required, opts.TemplatePath, opts.ClassFile)
	case FormatDOCX:
		if opts.ReferenceDoc != "" {
			required = append(required, opts.ReferenceDoc)
		}
	}
	err = validateFiles(required...)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	var args []string
	args, err = pandocArgs(format, markdownPath, outputPath, settings, opts)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "pandoc", args...)

	if format == FormatPDF {
		// The template loads its class through TEXINPUTS.
		classDir := filepath.Dir(opts.ClassFile)
		texinputs := classDir + ":" + os.Getenv("TEXINPUTS")
		cmd.Env = append(os.Environ(), "TEXINPUTS="+texinputs)
	}

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc %s failed: %s", format, string(output))
		return err
	}

	return err
}

// pandocArgs builds the pandoc command line for one format. The markdown
// front matter already carries font size and line spacing.
func pandocArgs(format Format, markdownPath, outputPath string, settings resume.Settings, opts PandocOptions) (args []string, err error) {
	settings = settings.WithDefaults()
	args = []string{"-f", "markdown", "-o", outputPath}

	switch format {
	case FormatPDF:
		args = append(args,
			"-t", "pdf",
			"--template", opts.TemplatePath,
			"--number-sections=false",
		)
	case FormatHTML:
		args = append(args,
			"-t", "html5",
			"--standalone",
			"-V", "mainfont="+cssFontStack(settings.FontFamily),
			"-V", "maxwidth=48em",
		)
	case FormatDOCX:
		args = append(args, "-t", "docx")
		if opts.ReferenceDoc != "" {
			args = append(args, "--reference-doc", opts.ReferenceDoc)
		}
	default:
		err = errors.Errorf("pandoc cannot render %q", format)
		return args, err
	}

	args = append(args, markdownPath)
	return args, err
}

func cssFontStack(family string) (stack string) {
	switch family {
	case "serif":
		stack = "Georgia, 'Times New Roman', serif"
	default:
		stack = "Helvetica, Arial, sans-serif"
	}
	return stack
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists(ctx context.Context) (err error) {
	cmd := exec.CommandContext(ctx, "pandoc", "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.Wrap(ErrPandocMissing, "install pandoc to export PDF, HTML or DOCX")
		return err
	}
	return err
}

// validateFiles checks that required files exist.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	return err
}

// WriteMarkdown writes markdown content to a file.
func WriteMarkdown(content, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write markdown file: %s", outputPath)
		return err
	}

	return err
}

// CleanupMarkdown removes markdown files once every requested format is rendered.
func CleanupMarkdown(paths ...string) (err error) {
	for _, path := range paths {
		err = os.Remove(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to remove markdown file: %s", path)
			return err
		}
	}
	return err
}
