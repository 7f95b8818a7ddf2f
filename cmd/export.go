package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nikogura/resume-studio/pkg/config"
	"github.com/nikogura/resume-studio/pkg/renderer"
	"github.com/nikogura/resume-studio/pkg/session"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var keepMarkdown bool

//nolint:gochecknoglobals // Cobra boilerplate
var exportFormat string

//nolint:gochecknoglobals // Cobra boilerplate
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the resume and cover letter to files",
	Long: `Write the resume, and the cover letter when there is one, as markdown and
render it with pandoc to the requested formats: pdf, html, docx, or all.
Without --format, PDF is rendered when the LaTeX template is configured.

Files are named after you, the company and the target role.

Example:
  resume-studio export
  resume-studio export --format html,docx
  resume-studio export --output-dir ~/Documents/applications --format all`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	exportCmd.Flags().BoolVar(&keepMarkdown, "keep-markdown", true, "Keep markdown files after rendering")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export formats: pdf, html, docx or all (default from config)")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var cfg config.Config
	var sess *session.Session
	cfg, sess, err = openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess)

	err = exportSession(ctx, cfg, sess, getOutputDir(outputDir, cfg.Defaults.OutputDir), getExportFormat(exportFormat, cfg), keepMarkdown)
	return err
}

func getExportFormat(flagValue string, cfg config.Config) (format string) {
	format = flagValue
	if format == "" {
		format = cfg.Defaults.ExportFormats
	}
	return format
}

func getOutputDir(flagValue, configValue string) (outDir string) {
	outDir = flagValue
	if outDir == "" {
		outDir = configValue
	}
	return outDir
}

// exportSession renders the session documents into dir and lists the files
// written. formats is a comma separated list; empty means the default.
func exportSession(ctx context.Context, cfg config.Config, sess *session.Session, dir, formats string, keep bool) (err error) {
	var parsed []renderer.Format
	parsed, err = renderer.ParseFormats(formats)
	if err != nil {
		return err
	}

	company, _, _ := sess.Company()

	if getVerbose() {
		fmt.Printf("Exporting to: %s\n", dir)
		if len(parsed) == 0 && !cfg.PDFEnabled() {
			fmt.Println("Pandoc is not configured, writing markdown only")
		}
	}

	var result renderer.ExportResult
	result, err = renderer.Export(ctx, sess.Document(), sess.Settings(), renderer.ExportOptions{
		Dir:     dir,
		Company: company,
		Role:    sess.TargetJobRole(),
		Formats: parsed,
		Pandoc: renderer.PandocOptions{
			TemplatePath: cfg.Pandoc.TemplatePath,
			ClassFile:    cfg.Pandoc.ClassFile,
			ReferenceDoc: cfg.Pandoc.ReferenceDoc,
		},
		KeepMarkdown: keep,
	})
	if err != nil {
		return err
	}

	for _, f := range result.Files() {
		fmt.Printf("Saved %s\n", f)
	}
	for _, f := range result.Skipped {
		fmt.Printf("Warning: could not export %s, markdown kept\n", strings.ToUpper(string(f)))
	}

	return err
}
