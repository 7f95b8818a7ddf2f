package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikogura/resume-studio/pkg/renderer"
	"github.com/nikogura/resume-studio/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var showJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current resume",
	Long: `Print the current resume as plain text, or as JSON with --json.

Example:
  resume-studio show
  resume-studio show --json > resume.json`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the document as JSON")
}

func runShow(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	var sess *session.Session
	_, sess, err = openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess)

	if showJSON {
		var data []byte
		data, err = json.MarshalIndent(sess.Document(), "", "  ")
		if err != nil {
			err = errors.Wrap(err, "failed to encode document")
			return err
		}
		fmt.Println(string(data))
		return err
	}

	printDocument(sess)
	return err
}

// printDocument prints the resume text followed by the entry IDs and session fields.
func printDocument(sess *session.Session) {
	doc := sess.Document()
	fmt.Println(renderer.PlainText(doc))

	if len(doc.Experience) > 0 {
		fmt.Println("\nEXPERIENCE IDS")
		for _, e := range doc.Experience {
			fmt.Printf("  %s  %s - %s\n", shortID(e.ID), e.JobTitle, e.Company)
		}
	}

	fmt.Printf("\nTarget role: %s\n", sess.TargetJobRole())
	company, manager, _ := sess.Company()
	if company != "" {
		fmt.Printf("Company: %s", company)
		if manager != "" {
			fmt.Printf(" (attn. %s)", manager)
		}
		fmt.Println()
	}
	if jobDescription := sess.JobDescription(); jobDescription != "" {
		fmt.Printf("Job description: %d characters\n", len(jobDescription))
	}
	if pending := sess.PendingFields(); len(pending) > 0 {
		fmt.Printf("Unreviewed AI text in %d field(s)\n", len(pending))
	}
	if doc.CoverLetter != "" {
		fmt.Println("Cover letter: present")
	}
}
