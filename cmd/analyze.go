package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikogura/resume-studio/pkg/jd"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/nikogura/resume-studio/pkg/scorer"
	"github.com/nikogura/resume-studio/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var jdInput string

//nolint:gochecknoglobals // Cobra boilerplate
var companyName string

//nolint:gochecknoglobals // Cobra boilerplate
var hiringManager string

//nolint:gochecknoglobals // Cobra boilerplate
var companyAddress string

//nolint:gochecknoglobals // Cobra boilerplate
var atsCmd = &cobra.Command{
	Use:   "ats",
	Short: "Check the resume for ATS compatibility",
	Args:  cobra.NoArgs,
	RunE:  runATS,
}

//nolint:gochecknoglobals // Cobra boilerplate
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Analyze how well the resume fits the job description",
	Long: `Analyze how well the resume fits the job description saved in the session,
or the one given with --jd.

Example:
  resume-studio match --jd https://example.com/jobs/123`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

//nolint:gochecknoglobals // Cobra boilerplate
var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Stream a cover letter into the session",
	Long: `Generate a cover letter for the job description and company saved in the
session. Flags replace the saved values first.

Example:
  resume-studio cover-letter --jd jd.txt --company "Acme Corp" --hiring-manager "Pat Smith"`,
	Args: cobra.NoArgs,
	RunE: runCoverLetter,
}

//nolint:gochecknoglobals // Cobra boilerplate
var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Generate an interview prep kit",
	Long: `Generate likely behavioral questions with STAR answers, technical questions
and questions to ask the interviewer, from the resume and the job description.`,
	Args: cobra.NoArgs,
	RunE: runInterview,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(atsCmd, matchCmd, coverLetterCmd, interviewCmd)

	for _, c := range []*cobra.Command{matchCmd, coverLetterCmd, interviewCmd} {
		c.Flags().StringVar(&jdInput, "jd", "", "Job description file, URL or - for stdin")
	}

	coverLetterCmd.Flags().StringVar(&companyName, "company", "", "Company name")
	coverLetterCmd.Flags().StringVar(&hiringManager, "hiring-manager", "", "Hiring manager name")
	coverLetterCmd.Flags().StringVar(&companyAddress, "address", "", "Company address")
}

func runATS(cmd *cobra.Command, args []string) (err error) {
	err = runSessionAction(func(ctx context.Context, sess *session.Session) (actionErr error) {
		var report string
		report, actionErr = sess.ATSCheck(ctx, printChunk)
		fmt.Println()
		if actionErr == nil {
			printScore(report)
		}
		return actionErr
	})
	return err
}

func runMatch(cmd *cobra.Command, args []string) (err error) {
	err = runSessionAction(func(ctx context.Context, sess *session.Session) (actionErr error) {
		actionErr = applyJDFlag(ctx, sess)
		if actionErr != nil {
			return actionErr
		}
		var report string
		report, actionErr = sess.JobMatch(ctx, printChunk)
		fmt.Println()
		if actionErr == nil {
			printScore(report)
		}
		return actionErr
	})
	return err
}

func runCoverLetter(cmd *cobra.Command, args []string) (err error) {
	err = runSessionAction(func(ctx context.Context, sess *session.Session) (actionErr error) {
		actionErr = applyJDFlag(ctx, sess)
		if actionErr != nil {
			return actionErr
		}

		if cmd.Flags().Changed("company") || cmd.Flags().Changed("hiring-manager") || cmd.Flags().Changed("address") {
			name, manager, address := sess.Company()
			if cmd.Flags().Changed("company") {
				name = companyName
			}
			if cmd.Flags().Changed("hiring-manager") {
				manager = hiringManager
			}
			if cmd.Flags().Changed("address") {
				address = companyAddress
			}
			actionErr = sess.SetCompany(ctx, name, manager, address)
			if actionErr != nil {
				return actionErr
			}
		}

		_, actionErr = sess.GenerateCoverLetter(ctx, printChunk)
		fmt.Println()
		return actionErr
	})
	return err
}

func runInterview(cmd *cobra.Command, args []string) (err error) {
	err = runSessionAction(func(ctx context.Context, sess *session.Session) (actionErr error) {
		actionErr = applyJDFlag(ctx, sess)
		if actionErr != nil {
			return actionErr
		}

		var prep resume.InterviewPrep
		withSpinner("Generating your interview prep kit...", func() {
			prep, actionErr = sess.InterviewPrep(ctx)
		})
		if actionErr != nil {
			return actionErr
		}

		printInterviewPrep(prep)
		return actionErr
	})
	return err
}

// runSessionAction opens the session, runs fn and reports its failure the way
// the shell does.
func runSessionAction(fn func(ctx context.Context, sess *session.Session) (err error)) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var sess *session.Session
	_, sess, err = openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess)

	err = fn(ctx, sess)
	if err != nil {
		fmt.Println(userMessage(err))
		return err
	}
	return err
}

func applyJDFlag(ctx context.Context, sess *session.Session) (err error) {
	if jdInput == "" {
		return err
	}

	var jobDescription string
	jobDescription, err = fetchJD(ctx, jdInput, true)
	if err != nil {
		return err
	}

	err = sess.SetJobDescription(ctx, jobDescription)
	return err
}

// fetchJD loads a job description. When fetching fails and paste is true the
// user can paste the text instead.
func fetchJD(ctx context.Context, input string, paste bool) (jobDescription string, err error) {
	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", input)
	}

	jobDescription, err = jd.FetchWithContext(ctx, input)
	if err == nil {
		if getVerbose() {
			fmt.Printf("Job description loaded (%d characters)\n", len(jobDescription))
		}
		return jobDescription, err
	}

	if !paste || input == jd.StdinInput {
		return jobDescription, err
	}

	fmt.Printf("\nWarning: Failed to fetch job description: %v\n", err)
	fmt.Println("This often happens with JavaScript-rendered pages (Lever, Workable, etc.)")
	fmt.Println("\nPlease paste the job description text below.")
	fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read job description from stdin")
		return jobDescription, err
	}

	jobDescription = strings.TrimSpace(strings.Join(lines, "\n"))
	if jobDescription == "" {
		err = errors.New("no job description provided")
		return jobDescription, err
	}

	fmt.Printf("\nJob description received (%d characters)\n", len(jobDescription))
	err = nil
	return jobDescription, err
}

func printChunk(chunk string) {
	fmt.Print(chunk)
}

// printScore rates the score line of an analysis report, if it has one.
func printScore(report string) {
	score, ok := scorer.Parse(report)
	if !ok {
		return
	}

	switch score.Rating {
	case scorer.RatingStrong:
		fmt.Printf("\n%d%%: strong, ready to send.\n", score.Value)
	case scorer.RatingFair:
		fmt.Printf("\n%d%%: fair, worth working through the suggestions.\n", score.Value)
	default:
		fmt.Printf("\n%d%%: weak, revise before applying.\n", score.Value)
	}
}

func printInterviewPrep(prep resume.InterviewPrep) {
	if len(prep.BehavioralQuestions) > 0 {
		fmt.Println("BEHAVIORAL QUESTIONS")
		for i, q := range prep.BehavioralQuestions {
			fmt.Printf("\n%d. %s\n", i+1, q.Question)
			fmt.Printf("   Situation: %s\n", q.Answer.Situation)
			fmt.Printf("   Task:      %s\n", q.Answer.Task)
			fmt.Printf("   Action:    %s\n", q.Answer.Action)
			fmt.Printf("   Result:    %s\n", q.Answer.Result)
		}
		fmt.Println()
	}

	printQuestionList("TECHNICAL QUESTIONS", prep.TechnicalQuestions)
	printQuestionList("QUESTIONS FOR THE INTERVIEWER", prep.QuestionsForInterviewer)
}

func printQuestionList(heading string, questions []string) {
	if len(questions) == 0 {
		return
	}
	fmt.Println(heading)
	for _, q := range questions {
		fmt.Printf("  - %s\n", q)
	}
	fmt.Println()
}
