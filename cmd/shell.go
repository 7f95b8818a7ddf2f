package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/nikogura/resume-studio/pkg/config"
	"github.com/nikogura/resume-studio/pkg/resume"
	"github.com/nikogura/resume-studio/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit the resume interactively",
	Long: `Start an interactive session. Type 'help' for the list of commands.

Edits made with 'set' count as finished when the command returns: if the field
held AI text, resume-studio compares it with your version and learns from the
difference.

Example:
  resume-studio shell
  resume-studio shell --ephemeral`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `Commands:
  show                      print the resume
  set summary <text>        replace the summary
  set exp <id> <text>       replace an entry's responsibilities (\n for new lines)
  add exp <title> | <company>
  rm exp <id>               remove an experience entry
  suggest summary           draft a summary for the target role
  suggest exp <id>          draft responsibilities for an entry
  enhance <id>              rewrite an entry's responsibilities
  blur summary | exp <id>   learn from your edit of AI text
  undo, redo
  role <text>               set the target job role
  jd <file-or-url>          load the job description
  company <name>            set the company for the cover letter
  cover                     stream a cover letter
  ats                       ATS compatibility check
  match                     match against the job description
  interview                 interview prep kit
  prefs                     show learned preferences
  prefs clear               forget learned preferences
  export [as <formats>] [dir]
                            write markdown and pdf/html/docx files
  reset                     start over from the sample resume
  help, quit`

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

type shell struct {
	cfg  config.Config
	sess *session.Session
	out  io.Writer
}

func runShell(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	var cfg config.Config
	var sess *session.Session
	cfg, sess, err = openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(sess)

	sh := &shell{cfg: cfg, sess: sess, out: os.Stdout}

	fmt.Println("resume-studio shell. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Interrupt cancels the running command. Every mutation is already
		// saved, so an interrupt at the prompt loses nothing.
		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		runErr := sh.run(cmdCtx, line)
		stop()

		if errors.Is(runErr, errQuit) {
			break
		}
		if runErr != nil {
			fmt.Fprintln(sh.out, userMessage(runErr))
		}
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read input")
		return err
	}

	return err
}

// run executes one shell command line.
func (sh *shell) run(ctx context.Context, line string) (err error) {
	verb, rest := splitWord(line)

	switch verb {
	case "quit", "exit":
		err = errQuit
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "show":
		printDocument(sh.sess)
	case "set":
		err = sh.set(ctx, rest)
	case "add":
		err = sh.add(ctx, rest)
	case "rm":
		err = sh.remove(ctx, rest)
	case "suggest":
		err = sh.suggest(ctx, rest)
	case "enhance":
		err = sh.enhance(ctx, rest)
	case "blur":
		err = sh.blurCommand(ctx, rest)
	case "undo":
		err = sh.step(ctx, sh.sess.Undo, "undo")
	case "redo":
		err = sh.step(ctx, sh.sess.Redo, "redo")
	case "role":
		err = sh.sess.SetTargetJobRole(ctx, rest)
	case "jd":
		err = sh.loadJD(ctx, rest)
	case "company":
		_, manager, address := sh.sess.Company()
		err = sh.sess.SetCompany(ctx, rest, manager, address)
	case "cover":
		_, err = sh.sess.GenerateCoverLetter(ctx, sh.printChunk)
		fmt.Fprintln(sh.out)
	case "ats":
		var report string
		report, err = sh.sess.ATSCheck(ctx, sh.printChunk)
		fmt.Fprintln(sh.out)
		if err == nil {
			printScore(report)
		}
	case "match":
		var report string
		report, err = sh.sess.JobMatch(ctx, sh.printChunk)
		fmt.Fprintln(sh.out)
		if err == nil {
			printScore(report)
		}
	case "interview":
		var prep resume.InterviewPrep
		withSpinner("Generating your interview prep kit...", func() {
			prep, err = sh.sess.InterviewPrep(ctx)
		})
		if err == nil {
			printInterviewPrep(prep)
		}
	case "prefs":
		err = sh.prefs(ctx, rest)
	case "export":
		err = sh.export(ctx, rest)
	case "reset":
		err = sh.sess.Reset(ctx)
		if err == nil {
			fmt.Fprintln(sh.out, "Session reset.")
		}
	default:
		err = errors.Errorf("unknown command %q, type 'help' for the list", verb)
	}

	return err
}

func (sh *shell) set(ctx context.Context, args string) (err error) {
	target, rest := splitWord(args)

	var field resume.FieldID
	switch target {
	case "summary":
		field = resume.SummaryField()
	case "exp":
		var prefix string
		prefix, rest = splitWord(rest)
		field, err = sh.experienceField(prefix)
		if err != nil {
			return err
		}
	default:
		err = errors.New("set what? use 'set summary <text>' or 'set exp <id> <text>'")
		return err
	}

	text := unescapeInput(rest)
	var setErr error
	_, err = sh.sess.Edit(ctx, func(doc *resume.Document) {
		setErr = doc.SetField(field, text)
	})
	if setErr != nil {
		err = setErr
		return err
	}
	if err != nil {
		return err
	}

	// The edit is complete once the command returns.
	sh.blur(ctx, field)
	return err
}

func (sh *shell) add(ctx context.Context, args string) (err error) {
	target, rest := splitWord(args)
	if target != "exp" {
		err = errors.New("add what? use 'add exp <title> | <company>'")
		return err
	}

	title, company, _ := strings.Cut(rest, "|")

	var id string
	_, err = sh.sess.Edit(ctx, func(doc *resume.Document) {
		id = doc.AddExperience()
		index, _ := doc.FindExperience(id)
		doc.Experience[index].JobTitle = strings.TrimSpace(title)
		doc.Experience[index].Company = strings.TrimSpace(company)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(sh.out, "Added experience %s\n", shortID(id))
	return err
}

func (sh *shell) remove(ctx context.Context, args string) (err error) {
	target, rest := splitWord(args)
	if target != "exp" {
		err = errors.New("remove what? use 'rm exp <id>'")
		return err
	}

	var id string
	id, err = resolveExperience(sh.sess.Document(), rest)
	if err != nil {
		return err
	}

	var removeErr error
	_, err = sh.sess.Edit(ctx, func(doc *resume.Document) {
		removeErr = doc.RemoveExperience(id)
	})
	if removeErr != nil {
		err = removeErr
		return err
	}
	return err
}

func (sh *shell) suggest(ctx context.Context, args string) (err error) {
	target, rest := splitWord(args)

	var text string
	switch target {
	case "summary":
		withSpinner("Generating professional summary...", func() {
			text, err = sh.sess.SuggestSummary(ctx)
		})
	case "exp":
		var id string
		id, err = resolveExperience(sh.sess.Document(), rest)
		if err != nil {
			return err
		}
		withSpinner("Generating experience description...", func() {
			text, err = sh.sess.SuggestExperience(ctx, id)
		})
	default:
		err = errors.New("suggest what? use 'suggest summary' or 'suggest exp <id>'")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(sh.out, text)
	return err
}

func (sh *shell) enhance(ctx context.Context, args string) (err error) {
	var id string
	id, err = resolveExperience(sh.sess.Document(), args)
	if err != nil {
		return err
	}

	var text string
	withSpinner("Enhancing experience description...", func() {
		text, err = sh.sess.EnhanceExperience(ctx, id)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(sh.out, text)
	return err
}

func (sh *shell) blurCommand(ctx context.Context, args string) (err error) {
	target, rest := splitWord(args)

	var field resume.FieldID
	switch target {
	case "summary":
		field = resume.SummaryField()
	case "exp":
		field, err = sh.experienceField(rest)
		if err != nil {
			return err
		}
	default:
		err = errors.New("blur what? use 'blur summary' or 'blur exp <id>'")
		return err
	}

	sh.blur(ctx, field)
	return err
}

// blur runs the feedback loop and reports a newly learned preference.
func (sh *shell) blur(ctx context.Context, field resume.FieldID) {
	before := sh.sess.Preferences().Len()
	outcome := sh.sess.FieldBlur(ctx, field)

	if getVerbose() {
		fmt.Fprintf(sh.out, "Feedback: %s\n", outcome)
	}

	lines := sh.sess.Preferences().Lines()
	if len(lines) > before {
		fmt.Fprintf(sh.out, "Learned: %s\n", lines[len(lines)-1])
	}
}

func (sh *shell) experienceField(prefix string) (field resume.FieldID, err error) {
	var id string
	id, err = resolveExperience(sh.sess.Document(), prefix)
	if err != nil {
		return field, err
	}
	field = resume.ExperienceField(id)
	return field, err
}

func (sh *shell) step(ctx context.Context, move func(ctx context.Context) (moved bool, err error), name string) (err error) {
	var moved bool
	moved, err = move(ctx)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintf(sh.out, "Nothing to %s.\n", name)
	}
	return err
}

func (sh *shell) loadJD(ctx context.Context, input string) (err error) {
	var jobDescription string
	jobDescription, err = fetchJD(ctx, input, false)
	if err != nil {
		return err
	}

	err = sh.sess.SetJobDescription(ctx, jobDescription)
	if err != nil {
		return err
	}

	fmt.Fprintf(sh.out, "Job description loaded (%d characters)\n", len(jobDescription))
	return err
}

func (sh *shell) prefs(ctx context.Context, args string) (err error) {
	switch strings.TrimSpace(args) {
	case "":
		log := sh.sess.Preferences().String()
		if log == "" {
			fmt.Fprintln(sh.out, "No preferences learned yet.")
			return err
		}
		fmt.Fprintln(sh.out, log)
	case "clear":
		err = sh.sess.ClearPreferences(ctx)
	default:
		err = errors.New("use 'prefs' or 'prefs clear'")
	}
	return err
}

// export handles "export [as <formats>] [dir]".
func (sh *shell) export(ctx context.Context, args string) (err error) {
	formats := getExportFormat("", sh.cfg)
	if word, rest := splitWord(args); word == "as" {
		formats, args = splitWord(rest)
		if formats == "" {
			err = errors.New("export as what? use 'export as html,docx [dir]'")
			return err
		}
	}

	err = exportSession(ctx, sh.cfg, sh.sess, getOutputDir(args, sh.cfg.Defaults.OutputDir), formats, true)
	return err
}

func (sh *shell) printChunk(chunk string) {
	fmt.Fprint(sh.out, chunk)
}

// splitWord returns the first word of s and the trimmed remainder.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	word, rest, _ = strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)
	return word, rest
}
