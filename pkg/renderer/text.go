package renderer

import (
	"fmt"
	"strings"

	"github.com/nikogura/resume-studio/pkg/resume"
)

// PlainText renders the resume as sectioned plain text, the form sent to the
// analysis prompts.
func PlainText(doc resume.Document) (text string) {
	info := doc.PersonalInfo
	sections := []string{
		"Name: " + info.Name,
		"Contact: " + joinNonEmpty(" | ", info.Email, info.Phone, info.Address, info.LinkedIn, info.GitHub, info.Website),
	}

	if doc.Summary != "" {
		sections = append(sections, "PROFESSIONAL SUMMARY\n"+doc.Summary)
	}

	if len(doc.Experience) > 0 {
		entries := make([]string, 0, len(doc.Experience))
		for _, exp := range doc.Experience {
			entries = append(entries, fmt.Sprintf("%s - %s (%s to %s)\n%s", exp.JobTitle, exp.Company, exp.StartDate, exp.EndDate, exp.Responsibilities))
		}
		sections = append(sections, "WORK EXPERIENCE\n"+strings.Join(entries, "\n\n"))
	}

	if len(doc.Education) > 0 {
		entries := make([]string, 0, len(doc.Education))
		for _, edu := range doc.Education {
			entries = append(entries, fmt.Sprintf("%s, %s (%s)", edu.Degree, edu.Institution, edu.GradDate))
		}
		sections = append(sections, "EDUCATION\n"+strings.Join(entries, "\n"))
	}

	if len(doc.Certifications) > 0 {
		entries := make([]string, 0, len(doc.Certifications))
		for _, cert := range doc.Certifications {
			entries = append(entries, fmt.Sprintf("%s - %s (%s)", cert.Name, cert.Issuer, cert.Date))
		}
		sections = append(sections, "CERTIFICATIONS\n"+strings.Join(entries, "\n"))
	}

	if len(doc.Skills) > 0 {
		names := make([]string, 0, len(doc.Skills))
		for _, skill := range doc.Skills {
			names = append(names, skill.Name)
		}
		sections = append(sections, "SKILLS\n"+strings.Join(names, ", "))
	}

	text = strings.Join(sections, "\n\n")
	return text
}

// Markdown renders the resume as markdown suitable for pandoc. The settings
// are written into the YAML front matter for the LaTeX template to pick up.
func Markdown(doc resume.Document, settings resume.Settings) (md string) {
	settings = settings.WithDefaults()
	info := doc.PersonalInfo

	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", info.Name)
	fmt.Fprintf(&b, "template: %s\n", settings.Template)
	fmt.Fprintf(&b, "accentcolor: %q\n", strings.TrimPrefix(settings.AccentColor, "#"))
	fmt.Fprintf(&b, "fontfamily: %s\n", fontPackage(settings.FontFamily))
	fmt.Fprintf(&b, "fontsize: %s\n", fontSizePoints(settings.FontSize))
	fmt.Fprintf(&b, "linestretch: %s\n", lineStretch(settings.Spacing))
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", info.Name)

	contact := joinNonEmpty(" | ",
		info.Email,
		info.Phone,
		info.Address,
		link("LinkedIn", info.LinkedIn),
		link("GitHub", info.GitHub),
		link("Website", info.Website),
	)
	if contact != "" {
		b.WriteString(contact + "\n\n")
	}

	if doc.Summary != "" {
		b.WriteString("## Professional Summary\n\n")
		b.WriteString(doc.Summary + "\n\n")
	}

	if len(doc.Experience) > 0 {
		b.WriteString("## Experience\n\n")
		for _, exp := range doc.Experience {
			fmt.Fprintf(&b, "**%s** | *%s*", exp.Company, exp.JobTitle)
			dates := joinNonEmpty(" - ", exp.StartDate, exp.EndDate)
			if dates != "" {
				fmt.Fprintf(&b, " | %s", dates)
			}
			if exp.Location != "" {
				fmt.Fprintf(&b, " | %s", exp.Location)
			}
			b.WriteString("\n\n")
			if exp.Responsibilities != "" {
				b.WriteString(bullets(exp.Responsibilities) + "\n\n")
			}
		}
	}

	if len(doc.Education) > 0 {
		b.WriteString("## Education\n\n")
		for _, edu := range doc.Education {
			fmt.Fprintf(&b, "- **%s**, %s", edu.Degree, edu.Institution)
			if edu.GradDate != "" {
				fmt.Fprintf(&b, " (%s)", edu.GradDate)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Certifications) > 0 {
		b.WriteString("## Certifications\n\n")
		for _, cert := range doc.Certifications {
			fmt.Fprintf(&b, "- %s", joinNonEmpty(", ", cert.Name, cert.Issuer, cert.Date))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Skills) > 0 {
		names := make([]string, 0, len(doc.Skills))
		for _, skill := range doc.Skills {
			names = append(names, skill.Name)
		}
		b.WriteString("## Skills\n\n")
		b.WriteString(strings.Join(names, ", ") + "\n\n")
	}

	if len(doc.References) > 0 {
		b.WriteString("## References\n\n")
		for _, ref := range doc.References {
			fmt.Fprintf(&b, "- **%s**", ref.Name)
			if role := joinNonEmpty(", ", ref.Title, ref.Company); role != "" {
				fmt.Fprintf(&b, ", %s", role)
			}
			if contact := joinNonEmpty(" | ", ref.Email, ref.Phone); contact != "" {
				fmt.Fprintf(&b, " (%s)", contact)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	md = strings.TrimRight(b.String(), "\n") + "\n"
	return md
}

// CoverLetterMarkdown renders the cover letter with the same front matter as
// the resume so both PDFs match.
func CoverLetterMarkdown(doc resume.Document, settings resume.Settings) (md string) {
	settings = settings.WithDefaults()

	md = fmt.Sprintf("---\ntitle: %q\ntemplate: %s\naccentcolor: %q\nfontfamily: %s\nfontsize: %s\nlinestretch: %s\n---\n\n%s\n",
		doc.PersonalInfo.Name+" - Cover Letter",
		settings.Template,
		strings.TrimPrefix(settings.AccentColor, "#"),
		fontPackage(settings.FontFamily),
		fontSizePoints(settings.FontSize),
		lineStretch(settings.Spacing),
		strings.TrimSpace(doc.CoverLetter),
	)
	return md
}

// bullets normalizes responsibility lines to markdown list items, separated
// by blank lines for readability in the PDF.
func bullets(text string) (md string) {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		if line == "" {
			continue
		}
		items = append(items, "- "+line)
	}
	md = strings.Join(items, "\n\n")
	return md
}

func link(label, url string) (md string) {
	if url == "" {
		return md
	}
	md = fmt.Sprintf("[%s](%s)", label, url)
	return md
}

func joinNonEmpty(sep string, parts ...string) (joined string) {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	joined = strings.Join(kept, sep)
	return joined
}

func fontPackage(family string) (pkg string) {
	switch family {
	case "serif":
		pkg = "libertine"
	default:
		pkg = "helvet"
	}
	return pkg
}

func fontSizePoints(size string) (pt string) {
	switch size {
	case "sm":
		pt = "10pt"
	case "lg":
		pt = "12pt"
	default:
		pt = "11pt"
	}
	return pt
}

func lineStretch(spacing string) (stretch string) {
	switch spacing {
	case "compact":
		stretch = "1.0"
	case "relaxed":
		stretch = "1.35"
	default:
		stretch = "1.15"
	}
	return stretch
}
