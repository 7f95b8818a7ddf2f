package resume

import (
	"regexp"

	"github.com/pkg/errors"
)

// Settings holds the presentation choices passed to the renderer.
type Settings struct {
	Template    string `json:"template"`
	AccentColor string `json:"accent_color"`
	FontFamily  string `json:"font_family"`
	FontSize    string `json:"font_size"`
	Spacing     string `json:"spacing"`
}

//nolint:gochecknoglobals // Fixed enumerations
var (
	templateNames = map[string]bool{"classic": true, "modern": true, "professional": true, "creative": true}
	fontFamilies  = map[string]bool{"sans": true, "serif": true}
	fontSizes     = map[string]bool{"sm": true, "base": true, "lg": true}
	spacings      = map[string]bool{"compact": true, "normal": true, "relaxed": true}
	hexColor      = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// DefaultSettings returns the initial presentation settings.
func DefaultSettings() (s Settings) {
	s = Settings{
		Template:    "classic",
		AccentColor: "#0ea5e9",
		FontFamily:  "sans",
		FontSize:    "base",
		Spacing:     "normal",
	}
	return s
}

// WithDefaults fills empty settings with their default values.
func (s Settings) WithDefaults() (out Settings) {
	out = s
	def := DefaultSettings()
	if out.Template == "" {
		out.Template = def.Template
	}
	if out.AccentColor == "" {
		out.AccentColor = def.AccentColor
	}
	if out.FontFamily == "" {
		out.FontFamily = def.FontFamily
	}
	if out.FontSize == "" {
		out.FontSize = def.FontSize
	}
	if out.Spacing == "" {
		out.Spacing = def.Spacing
	}
	return out
}

// Validate checks every setting against its allowed values.
func (s Settings) Validate() (err error) {
	if !templateNames[s.Template] {
		err = errors.Errorf("invalid template '%s': must be classic, modern, professional or creative", s.Template)
		return err
	}
	if !hexColor.MatchString(s.AccentColor) {
		err = errors.Errorf("invalid accent color '%s': must be #rrggbb", s.AccentColor)
		return err
	}
	if !fontFamilies[s.FontFamily] {
		err = errors.Errorf("invalid font family '%s': must be sans or serif", s.FontFamily)
		return err
	}
	if !fontSizes[s.FontSize] {
		err = errors.Errorf("invalid font size '%s': must be sm, base or lg", s.FontSize)
		return err
	}
	if !spacings[s.Spacing] {
		err = errors.Errorf("invalid spacing '%s': must be compact, normal or relaxed", s.Spacing)
		return err
	}
	return err
}
