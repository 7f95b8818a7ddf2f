package feedback

import (
	"strings"
	"sync"
)

const bullet = "- "

// Preferences is an append-only log of learned preference sentences.
// Duplicates are kept.
type Preferences struct {
	mu    sync.Mutex
	lines []string
}

// NewPreferences creates an empty log.
func NewPreferences() (p *Preferences) {
	p = &Preferences{}
	return p
}

// ParsePreferences rebuilds a log from the form produced by String.
func ParsePreferences(serialized string) (p *Preferences) {
	p = NewPreferences()
	for _, line := range strings.Split(serialized, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, bullet)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.lines = append(p.lines, line)
	}
	return p
}

// Append adds one preference sentence to the end of the log.
func (p *Preferences) Append(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lines = append(p.lines, line)
}

// String renders the log as newline-joined bullet lines.
func (p *Preferences) String() (s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.lines) == 0 {
		return s
	}
	s = bullet + strings.Join(p.lines, "\n"+bullet)
	return s
}

// Lines returns a copy of the logged sentences.
func (p *Preferences) Lines() (lines []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines = append([]string(nil), p.lines...)
	return lines
}

// Len returns the number of logged sentences.
func (p *Preferences) Len() (n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n = len(p.lines)
	return n
}

// Clear empties the log.
func (p *Preferences) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lines = nil
}
