// Package ui renders metadata records for the terminal.
// Styling is applied only when the output is a terminal; otherwise the same
// layout is printed without escape sequences so it can be piped and grepped.
package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"vidmeta/internal/history"
	"vidmeta/internal/media"
)

// absentMark is printed for fields the page did not provide.
const absentMark = "-"

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of f, or 80 when it cannot be determined.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// FieldInfo describes one registered field for the fields listing.
type FieldInfo struct {
	Name    string
	Scope   string
	Aliases []string
	Note    string
}

// Printer writes styled output to a writer.
type Printer struct {
	out   io.Writer
	width int

	key    lipgloss.Style
	value  lipgloss.Style
	absent lipgloss.Style
	header lipgloss.Style
	note   lipgloss.Style
}

// NewPrinter returns a printer for w. When color is false all styles render
// as plain text. width bounds wrapped values; 0 disables wrapping.
func NewPrinter(w io.Writer, color bool, width int) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.EnvColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		out:    w,
		width:  width,
		key:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		value:  r.NewStyle(),
		absent: r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true).Underline(true),
		note:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("8")),
	}
}

// Stdout returns a printer for os.Stdout, styled when it is a terminal.
func Stdout() *Printer {
	tty := IsTerminal(os.Stdout)
	width := 0
	if tty {
		width = Width(os.Stdout)
	}
	return NewPrinter(os.Stdout, tty, width)
}

// Record prints rec as an aligned key/value list in record order.
func (p *Printer) Record(rec media.Record) {
	keyWidth := 0
	for _, k := range rec.Keys() {
		keyWidth = max(keyWidth, len(k))
	}
	for _, e := range rec.Entries() {
		p.pair(e.Key, e.Value, keyWidth)
	}
}

// Value prints a single field value on its own.
func (p *Printer) Value(v media.Value) {
	fmt.Fprintln(p.out, p.formatValue(v, 0))
}

// Fields prints the registered fields.
func (p *Printer) Fields(fields []FieldInfo) {
	nameWidth := 0
	for _, f := range fields {
		nameWidth = max(nameWidth, len(f.Name))
	}
	for _, f := range fields {
		line := p.key.Render(pad(f.Name, nameWidth)) + "  " + p.value.Render(f.Scope)
		if len(f.Aliases) > 0 {
			line += p.note.Render(" (alias: " + strings.Join(f.Aliases, ", ") + ")")
		}
		fmt.Fprintln(p.out, line)
		if f.Note != "" {
			fmt.Fprintln(p.out, strings.Repeat(" ", nameWidth+2)+p.note.Render(f.Note))
		}
	}
}

// Snapshots prints stored snapshots, one block per snapshot.
func (p *Printer) Snapshots(snaps []history.Snapshot) {
	for i, s := range snaps {
		if i > 0 {
			fmt.Fprintln(p.out)
		}
		title := fmt.Sprintf("%s  %s", s.FetchedAt.Local().Format("2006-01-02 15:04:05"), s.VideoID)
		fmt.Fprintln(p.out, p.header.Render(title))
		fmt.Fprintln(p.out, p.note.Render("snapshot "+s.ID))
		p.Record(s.Record)
	}
}

func (p *Printer) pair(key string, v media.Value, keyWidth int) {
	indent := keyWidth + 2
	fmt.Fprintln(p.out, p.key.Render(pad(key, keyWidth))+"  "+p.formatValue(v, indent))
}

// formatValue renders v. Continuation lines of multi-line strings are
// indented by indent spaces.
func (p *Printer) formatValue(v media.Value, indent int) string {
	switch v.Kind() {
	case media.KindAbsent:
		return p.absent.Render(absentMark)
	case media.KindInt:
		n, _ := v.Int()
		return p.value.Render(GroupDigits(n))
	case media.KindList:
		items, _ := v.List()
		return p.value.Render(strings.Join(items, ", "))
	default:
		s, _ := v.Str()
		lines := strings.Split(s, "\n")
		if p.width > indent+10 {
			lines = wrapLines(lines, p.width-indent)
		}
		for i := range lines {
			lines[i] = p.value.Render(lines[i])
		}
		return strings.Join(lines, "\n"+strings.Repeat(" ", indent))
	}
}

// GroupDigits formats n with comma thousands separators.
func GroupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// wrapLines breaks each line at word boundaries so no line exceeds width runes.
func wrapLines(lines []string, width int) []string {
	var out []string
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len([]rune(cur))+1+len([]rune(w)) > width {
				out = append(out, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		out = append(out, cur)
	}
	return out
}
