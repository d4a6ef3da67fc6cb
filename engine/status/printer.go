package status

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

type printer struct {
	mu      sync.Mutex
	profile *termenv.Profile
	out     *termenv.Output
	accent  termenv.Color
	muted   termenv.Color
	help    bool
	last    string
}

// Printer writes the status panel to a terminal, styled with the color profile the terminal supports.
type Printer interface {
	// Print writes the panel if it differs from the last one written.
	//
	// Parameters:
	//   - snap: the control state
	//
	// Returns:
	//   - bool: true if anything was written
	Print(snap control.Snapshot) bool

	// Notice writes a one-off message such as an inline error.
	//
	// Parameters:
	//   - msg: the message
	Notice(msg string)
}

var _ Printer = &printer{}

// NewPrinter creates a Printer writing to w.
//
// Parameters:
//   - w: the terminal or any writer
//   - options: functional options to configure the printer
//
// Returns:
//   - Printer: the printer
func NewPrinter(w io.Writer, options ...PrinterBuilderOption) Printer {
	p := &printer{help: true}
	for _, opt := range options {
		opt(p)
	}
	if p.profile != nil {
		p.out = termenv.NewOutput(w, termenv.WithProfile(*p.profile))
	} else {
		p.out = termenv.NewOutput(w)
	}
	p.accent = p.out.Color("#a5d2ff")
	p.muted = p.out.Color("#7f8a99")
	return p
}

func (p *printer) render(snap control.Snapshot) string {
	var b strings.Builder
	line := func(st termenv.Style) {
		b.WriteString(st.String())
		b.WriteByte('\n')
	}

	line(p.out.String("Ghost Status").Bold().Foreground(p.accent))
	line(p.out.String(Subtitle(snap)).Italic())
	for _, f := range Fields(snap) {
		color := p.muted
		if f.Active {
			color = p.accent
		}
		fmt.Fprintf(&b, "  %s %s\n", p.out.String(f.Label+":").Bold(), p.out.String(f.Value).Foreground(color))
	}
	if !snap.HasAsset() {
		line(p.out.String("To get started:").Faint())
		for i, s := range GettingStarted {
			line(p.out.String(fmt.Sprintf("  %d. %s", i+1, s)).Faint())
		}
	}

	line(p.out.String("Command History").Bold())
	if len(snap.History) == 0 {
		line(p.out.String("  No commands yet").Faint().Italic())
	}
	for _, h := range snap.History {
		b.WriteString("  " + h + "\n")
	}

	if p.help {
		line(p.out.String("Try saying:").Faint())
		for _, s := range VoiceHelp {
			line(p.out.String("  " + s).Faint())
		}
		line(p.out.String("Keys:").Faint())
		for _, s := range KeyHelp {
			line(p.out.String("  " + s).Faint())
		}
	}
	return b.String()
}

func (p *printer) Print(snap control.Snapshot) bool {
	text := p.render(snap)

	p.mu.Lock()
	defer p.mu.Unlock()
	if text == p.last {
		return false
	}
	p.last = text
	fmt.Fprint(p.out, "\n"+text)
	return true
}

func (p *printer) Notice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.out.String(msg).Foreground(p.out.Color("#ff8f8f")).String())
}
