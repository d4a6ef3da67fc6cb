// Package voice turns recognized speech into control state changes and manages the
// speech recognition sessions that deliver it.
package voice

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

// Result is the outcome of interpreting one transcript. Pointer fields are nil when no rule
// touched them.
type Result struct {
	Transcript    string
	AnimationType *control.AnimationType
	Speed         *float64
	GhostMode     *bool
	Confirmations []string
	// Groups names the rule groups that fired, in evaluation order.
	Groups []string
}

// Matched reports whether any rule fired.
func (r Result) Matched() bool {
	return len(r.Confirmations) > 0
}

// Entries returns the history batch: the raw command first, then each confirmation in rule order.
func (r Result) Entries() []string {
	return append([]string{`Command: "` + r.Transcript + `"`}, r.Confirmations...)
}

// Update converts the result into a control state mutation including its history entries.
func (r Result) Update() control.Update {
	return control.Update{
		AnimationType: r.AnimationType,
		Speed:         r.Speed,
		GhostMode:     r.GhostMode,
		History:       r.Entries(),
	}
}

// Interpreter maps transcripts onto the ordered rule table. It is safe for concurrent use.
type Interpreter struct {
	mu    sync.Mutex
	lower cases.Caser
}

// NewInterpreter creates an Interpreter.
//
// Returns:
//   - *Interpreter: the interpreter
func NewInterpreter() *Interpreter {
	return &Interpreter{lower: cases.Lower(language.Und)}
}

// Normalize lower-cases and trims a transcript.
//
// Parameters:
//   - text: the raw transcript
//
// Returns:
//   - string: the normalized transcript
func (in *Interpreter) Normalize(text string) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lower.String(strings.TrimSpace(text))
}

// Interpret evaluates every rule group against the transcript, starting from snap.
// It never fails: a transcript matching nothing yields a Result with no effects.
//
// Parameters:
//   - text: the raw transcript
//   - snap: the control state the effects are computed from
//
// Returns:
//   - Result: the effects and confirmations
func (in *Interpreter) Interpret(text string, snap control.Snapshot) Result {
	normalized := in.Normalize(text)
	w := working{
		animation: snap.AnimationType,
		speed:     snap.Speed,
		ghost:     snap.GhostMode,
	}

	res := Result{Transcript: normalized}
	for _, g := range grammar {
		for _, r := range g.rules {
			if r.matches(normalized) {
				res.Confirmations = append(res.Confirmations, r.apply(&w))
				res.Groups = append(res.Groups, g.name)
				break
			}
		}
	}

	if w.setAnimation {
		res.AnimationType = &w.animation
	}
	if w.setSpeed {
		res.Speed = &w.speed
	}
	if w.setGhost {
		res.GhostMode = &w.ghost
	}
	return res
}

// Execute interprets text against the current state and commits the effects and history
// in one atomic update.
//
// Parameters:
//   - s: the control state to read and mutate
//   - text: the raw transcript
//
// Returns:
//   - Result: the interpretation that was applied
func (in *Interpreter) Execute(s control.State, text string) Result {
	res := in.Interpret(text, s.Snapshot())
	s.Apply(res.Update())

	entry := logger.Log.WithFields(logrus.Fields{"transcript": res.Transcript, "rules": res.Groups})
	if res.Matched() {
		entry.Info("voice command applied")
	} else {
		entry.Info("voice command not recognized")
	}
	return res
}
