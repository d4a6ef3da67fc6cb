// Package status derives the viewer's status and help text from the control state and prints
// it to the terminal.
package status

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

// Subtitle is the one-line summary shown under the viewer title.
//
// Parameters:
//   - snap: the control state
//
// Returns:
//   - string: the subtitle
func Subtitle(snap control.Snapshot) string {
	switch {
	case !snap.HasAsset():
		return "Upload a 3D model to begin"
	case snap.AnimationType == control.AnimationNone:
		return "Model loaded. Choose an animation type"
	}
	mode := "normal"
	if snap.GhostMode {
		mode = "ghost"
	}
	return fmt.Sprintf("Viewing in %s mode with %s animation", mode, snap.AnimationType)
}

// Field is one labelled row of the status panel.
type Field struct {
	Label  string
	Value  string
	Active bool
}

// Fields returns the status panel rows. Name appears only with a loaded model and Speed only
// while animating.
//
// Parameters:
//   - snap: the control state
//
// Returns:
//   - []Field: the rows in display order
func Fields(snap control.Snapshot) []Field {
	fields := make([]Field, 0, 6)
	if snap.HasAsset() {
		fields = append(fields, Field{Label: "Model Status", Value: "Loaded", Active: true})
		if snap.DisplayName != "" {
			fields = append(fields, Field{Label: "Name", Value: snap.DisplayName, Active: true})
		}
	} else {
		fields = append(fields, Field{Label: "Model Status", Value: "No model loaded"})
	}

	ghost := "Disabled"
	if snap.GhostMode {
		ghost = "Enabled"
	}
	fields = append(fields,
		Field{Label: "Ghost Mode", Value: ghost, Active: snap.GhostMode},
		Field{Label: "Animation", Value: snap.AnimationType.Label(), Active: snap.AnimationType != control.AnimationNone},
	)
	if snap.AnimationType != control.AnimationNone {
		fields = append(fields, Field{Label: "Speed", Value: fmt.Sprintf("%.1fx", snap.Speed), Active: true})
	}

	voice := "Idle"
	if snap.Listening {
		voice = "Listening for commands..."
	}
	fields = append(fields, Field{Label: "Voice", Value: voice, Active: snap.Listening})
	return fields
}

// GettingStarted lists the first steps, shown while no model is loaded.
var GettingStarted = []string{
	"Drop a GLB 3D model file onto the window or into the drop folder",
	"Choose animation type and speed",
	"Toggle ghost mode for ethereal effect",
	"Try voice commands for hands-free control",
}

// VoiceHelp lists the spoken command grammar.
var VoiceHelp = []string{
	`"float" / "rotate" / "stop"`,
	`"faster" / "slower" / "normal speed"`,
	`"ghost on" / "ghost off" / "toggle ghost"`,
	`"reset" - to restore defaults`,
}

// KeyHelp lists the keyboard controls of the window.
var KeyHelp = []string{
	"F float   R rotate   N stop",
	"- slower   = faster   1 normal speed",
	"G toggle ghost   V voice   Space reset cameras",
	"drag to orbit   scroll to zoom   Esc quit",
}

// Text renders the whole panel as plain text.
//
// Parameters:
//   - snap: the control state
//
// Returns:
//   - string: the panel
func Text(snap control.Snapshot) string {
	var b strings.Builder
	b.WriteString(Subtitle(snap))
	b.WriteByte('\n')
	for _, f := range Fields(snap) {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	if !snap.HasAsset() {
		b.WriteString("To get started:\n")
		for i, s := range GettingStarted {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}
	b.WriteString("Command History\n")
	if len(snap.History) == 0 {
		b.WriteString("No commands yet\n")
	}
	for _, h := range snap.History {
		fmt.Fprintf(&b, "  %s\n", h)
	}
	return b.String()
}
