package status

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

func loaded(t control.AnimationType, ghost bool) control.Snapshot {
	return control.Snapshot{
		AnimationType: t,
		Speed:         1.4,
		GhostMode:     ghost,
		Asset:         asset.NewSceneAsset(),
		DisplayName:   "Specter",
	}
}

func TestSubtitle(t *testing.T) {
	assert.Equal(t, "Upload a 3D model to begin", Subtitle(control.Snapshot{Speed: 1, GhostMode: true}))
	assert.Equal(t, "Model loaded. Choose an animation type", Subtitle(loaded(control.AnimationNone, true)))
	assert.Equal(t, "Viewing in ghost mode with float animation", Subtitle(loaded(control.AnimationFloat, true)))
	assert.Equal(t, "Viewing in normal mode with rotate animation", Subtitle(loaded(control.AnimationRotate, false)))
}

func TestFields(t *testing.T) {
	fields := Fields(loaded(control.AnimationRotate, true))
	assert.Equal(t, []Field{
		{Label: "Model Status", Value: "Loaded", Active: true},
		{Label: "Name", Value: "Specter", Active: true},
		{Label: "Ghost Mode", Value: "Enabled", Active: true},
		{Label: "Animation", Value: "Rotate", Active: true},
		{Label: "Speed", Value: "1.4x", Active: true},
		{Label: "Voice", Value: "Idle"},
	}, fields)

	fields = Fields(control.Snapshot{Speed: 1, Listening: true})
	assert.Equal(t, []Field{
		{Label: "Model Status", Value: "No model loaded"},
		{Label: "Ghost Mode", Value: "Disabled"},
		{Label: "Animation", Value: "None"},
		{Label: "Voice", Value: "Listening for commands...", Active: true},
	}, fields)
}

func TestText(t *testing.T) {
	text := Text(control.Snapshot{Speed: 1})
	assert.Contains(t, text, "To get started:")
	assert.Contains(t, text, "No commands yet")

	snap := loaded(control.AnimationFloat, false)
	snap.History = []string{`Command: "float"`, "✓ Set animation: Float"}
	text = Text(snap)
	assert.NotContains(t, text, "To get started:")
	assert.Contains(t, text, `  Command: "float"`)
}

func TestPrinterSkipsUnchangedPanels(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithProfile(termenv.Ascii), WithHelp(false))

	snap := control.Snapshot{Speed: 1}
	assert.True(t, p.Print(snap))
	assert.False(t, p.Print(snap))
	snap.GhostMode = true
	assert.True(t, p.Print(snap))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Ghost Status"))
	assert.Contains(t, out, "Ghost Mode: Enabled")
	assert.NotContains(t, out, "Try saying:")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinterHelpAndNotice(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithProfile(termenv.Ascii))
	p.Print(control.Snapshot{Speed: 1})
	p.Notice("Please provide a supported file (.glb)")

	out := buf.String()
	assert.Contains(t, out, `"reset" - to restore defaults`)
	assert.Contains(t, out, "Please provide a supported file (.glb)")
}
