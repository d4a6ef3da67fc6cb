package voice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

func TestRotateFaster(t *testing.T) {
	s := control.NewState()
	res := NewInterpreter().Execute(s, "Rotate Faster")

	snap := s.Snapshot()
	assert.Equal(t, control.AnimationRotate, snap.AnimationType)
	assert.Equal(t, 1.2, snap.Speed)
	assert.False(t, snap.GhostMode)
	assert.Equal(t, []string{
		`Command: "rotate faster"`,
		"✓ Set animation: Rotate",
		"✓ Increased speed to 1.2x",
	}, snap.History)
	assert.Equal(t, []string{"animation", "speed"}, res.Groups)
}

func TestResetAlwaysWins(t *testing.T) {
	phrases := []string{
		"reset",
		"float faster ghost on reset",
		"rotate and enable ghost then default",
		"reset speed",
		"DEFAULT please",
	}
	for _, p := range phrases {
		t.Run(p, func(t *testing.T) {
			s := control.NewState(control.WithGhostMode(true), control.WithSpeed(1.8), control.WithAnimationType(control.AnimationFloat))
			res := NewInterpreter().Execute(s, p)
			snap := s.Snapshot()
			assert.Equal(t, control.AnimationNone, snap.AnimationType)
			assert.Equal(t, 1.0, snap.Speed)
			assert.False(t, snap.GhostMode)
			assert.Equal(t, "✓ Reset to default settings", res.Confirmations[len(res.Confirmations)-1])
		})
	}
}

func TestSpeedSaturates(t *testing.T) {
	in := NewInterpreter()
	s := control.NewState()
	for i := 0; i < 12; i++ {
		in.Execute(s, "faster")
		assert.LessOrEqual(t, s.Speed(), control.MaxSpeed)
	}
	assert.Equal(t, 2.0, s.Speed())
	assert.Equal(t, "✓ Increased speed to 2.0x", s.Snapshot().History[1])

	for i := 0; i < 12; i++ {
		in.Execute(s, "slower")
		assert.GreaterOrEqual(t, s.Speed(), control.MinSpeed)
	}
	assert.Equal(t, 0.5, s.Speed())

	in.Execute(s, "normal speed")
	assert.Equal(t, 1.0, s.Speed())
}

func TestSpeedSequenceHasNoDrift(t *testing.T) {
	in := NewInterpreter()
	s := control.NewState()
	for _, cmd := range []string{"faster", "faster", "slower", "faster", "slower", "slower"} {
		in.Execute(s, cmd)
	}
	assert.Equal(t, 1.0, s.Speed())
}

func TestFirstMatchInGroupWins(t *testing.T) {
	in := NewInterpreter()
	res := in.Interpret("float or rotate, faster or slower", control.Snapshot{Speed: 1})
	require.NotNil(t, res.AnimationType)
	assert.Equal(t, control.AnimationFloat, *res.AnimationType)
	assert.Equal(t, 1.2, *res.Speed)
	assert.Nil(t, res.GhostMode)

	res = in.Interpret("stop", control.Snapshot{AnimationType: control.AnimationRotate, Speed: 1})
	assert.Equal(t, control.AnimationNone, *res.AnimationType)
	assert.Equal(t, []string{"✓ Stopped animation"}, res.Confirmations)
}

func TestGhostCommands(t *testing.T) {
	in := NewInterpreter()
	s := control.NewState()

	in.Execute(s, "ghost on")
	assert.True(t, s.GhostMode())
	in.Execute(s, "disable ghost")
	assert.False(t, s.GhostMode())
	in.Execute(s, "toggle ghost")
	assert.True(t, s.GhostMode())
	in.Execute(s, "toggle ghost")
	assert.False(t, s.GhostMode())
}

func TestUnmatchedOnlyRecordsCommand(t *testing.T) {
	s := control.NewState(control.WithGhostMode(true))
	before := s.Snapshot()
	res := NewInterpreter().Execute(s, "  hello there  ")
	after := s.Snapshot()

	assert.False(t, res.Matched())
	assert.Equal(t, before.AnimationType, after.AnimationType)
	assert.Equal(t, before.Speed, after.Speed)
	assert.Equal(t, before.GhostMode, after.GhostMode)
	assert.Equal(t, []string{`Command: "hello there"`}, after.History)
}

func TestHistoryKeepsFiveMostRecent(t *testing.T) {
	in := NewInterpreter()
	s := control.NewState()
	in.Execute(s, "float")
	in.Execute(s, "rotate faster ghost on")
	h := s.Snapshot().History
	require.Len(t, h, control.HistoryCapacity)
	assert.Equal(t, []string{
		`Command: "rotate faster ghost on"`,
		"✓ Set animation: Rotate",
		"✓ Increased speed to 1.2x",
		"✓ Ghost mode enabled",
		`Command: "float"`,
	}, h)
}

func TestEveryTriggerPhraseFires(t *testing.T) {
	triggers := map[string]string{
		"float": "animation", "rotate": "animation", "stop": "animation", "none": "animation",
		"faster": "speed", "slower": "speed", "normal speed": "speed",
		"ghost on": "ghost", "enable ghost": "ghost", "ghost off": "ghost", "disable ghost": "ghost", "toggle ghost": "ghost",
		"default": "reset",
	}
	in := NewInterpreter()
	for phrase, group := range triggers {
		res := in.Interpret(strings.ToUpper(phrase), control.Snapshot{Speed: 1})
		assert.Contains(t, res.Groups, group, phrase)
	}
}
