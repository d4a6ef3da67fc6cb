package voice

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

// speedStep is the change applied by "faster" and "slower".
const speedStep = 0.2

// working is the interpreter's scratch copy of the fields a command can touch.
type working struct {
	animation control.AnimationType
	speed     float64
	ghost     bool

	setAnimation, setSpeed, setGhost bool
}

// rule is one trigger in a group. apply mutates the working copy and returns the confirmation.
type rule struct {
	matches func(text string) bool
	apply   func(w *working) string
}

// ruleGroup fires at most one of its rules: the first that matches.
type ruleGroup struct {
	name  string
	rules []rule
}

func containsAny(words ...string) func(string) bool {
	return func(text string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

func setAnimation(t control.AnimationType, msg string) func(*working) string {
	return func(w *working) string {
		w.animation, w.setAnimation = t, true
		return msg
	}
}

func setGhost(enabled bool, msg string) func(*working) string {
	return func(w *working) string {
		w.ghost, w.setGhost = enabled, true
		return msg
	}
}

// adjustSpeed clamps then rounds to one decimal so repeated steps never drift.
func adjustSpeed(delta float64, verb string) func(*working) string {
	return func(w *working) string {
		w.speed = common.RoundTo(control.ClampSpeed(w.speed+delta), 1)
		w.setSpeed = true
		return fmt.Sprintf("✓ %s speed to %.1fx", verb, w.speed)
	}
}

// grammar is evaluated top to bottom; every group may fire. The reset group runs last so it
// overrides the fields the earlier groups set.
var grammar = []ruleGroup{
	{
		name: "animation",
		rules: []rule{
			{containsAny("float"), setAnimation(control.AnimationFloat, "✓ Set animation: Float")},
			{containsAny("rotate"), setAnimation(control.AnimationRotate, "✓ Set animation: Rotate")},
			{containsAny("stop", "none"), setAnimation(control.AnimationNone, "✓ Stopped animation")},
		},
	},
	{
		name: "speed",
		rules: []rule{
			{containsAny("faster"), adjustSpeed(speedStep, "Increased")},
			{containsAny("slower"), adjustSpeed(-speedStep, "Decreased")},
			{containsAny("normal speed", "reset speed"), func(w *working) string {
				w.speed, w.setSpeed = control.DefaultSpeed, true
				return "✓ Reset speed to 1.0x"
			}},
		},
	},
	{
		name: "ghost",
		rules: []rule{
			{containsAny("ghost on", "enable ghost"), setGhost(true, "✓ Ghost mode enabled")},
			{containsAny("ghost off", "disable ghost"), setGhost(false, "✓ Ghost mode disabled")},
			{containsAny("toggle ghost"), func(w *working) string {
				w.ghost, w.setGhost = !w.ghost, true
				return "✓ Toggled ghost mode"
			}},
		},
	},
	{
		name: "reset",
		rules: []rule{
			{containsAny("reset", "default"), func(w *working) string {
				w.animation, w.setAnimation = control.AnimationNone, true
				w.speed, w.setSpeed = control.DefaultSpeed, true
				w.ghost, w.setGhost = false, true
				return "✓ Reset to default settings"
			}},
		},
	},
}
