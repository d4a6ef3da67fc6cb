// Package ghost applies the translucent ghost rendering mode to every material of a scene asset.
package ghost

import (
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

// Apply sets every material of a to the ghost blend state when enabled, or back to opaque.
// Applying the same state twice leaves identical values. A nil or disposed asset is a no-op.
//
// Parameters:
//   - a: the asset to mutate
//   - enabled: the ghost flag
//
// Returns:
//   - int: the number of materials updated
func Apply(a asset.SceneAsset, enabled bool) int {
	return ApplyOpacity(a, enabled, material.GhostOpacity)
}

// ApplyOpacity is Apply with a configurable ghost opacity.
func ApplyOpacity(a asset.SceneAsset, enabled bool, opacity float32) int {
	if a == nil || !a.Live() {
		return 0
	}
	n := 0
	for _, m := range a.Materials() {
		if enabled {
			m.SetBlend(true, opacity)
		} else {
			m.SetBlend(false, material.OpaqueOpacity)
		}
		n++
	}
	return n
}

// Effect keeps the loaded asset's materials in step with the ghost flag of a control state.
type Effect struct {
	opacity     float32
	unsubscribe func()
}

// Attach subscribes an Effect to s. The current state is applied immediately, and again
// whenever the ghost flag or the loaded asset changes.
//
// Parameters:
//   - s: the control state to observe
//   - opacity: the ghost opacity; values outside (0, 1] fall back to material.GhostOpacity
//
// Returns:
//   - *Effect: the attached effect; call Detach to stop observing
func Attach(s control.State, opacity float32) *Effect {
	if opacity <= 0 || opacity > 1 {
		opacity = material.GhostOpacity
	}
	e := &Effect{opacity: opacity}
	snap := s.Snapshot()
	ApplyOpacity(snap.Asset, snap.GhostMode, opacity)

	e.unsubscribe = s.Subscribe(func(change control.Change, snap control.Snapshot) {
		if !change.Has(control.ChangeGhost) && !change.Has(control.ChangeAsset) {
			return
		}
		n := ApplyOpacity(snap.Asset, snap.GhostMode, e.opacity)
		logger.Log.WithField("ghost", snap.GhostMode).WithField("materials", n).Debug("ghost state applied")
	})
	return e
}

// Detach stops observing. Safe to call more than once.
func (e *Effect) Detach() {
	if e != nil && e.unsubscribe != nil {
		e.unsubscribe()
	}
}
