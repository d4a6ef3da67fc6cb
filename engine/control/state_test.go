package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
)

func TestNewStateDefaults(t *testing.T) {
	snap := NewState().Snapshot()
	assert.Equal(t, AnimationNone, snap.AnimationType)
	assert.Equal(t, 1.0, snap.Speed)
	assert.False(t, snap.GhostMode)
	assert.False(t, snap.HasAsset())
	assert.Empty(t, snap.History)

	s := NewState(WithGhostMode(true), WithSpeed(7), WithAnimationType(AnimationRotate))
	assert.True(t, s.GhostMode())
	assert.Equal(t, MaxSpeed, s.Speed())
	assert.Equal(t, AnimationRotate, s.AnimationType())
}

func TestSpeedAlwaysClamped(t *testing.T) {
	s := NewState()
	for _, v := range []float64{-10, 0, 0.49, 0.5, 1.3, 2.0, 2.01, 100} {
		s.SetSpeed(v)
		assert.GreaterOrEqual(t, s.Speed(), MinSpeed)
		assert.LessOrEqual(t, s.Speed(), MaxSpeed)
	}
}

func TestObserversSeeChangesOnly(t *testing.T) {
	s := NewState()
	var changes []Change
	var last Snapshot
	unsubscribe := s.Subscribe(func(c Change, snap Snapshot) {
		changes = append(changes, c)
		last = snap
	})

	s.SetGhostMode(false)
	assert.Empty(t, changes)

	s.SetGhostMode(true)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Has(ChangeGhost))
	assert.True(t, last.GhostMode)

	assert.False(t, s.ToggleGhostMode())

	rotate := AnimationRotate
	speed := 1.2
	c := s.Apply(Update{AnimationType: &rotate, Speed: &speed, History: []string{"x"}})
	assert.True(t, c.Has(ChangeAnimation|ChangeSpeed|ChangeHistory))
	assert.False(t, c.Has(ChangeGhost))
	assert.Len(t, changes, 3)

	unsubscribe()
	unsubscribe()
	s.SetGhostMode(true)
	assert.Len(t, changes, 3)
}

func TestSetAssetDisplayName(t *testing.T) {
	s := NewState()
	a := asset.NewSceneAsset(asset.WithName("ghost.glb"))
	s.SetAsset(a, "")
	snap := s.Snapshot()
	assert.Equal(t, DefaultDisplayName, snap.DisplayName)
	assert.Same(t, a, snap.Asset)

	s.SetAsset(a, "Ghost")
	assert.Equal(t, "Ghost", s.Snapshot().DisplayName)

	s.SetAsset(nil, "ignored")
	assert.Nil(t, s.Asset())
	assert.Empty(t, s.Snapshot().DisplayName)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewState()
	s.Record("one")
	snap := s.Snapshot()
	snap.History[0] = "changed"
	assert.Equal(t, []string{"one"}, s.Snapshot().History)
}

func TestParseAnimationType(t *testing.T) {
	for _, at := range []AnimationType{AnimationNone, AnimationFloat, AnimationRotate} {
		parsed, err := ParseAnimationType(at.String())
		require.NoError(t, err)
		assert.Equal(t, at, parsed)
	}
	got, err := ParseAnimationType(" Rotate ")
	require.NoError(t, err)
	assert.Equal(t, AnimationRotate, got)
	assert.Equal(t, "Rotate", got.Label())

	_, err = ParseAnimationType("spin")
	assert.Error(t, err)
}
