package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/animator"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/camera"
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

func newScheduler(clk clock.Clock) (animator.Scheduler, asset.SceneAsset) {
	a := asset.NewSceneAsset(asset.WithName("ghost.glb"))
	s := control.NewState(control.WithAnimationType(control.AnimationRotate))
	return animator.NewScheduler(clk, s, a), a
}

func TestAttachAndUnmount(t *testing.T) {
	clk := clock.NewClock()
	sched, a := newScheduler(clk)

	v := NewViewport(3, WithName("Top"), WithCamera(camera.NewCamera(camera.WithPosition(0, 5, 0))))
	assert.Equal(t, 3, v.ID())
	assert.Equal(t, "Top", v.Name())
	assert.Nil(t, v.Asset())

	v.Attach(sched)
	require.True(t, v.Binding().Active())
	assert.Same(t, a, v.Asset())
	assert.Equal(t, 1, sched.Bindings())

	clk.Advance(16 * time.Millisecond)
	rotated := a.RotationY()
	assert.NotZero(t, rotated)

	v.Unmount()
	v.Unmount()
	assert.False(t, v.Mounted())
	assert.Zero(t, sched.Bindings())
	assert.Equal(t, animator.StatusIdle, sched.Status())

	clk.Advance(32 * time.Millisecond)
	assert.Equal(t, rotated, a.RotationY())

	v.Attach(sched)
	assert.Nil(t, v.Binding())
}

func TestReattachMovesBinding(t *testing.T) {
	clk := clock.NewClock()
	oldSched, _ := newScheduler(clk)
	newSched, newAsset := newScheduler(clk)

	v := NewViewport(0)
	v.Attach(oldSched)
	first := v.Binding()
	v.Attach(newSched)

	assert.False(t, first.Active())
	assert.Zero(t, oldSched.Bindings())
	assert.Equal(t, 1, newSched.Bindings())
	assert.Same(t, newAsset, v.Asset())
}

func TestSetRectUpdatesAspect(t *testing.T) {
	v := NewViewport(0)
	v.SetRect(common.QuadrantRects(4)[1], 1600, 900)
	assert.Equal(t, common.Rect{X: 0.5, Y: 0, W: 0.5, H: 0.5}, v.Rect())
	assert.InDelta(t, 16.0/9.0, v.Camera().Aspect(), 1e-5)
}
