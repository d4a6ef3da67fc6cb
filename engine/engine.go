package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/animator"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/camera"
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
	"github.com/Carmen-Shannon/oxy-ghost/engine/config"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/ghost"
	"github.com/Carmen-Shannon/oxy-ghost/engine/loader"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
	"github.com/Carmen-Shannon/oxy-ghost/engine/particle"
	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ghost/engine/viewport"
	"github.com/Carmen-Shannon/oxy-ghost/engine/voice"
	"github.com/Carmen-Shannon/oxy-ghost/engine/window"
)

var errEngineClosed = errors.New("engine: closed")

// engine implements the Engine interface.
// Discrete events are queued from any goroutine and drained by Tick, so every control state
// mutation happens on the tick goroutine.
type engine struct {
	mu     sync.Mutex
	events []func()
	closed bool

	tickRateChannel chan time.Duration
	engineTickRate  time.Duration
	running         atomic.Bool
	wg              sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once
	closeOnce   sync.Once

	cfg         config.Config
	window      window.Window
	renderer    renderer.Renderer
	loader      loader.Loader
	recognizer  voice.Recognizer
	interpreter *voice.Interpreter
	clock       clock.Clock
	state       control.State
	ghost       *ghost.Effect
	particles   particle.Field
	scheduler   animator.Scheduler

	viewports    []viewport.Viewport
	nextViewport int
	width        int
	height       int

	listenCtx         context.Context
	listenCancel      context.CancelFunc
	session           *voice.Session
	listenGen         uint64
	loadGen           uint64
	installedGen      uint64
	unsupportedLogged bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderCallback func(now time.Duration)
}

// Engine owns the shared control state and everything that observes it: the loaded asset,
// its animation scheduler, the ghost effect, the particle field, the viewports and voice input.
type Engine interface {
	// Tick drains queued events, advances the frame clock to now, renders a frame and ticks the profiler.
	//
	// Parameters:
	//   - now: time since the engine started
	Tick(now time.Duration)

	// Run drives Tick at the configured tick rate until ctx is done, Quit is called or the window closes.
	// With a window the tick loop runs on its own goroutine and Run pumps window messages on the caller's.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop
	Run(ctx context.Context)

	// Quit signals the run loop to stop. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close stops listening, unmounts every viewport, stops the particle field and disposes the
	// loaded asset. Safe to call more than once.
	Close()

	// SetTickRate sets the tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderCallback registers a function called after each tick's frame has been drawn.
	//
	// Parameters:
	//   - callback: receives the tick time
	SetRenderCallback(callback func(now time.Duration))

	// LoadAsset starts loading src. A name without the scene extension is rejected here with
	// loader.ErrInvalidFormat and nothing else happens. Otherwise the file is parsed in the
	// background and, on a later tick, replaces the current asset. A failed load leaves the current
	// asset in place.
	//
	// Parameters:
	//   - src: the scene source
	//   - displayName: the name shown for the asset; empty falls back to "Uploaded Model"
	//
	// Returns:
	//   - error: loader.ErrInvalidFormat if the name is rejected
	LoadAsset(src loader.Source, displayName string) error

	// MountViewport adds a viewport with its own camera and binds it to the current asset.
	// Viewports are laid out in a two-column grid in mount order.
	//
	// Parameters:
	//   - name: the viewport name
	//   - cameraPos: the camera's home position
	//
	// Returns:
	//   - viewport.Viewport: the mounted viewport
	MountViewport(name string, cameraPos mgl32.Vec3) viewport.Viewport

	// UnmountViewport removes a viewport and cancels its animation binding.
	//
	// Parameters:
	//   - id: the viewport id
	//
	// Returns:
	//   - bool: false if no viewport has that id
	UnmountViewport(id int) bool

	// Viewports returns the mounted viewports in layout order.
	Viewports() []viewport.Viewport

	// ViewportAt returns the viewport under a framebuffer position.
	//
	// Parameters:
	//   - x: horizontal position in pixels
	//   - y: vertical position in pixels
	//
	// Returns:
	//   - viewport.Viewport: the viewport, or nil if none covers the point
	ViewportAt(x, y float32) viewport.Viewport

	// StartListening opens a voice session. A session that is already open is stopped first.
	// The transcript, if any, is interpreted on a later tick.
	//
	// Returns:
	//   - *voice.Session: the new session
	//   - error: voice.ErrUnsupportedCapability if recognition cannot run here
	StartListening() (*voice.Session, error)

	// StopListening stops s. A stopped session never changes the control state.
	//
	// Parameters:
	//   - s: the session to stop; nil is ignored
	StopListening(s *voice.Session)

	// ToggleListening stops the open session, or starts one if none is open.
	//
	// Returns:
	//   - error: voice.ErrUnsupportedCapability if recognition cannot run here
	ToggleListening() error

	// Listening reports whether a voice session is open.
	Listening() bool

	// SetAnimationType queues an animation type change.
	SetAnimationType(t control.AnimationType)

	// SetAnimationSpeed queues an animation speed change; the value is clamped.
	SetAnimationSpeed(speed float64)

	// AdjustAnimationSpeed queues a relative speed change. The delta is added to the speed current
	// when the event runs, then clamped and rounded to one decimal place.
	AdjustAnimationSpeed(delta float64)

	// SetGhostMode queues a ghost mode change.
	SetGhostMode(enabled bool)

	// ToggleGhostMode queues a ghost mode flip.
	ToggleGhostMode()

	// Interpret queues a transcript for the command interpreter, as if it had been heard.
	Interpret(text string)

	// Resize queues a framebuffer size change for the renderer, the viewports and the particle field.
	Resize(width, height int)

	// Snapshot returns a copy of the control state.
	Snapshot() control.Snapshot

	// State returns the shared control state. Mutate it only from the tick goroutine.
	State() control.State

	// Asset returns the loaded asset, or nil.
	Asset() asset.SceneAsset

	// Particles returns a copy of the particle field.
	Particles() []particle.Particle

	// Profiler returns the engine's profiler.
	Profiler() *profiler.Profiler
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Without WithConfig the defaults of config.Default are used. Viewports are not mounted;
// call MountViewport for each one.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		cfg:             config.Default(),
		profiler:        profiler.NewProfiler(),
		interpreter:     voice.NewInterpreter(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.engineTickRate <= 0 {
		e.engineTickRate = tickInterval(e.cfg.TickRate)
	}
	if e.clock == nil {
		e.clock = clock.NewClock()
	}
	if e.recognizer == nil {
		e.recognizer = voice.Unsupported()
	}
	if e.loader == nil {
		opts := []loader.LoaderBuilderOption{loader.WithProfiler(e.profiler)}
		if e.renderer != nil {
			opts = append(opts, loader.WithUploader(e.renderer))
		}
		e.loader = loader.NewLoader(loader.BackendTypeGLTF, opts...)
	}
	if e.width <= 0 || e.height <= 0 {
		e.width, e.height = e.cfg.Window.Width, e.cfg.Window.Height
		if e.window != nil {
			e.width, e.height = e.window.Width(), e.window.Height()
		}
	}

	if e.state == nil {
		e.state = control.NewState(
			control.WithGhostMode(e.cfg.Ghost.InitialMode),
			control.WithSpeed(e.cfg.Animation.InitialSpeed),
		)
	}
	e.ghost = ghost.Attach(e.state, e.cfg.Ghost.Opacity)

	e.particles = particle.NewField(e.clock, float32(e.width), float32(e.height), particle.WithCount(e.cfg.Particles.Count))
	e.particles.Start()

	e.listenCtx, e.listenCancel = context.WithCancel(context.Background())

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
	}

	return e
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

// post queues ev for the next Tick. Events posted after Close are dropped.
func (e *engine) post(ev func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.events = append(e.events, ev)
}

func (e *engine) drain() []func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	events := e.events
	e.events = nil
	return events
}

func (e *engine) Tick(now time.Duration) {
	for _, ev := range e.drain() {
		ev()
	}

	e.clock.Advance(now)

	if e.renderer != nil {
		if _, err := e.renderer.RenderFrame(e.frame()); err != nil {
			logger.Log.WithError(err).Debug("frame skipped")
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(now)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
}

// frame collects what the renderer draws this tick.
func (e *engine) frame() renderer.Frame {
	particles := e.particles.Particles()
	opacities := e.particles.Opacities()
	sprites := make([]renderer.Sprite, len(particles))
	for i, p := range particles {
		sprites[i] = renderer.Sprite{X: p.X, Y: p.Y, Size: p.Size, Opacity: opacities[i]}
	}
	return renderer.Frame{Viewports: e.Viewports(), Sprites: sprites}
}

func (e *engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)

	if e.window == nil {
		e.wg.Add(1)
		e.handleEngine(ctx)
		return
	}

	e.wg.Add(2)
	go e.handleEngine(ctx)
	go e.handleWindowClose()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

// handleEngine runs the fixed-rate tick loop. It listens for dynamic rate changes via
// tickRateChannel and recovers from panics to avoid crashing the process.
func (e *engine) handleEngine(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithField("panic", r).Error("tick goroutine recovered from panic")
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			e.signalQuit()
			return
		case <-e.quitChannel:
			return
		case <-ticker.C:
			e.Tick(time.Since(start))
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleWindowClose asks the window to close once the engine quits.
func (e *engine) handleWindowClose() {
	defer e.wg.Done()
	<-e.quitChannel
	e.window.RequestClose()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() {
	e.closeOnce.Do(func() {
		e.signalQuit()

		e.mu.Lock()
		e.closed = true
		e.events = nil
		session := e.session
		e.session = nil
		e.listenGen++
		views := e.viewports
		e.viewports = nil
		sched := e.scheduler
		e.scheduler = nil
		e.mu.Unlock()

		if session != nil {
			session.Stop()
		}
		e.listenCancel()

		for _, v := range views {
			v.Unmount()
		}
		if sched != nil {
			sched.Close()
		}
		e.particles.Stop()

		if a := e.state.Asset(); a != nil {
			e.state.SetAsset(nil, "")
			e.dispose(a)
		}
		e.ghost.Detach()
		logger.Log.Info("engine closed")
	})
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetRenderCallback(callback func(now time.Duration)) {
	e.renderCallback = callback
}

func (e *engine) LoadAsset(src loader.Source, displayName string) error {
	e.mu.Lock()
	closed := e.closed
	e.loadGen++
	gen := e.loadGen
	e.mu.Unlock()
	if closed {
		return errEngineClosed
	}

	name := src.Name()

	err := e.loader.LoadAsync(src, func(a asset.SceneAsset, err error) {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if closed {
			if a != nil {
				e.dispose(a)
			}
			return
		}
		e.post(func() { e.finishLoad(gen, name, displayName, a, err) })
	})
	if err != nil {
		logger.Log.WithField("file", name).Warn("please provide a supported file")
		return err
	}
	logger.Log.WithField("file", name).Info("loading scene")
	return nil
}

// finishLoad installs a completed load unless a later request has already been installed.
// Completions can arrive out of request order; a stale asset is disposed instead.
func (e *engine) finishLoad(gen uint64, name, displayName string, a asset.SceneAsset, err error) {
	if err != nil {
		logger.Log.WithError(err).WithField("file", name).Error("scene load failed")
		return
	}

	e.mu.Lock()
	stale := gen <= e.installedGen
	if !stale {
		e.installedGen = gen
	}
	e.mu.Unlock()

	if stale {
		logger.Log.WithField("file", name).Info("superseded scene discarded")
		e.dispose(a)
		return
	}
	e.replaceAsset(a, displayName)
}

// replaceAsset installs a as the loaded asset. Bindings on the old asset are cancelled and the
// old asset is disposed before the new one is installed.
func (e *engine) replaceAsset(a asset.SceneAsset, displayName string) {
	e.mu.Lock()
	old := e.scheduler
	e.scheduler = nil
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if prev := e.state.Asset(); prev != nil && prev != a {
		e.dispose(prev)
	}

	// The ghost effect re-applies the current ghost state when the asset changes.
	e.state.SetAsset(a, displayName)

	sched := animator.NewScheduler(e.clock, e.state, a)
	e.mu.Lock()
	e.scheduler = sched
	views := append([]viewport.Viewport(nil), e.viewports...)
	e.mu.Unlock()
	for _, v := range views {
		v.Attach(sched)
	}

	if t, err := control.ParseAnimationType(e.cfg.Animation.OnLoad); err == nil {
		e.state.SetAnimationType(t)
	} else {
		logger.Log.WithError(err).Warn("invalid on-load animation, keeping current")
	}

	snap := e.state.Snapshot()
	logger.Log.WithFields(logrus.Fields{
		"asset":     snap.DisplayName,
		"surfaces":  len(a.Surfaces()),
		"viewports": len(views),
	}).Info("scene loaded")
}

// dispose releases a, ignoring a repeated disposal. The loader has already counted and logged it.
func (e *engine) dispose(a asset.SceneAsset) {
	if err := e.loader.Dispose(a); err != nil && !errors.Is(err, loader.ErrDoubleDisposal) {
		logger.Log.WithError(err).Error("scene disposal failed")
	}
}

func (e *engine) MountViewport(name string, cameraPos mgl32.Vec3) viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextViewport++
	cam := camera.NewCamera(camera.WithPosition(cameraPos.X(), cameraPos.Y(), cameraPos.Z()), camera.WithFov(camera.DefaultFov))
	v := viewport.NewViewport(e.nextViewport, viewport.WithName(name), viewport.WithCamera(cam))
	if e.closed {
		v.Unmount()
		return v
	}

	e.viewports = append(e.viewports, v)
	e.layoutLocked()
	if e.scheduler != nil {
		v.Attach(e.scheduler)
	}
	logger.Log.WithField("viewport", name).WithField("id", v.ID()).Debug("viewport mounted")
	return v
}

func (e *engine) UnmountViewport(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, v := range e.viewports {
		if v.ID() != id {
			continue
		}
		v.Unmount()
		e.viewports = append(e.viewports[:i], e.viewports[i+1:]...)
		e.layoutLocked()
		logger.Log.WithField("viewport", v.Name()).WithField("id", id).Debug("viewport unmounted")
		return true
	}
	return false
}

// layoutLocked tiles the mounted viewports over the framebuffer.
func (e *engine) layoutLocked() {
	rects := common.QuadrantRects(len(e.viewports))
	for i, v := range e.viewports {
		v.SetRect(rects[i], e.width, e.height)
	}
}

func (e *engine) Viewports() []viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]viewport.Viewport(nil), e.viewports...)
}

func (e *engine) ViewportAt(x, y float32) viewport.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.viewports {
		vx, vy, vw, vh := v.Rect().Pixels(e.width, e.height)
		if x >= vx && x < vx+vw && y >= vy && y < vy+vh {
			return v
		}
	}
	return nil
}

func (e *engine) StartListening() (*voice.Session, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, errEngineClosed
	}
	prev := e.session
	e.session = nil
	e.listenGen++
	gen := e.listenGen
	e.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}

	s, err := voice.Start(e.listenCtx, e.recognizer,
		func(text string) {
			e.post(func() {
				if e.currentGen(gen) {
					e.interpret(text)
				}
			})
		},
		func(error) {
			e.post(func() { e.sessionEnded(gen) })
		},
	)
	if err != nil {
		e.reportUnsupported()
		e.post(func() { e.state.SetListening(false) })
		return nil, err
	}

	e.mu.Lock()
	if e.listenGen == gen {
		e.session = s
	}
	e.mu.Unlock()
	e.post(func() {
		if e.currentGen(gen) {
			e.state.SetListening(true)
		}
	})
	logger.Log.Info("listening for voice commands")
	return s, nil
}

func (e *engine) StopListening(s *voice.Session) {
	if s == nil {
		return
	}
	e.mu.Lock()
	current := e.session == s
	if current {
		e.session = nil
		e.listenGen++
	}
	e.mu.Unlock()

	s.Stop()
	if current {
		e.post(func() { e.state.SetListening(false) })
		logger.Log.Info("stopped listening")
	}
}

func (e *engine) ToggleListening() error {
	e.mu.Lock()
	s := e.session
	e.mu.Unlock()

	if s != nil {
		e.StopListening(s)
		return nil
	}
	_, err := e.StartListening()
	return err
}

func (e *engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

func (e *engine) currentGen(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listenGen == gen
}

// sessionEnded clears the open session when the recognizer ends it on its own.
func (e *engine) sessionEnded(gen uint64) {
	e.mu.Lock()
	current := e.listenGen == gen
	if current {
		e.session = nil
		e.listenGen++
	}
	e.mu.Unlock()
	if current {
		e.state.SetListening(false)
	}
}

// reportUnsupported counts and logs the missing speech capability the first time it is hit.
func (e *engine) reportUnsupported() {
	e.mu.Lock()
	first := !e.unsupportedLogged
	e.unsupportedLogged = true
	e.mu.Unlock()
	if first {
		e.profiler.Record(profiler.EventUnsupportedCapability, logrus.Fields{"message": "voice recognition not supported here"})
	}
}

func (e *engine) interpret(text string) {
	e.interpreter.Execute(e.state, text)
}

func (e *engine) SetAnimationType(t control.AnimationType) {
	e.post(func() { e.state.SetAnimationType(t) })
}

func (e *engine) SetAnimationSpeed(speed float64) {
	e.post(func() { e.state.SetSpeed(speed) })
}

func (e *engine) AdjustAnimationSpeed(delta float64) {
	e.post(func() {
		e.state.SetSpeed(common.RoundTo(control.ClampSpeed(e.state.Speed()+delta), 1))
	})
}

func (e *engine) SetGhostMode(enabled bool) {
	e.post(func() { e.state.SetGhostMode(enabled) })
}

func (e *engine) ToggleGhostMode() {
	e.post(func() { e.state.ToggleGhostMode() })
}

func (e *engine) Interpret(text string) {
	e.post(func() { e.interpret(text) })
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.post(func() {
		e.mu.Lock()
		e.width, e.height = width, height
		e.layoutLocked()
		e.mu.Unlock()

		if e.renderer != nil {
			if err := e.renderer.Resize(width, height); err != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"width":  width,
					"height": height,
				}).Warn("surface resize failed")
			}
		}
		e.particles.Resize(float32(width), float32(height))
	})
}

func (e *engine) Snapshot() control.Snapshot {
	return e.state.Snapshot()
}

func (e *engine) State() control.State {
	return e.state
}

func (e *engine) Asset() asset.SceneAsset {
	return e.state.Asset()
}

func (e *engine) Particles() []particle.Particle {
	return e.particles.Particles()
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}
