// Command ghostview shows a GLB scene as a translucent hologram in four camera viewports,
// driven by keyboard, drag and drop, a watched drop folder and voice commands.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine"
	"github.com/Carmen-Shannon/oxy-ghost/engine/config"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/loader"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ghost/engine/status"
	"github.com/Carmen-Shannon/oxy-ghost/engine/voice"
	"github.com/Carmen-Shannon/oxy-ghost/engine/watcher"
	"github.com/Carmen-Shannon/oxy-ghost/engine/window"
)

const (
	speedStep        = 0.1
	orbitSensitivity = 0.005
	zoomStep         = 0.5
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	modelPath := flag.String("model", "", "GLB file to load at startup")
	voiceBackend := flag.String("voice", "", "voice backend override: stdin, websocket or none")
	watchDir := flag.String("watch", "", "drop folder override; GLB files written here are loaded")
	profile := flag.Bool("profile", false, "log frame rate and memory statistics")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load config")
	}
	if *voiceBackend != "" {
		cfg.Voice.Backend = *voiceBackend
	}
	if *watchDir != "" {
		cfg.WatchDir = *watchDir
	}
	cfg.Profile = cfg.Profile || *profile
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("invalid config")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(320, 240),
	)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to create window")
	}
	defer win.Close()

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(renderer.PresentModeVSync),
		renderer.WithMSAA(renderer.MSAA4x),
	)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to create renderer")
	}
	defer r.Release()

	rec, err := voice.NewRecognizer(cfg.Voice.Backend, cfg.Voice.URL, os.Stdin)
	if err != nil {
		logger.Log.WithError(err).Warn("voice input disabled")
	}

	prof := profiler.NewProfiler()
	eng := engine.NewEngine(
		engine.WithConfig(cfg),
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithRecognizer(rec),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Profile),
	)
	defer eng.Close()

	for _, vc := range cfg.Viewports {
		eng.MountViewport(vc.Name, mgl32.Vec3(vc.Camera))
	}

	printer := status.NewPrinter(os.Stdout, status.WithHelp(true))
	eng.SetRenderCallback(func(time.Duration) {
		printer.Print(eng.Snapshot())
	})

	setupInput(eng, win, printer)

	if cfg.WatchDir != "" {
		w, err := watcher.NewWatcher(cfg.WatchDir, func(path string) {
			loadFile(eng, printer, path)
		}, watcher.WithFilter(loader.Accepts))
		if err != nil {
			logger.Log.WithError(err).Warn("drop folder disabled")
		} else if err := w.Start(); err != nil {
			logger.Log.WithError(err).Warn("drop folder disabled")
		} else {
			defer w.Close()
			logger.Log.WithField("dir", w.Dir()).Info("watching drop folder")
		}
	}

	if *modelPath != "" {
		loadFile(eng, printer, *modelPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.WithField("viewports", len(cfg.Viewports)).Info("starting ghost viewer")
	eng.Run(ctx)
}

// loadFile starts loading path and reports a rejected file name to the user.
//
// Parameters:
//   - eng: the engine that owns the asset
//   - printer: receives the user-facing notice
//   - path: the file to load
func loadFile(eng engine.Engine, printer status.Printer, path string) {
	err := eng.LoadAsset(loader.FileSource(path), filepath.Base(path))
	if errors.Is(err, loader.ErrInvalidFormat) {
		printer.Notice("Please provide a supported file (" + loader.SceneExtension + ")")
	}
}

// setupInput wires the keyboard widgets, drag and drop, orbit and zoom.
//
// Parameters:
//   - eng: the engine receiving control events
//   - win: the window providing input callbacks
//   - printer: receives user-facing notices
func setupInput(eng engine.Engine, win window.Window, printer status.Printer) {
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyF:
			eng.SetAnimationType(control.AnimationFloat)
		case common.KeyR:
			eng.SetAnimationType(control.AnimationRotate)
		case common.KeyN:
			eng.SetAnimationType(control.AnimationNone)
		case common.KeyG:
			eng.ToggleGhostMode()
		case common.KeyMinus:
			eng.AdjustAnimationSpeed(-speedStep)
		case common.KeyEqual:
			eng.AdjustAnimationSpeed(speedStep)
		case common.Key1:
			eng.SetAnimationSpeed(control.DefaultSpeed)
		case common.KeySpace:
			for _, v := range eng.Viewports() {
				v.Camera().Reset()
			}
		case common.KeyV:
			if err := eng.ToggleListening(); errors.Is(err, voice.ErrUnsupportedCapability) {
				printer.Notice("Voice recognition not supported here")
			}
		}
	})

	win.SetDropCallback(func(paths []string) {
		// A single scene is shown at a time; the last dropped file wins.
		if len(paths) > 0 {
			loadFile(eng, printer, paths[len(paths)-1])
		}
	})

	win.SetDragCallback(func(x, y, dx, dy float32) {
		if v := eng.ViewportAt(x, y); v != nil {
			v.Camera().Orbit(-dx*orbitSensitivity, dy*orbitSensitivity)
		}
	})

	win.SetScrollCallback(func(x, y, delta float32) {
		if v := eng.ViewportAt(x, y); v != nil {
			v.Camera().Zoom(delta * zoomStep)
		}
	})
}
