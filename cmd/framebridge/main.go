// Command framebridge plays a frame document in a window and accepts keypath
// overrides over MQTT.
//
// Controls: space pauses and resumes, left/right step one frame while paused,
// R restarts the playback range, H logs the layer keypaths, S saves a
// screenshot.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/phanxgames/framebridge"
	"github.com/phanxgames/framebridge/internal/config"
	"github.com/phanxgames/framebridge/internal/remote"
)

func main() {
	configPath := flag.String("config", "framebridge.toml", "TOML config file.")
	initConfig := flag.Bool("init", false, "Write a starter config to -config and exit.")
	docPath := flag.String("doc", "", "Document to play, overriding the config.")
	scriptPath := flag.String("script", "", "Playback script to run, overriding the config.")
	debug := flag.Bool("debug", false, "Enable debug logging and node checks.")
	flag.Parse()

	osFs := afero.NewOsFs()
	if *initConfig {
		if err := config.WriteTemplate(osFs, *configPath, false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(osFs, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *docPath != "" {
		cfg.Document = *docPath
	}
	if *scriptPath != "" {
		cfg.Script = *scriptPath
	}
	if *debug {
		cfg.Log.Debug = true
		cfg.Log.Level = "debug"
		cfg.Window.Stats = true
	}

	logger := newLogger(cfg.Log)
	framebridge.SetSharedLogger(logger)
	framebridge.SetDebugMode(cfg.Log.Debug)

	// Paths in the config are relative to the config file.
	fs := afero.NewBasePathFs(osFs, filepath.Dir(*configPath))
	if err := run(fs, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("framebridge stopped")
	}
}

func newLogger(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("app", "framebridge").Logger().
		Level(level)
}

func run(fs afero.Fs, cfg config.Config, logger zerolog.Logger) error {
	doc, err := framebridge.LoadDocument(fs, cfg.Document)
	if err != nil {
		return err
	}
	providers, err := loadAssets(fs, cfg)
	if err != nil {
		return err
	}
	clearColor, err := framebridge.ParseHexColor(cfg.Window.ClearColor)
	if err != nil {
		return err
	}

	c := framebridge.NewCompositor()
	c.ScreenshotFS = fs
	c.ScreenshotDir = cfg.Screenshots
	p := newPlayer(c, doc, providers, cfg, logger)
	defer p.close()

	if cfg.Script != "" {
		data, err := afero.ReadFile(fs, cfg.Script)
		if err != nil {
			return err
		}
		script, err := framebridge.LoadScript(data, p.layer)
		if err != nil {
			return err
		}
		c.SetScript(script)
	}

	if cfg.MQTT.Enabled {
		p.sub = remote.NewSubscriber(cfg.MQTT, logger)
		if err := p.sub.Connect(); err != nil {
			return err
		}
	}

	logger.Info().Str("document", doc.Name).Float64("frame_rate", doc.FrameRate).
		Float64("start", doc.StartFrame).Float64("end", doc.EndFrame).Msg("playing")
	return framebridge.Run(c, framebridge.RunConfig{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		ClearColor: clearColor,
		TPS:        cfg.Window.TPS,
		OnUpdate:   p.update,
	})
}

// player owns the layer being played and applies input and remote overrides
// before each compositor tick.
type player struct {
	c        *framebridge.Compositor
	layer    *framebridge.FrameLayer
	stats    *framebridge.StatsLayer
	sub      *remote.Subscriber
	name     string
	from, to float64
	loop     bool
	log      zerolog.Logger
}

func newPlayer(c *framebridge.Compositor, doc *framebridge.Document, a assets, cfg config.Config, logger zerolog.Logger) *player {
	layer := framebridge.NewFrameLayer(doc, a.images, a.text, a.fonts)
	layer.SetRespectFrameRate(cfg.Playback.RespectFrameRate)
	layer.SetRenderScale(cfg.Playback.RenderScale)
	c.AddLayer(layer)

	p := &player{
		c:     c,
		layer: layer,
		name:  doc.Name,
		from:  cfg.Playback.From,
		to:    cfg.Playback.To,
		loop:  cfg.Playback.Loop,
		log:   logger,
	}
	if p.to < 0 {
		p.to = doc.EndFrame
	}
	if p.from < doc.StartFrame {
		p.from = doc.StartFrame
	}
	if rt, ok := layer.Engine().(*framebridge.RenderTree); ok {
		for _, issue := range rt.Compatibility() {
			logger.Warn().Str("issue", issue).Msg("unsupported document feature")
		}
		if cfg.Log.Debug {
			logger.Debug().Msg("hierarchy:\n" + framebridge.FormatHierarchy(rt.Root()))
		}
	}
	if cfg.Window.Stats {
		p.stats = framebridge.NewStatsLayer(layer)
		c.AddLayer(p.stats)
	}
	p.restart()
	return p
}

func (p *player) restart() {
	p.layer.Play(p.from, p.to, p.loop)
}

func (p *player) togglePause() {
	if p.layer.IsPlaying() {
		p.layer.Pause()
		p.log.Info().Float64("frame", p.layer.CurrentFrame()).Msg("paused")
		return
	}
	p.layer.Play(p.layer.CurrentFrame(), p.to, false)
}

func (p *player) step(delta float64) {
	if p.layer.IsPlaying() {
		return
	}
	f := p.layer.CurrentFrame() + delta
	if f < p.from {
		f = p.from
	}
	if f > p.to {
		f = p.to
	}
	p.layer.Seek(f)
}

func (p *player) apply(o remote.Override) {
	p.layer.SetValueProvider(o.Provider, o.Keypath)
	p.log.Info().Str("keypath", o.Keypath.String()).Bool("clear", o.Provider == nil).Msg("override applied")
}

func (p *player) update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		p.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		p.step(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		p.step(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		p.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		p.layer.LogHierarchyKeypaths()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		p.screenshot()
	}
	p.drain()
	return nil
}

// drain applies queued remote overrides; the layer redisplays on the next
// tick even while paused.
func (p *player) drain() {
	if p.sub == nil {
		return
	}
	if n := p.sub.Drain(p.apply); n > 0 {
		p.log.Debug().Int("overrides", n).Msg("applied remote overrides")
	}
}

func (p *player) screenshot() {
	p.c.Screenshot(fmt.Sprintf("%s_%.0f", p.name, p.layer.Engine().CurrentFrame()))
}

func (p *player) close() {
	if p.sub != nil {
		p.sub.Close()
	}
	if p.stats != nil {
		p.stats.Dispose()
	}
	p.layer.Dispose()
}
