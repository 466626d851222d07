// Package config loads the framebridge player configuration from TOML.
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/dealancer/validate.v2"
)

// Config is the player configuration.
type Config struct {
	Document    string            `toml:"document" validate:"empty=false"`
	ImagesDir   string            `toml:"images_dir"`
	Atlas       string            `toml:"atlas"`
	AtlasPages  []string          `toml:"atlas_pages"`
	Fonts       map[string]string `toml:"fonts"`
	Text        map[string]string `toml:"text"`
	Script      string            `toml:"script"`
	Screenshots string            `toml:"screenshots"`
	Window      Window            `toml:"window"`
	Playback    Playback          `toml:"playback"`
	MQTT        MQTT              `toml:"mqtt"`
	Log         Log               `toml:"log"`
}

// Window configures the ebiten window.
type Window struct {
	Title      string `toml:"title"`
	Width      int    `toml:"width" validate:"gt=0"`
	Height     int    `toml:"height" validate:"gt=0"`
	TPS        int    `toml:"tps" validate:"gte=1"`
	ClearColor string `toml:"clear_color"`
	Stats      bool   `toml:"stats"`
}

// Playback configures the initial playback range. A negative To plays to the
// document's last frame.
type Playback struct {
	From             float64 `toml:"from"`
	To               float64 `toml:"to"`
	Loop             bool    `toml:"loop"`
	RespectFrameRate bool    `toml:"respect_frame_rate"`
	RenderScale      float64 `toml:"render_scale" validate:"gt=0"`
}

// MQTT configures the remote override subscriber.
type MQTT struct {
	Enabled  bool   `toml:"enabled"`
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	ClientID string `toml:"client_id"`
}

// Log configures the shared logger.
type Log struct {
	Level string `toml:"level" validate:"one_of=trace,debug,info,warn,error"`
	Debug bool   `toml:"debug"`
}

// Default returns the configuration used for keys a file leaves unset.
func Default() Config {
	return Config{
		Screenshots: "screenshots",
		Window: Window{
			Title:      "framebridge",
			Width:      640,
			Height:     480,
			TPS:        60,
			ClearColor: "#000000",
		},
		Playback: Playback{
			To:               -1,
			Loop:             true,
			RespectFrameRate: true,
			RenderScale:      1,
		},
		MQTT: MQTT{
			Broker: "tcp://localhost:1883",
			Topic:  "framebridge/overrides",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path from fs over the defaults, then validates the result.
func Load(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config load failed (%s)", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config parse failed (%s)", path)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults, then validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("unknown config key %q", undecoded[0].String())
	}

	cfg.Document = strings.TrimSpace(raw.Document)
	cfg.ImagesDir = strings.TrimSpace(raw.ImagesDir)
	cfg.Atlas = strings.TrimSpace(raw.Atlas)
	cfg.AtlasPages = raw.AtlasPages
	cfg.Fonts = raw.Fonts
	cfg.Text = raw.Text
	cfg.Script = strings.TrimSpace(raw.Script)
	if meta.IsDefined("screenshots") {
		cfg.Screenshots = strings.TrimSpace(raw.Screenshots)
	}

	if meta.IsDefined("window", "title") {
		cfg.Window.Title = raw.Window.Title
	}
	if meta.IsDefined("window", "width") {
		cfg.Window.Width = raw.Window.Width
	}
	if meta.IsDefined("window", "height") {
		cfg.Window.Height = raw.Window.Height
	}
	if meta.IsDefined("window", "tps") {
		cfg.Window.TPS = raw.Window.TPS
	}
	if meta.IsDefined("window", "clear_color") {
		cfg.Window.ClearColor = strings.TrimSpace(raw.Window.ClearColor)
	}
	cfg.Window.Stats = raw.Window.Stats

	if meta.IsDefined("playback", "from") {
		cfg.Playback.From = raw.Playback.From
	}
	if meta.IsDefined("playback", "to") {
		cfg.Playback.To = raw.Playback.To
	}
	if meta.IsDefined("playback", "loop") {
		cfg.Playback.Loop = raw.Playback.Loop
	}
	if meta.IsDefined("playback", "respect_frame_rate") {
		cfg.Playback.RespectFrameRate = raw.Playback.RespectFrameRate
	}
	if meta.IsDefined("playback", "render_scale") {
		cfg.Playback.RenderScale = raw.Playback.RenderScale
	}

	cfg.MQTT.Enabled = raw.MQTT.Enabled
	cfg.MQTT.Username = raw.MQTT.Username
	cfg.MQTT.Password = raw.MQTT.Password
	cfg.MQTT.ClientID = strings.TrimSpace(raw.MQTT.ClientID)
	if meta.IsDefined("mqtt", "broker") {
		cfg.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	}
	if meta.IsDefined("mqtt", "topic") {
		cfg.MQTT.Topic = strings.TrimSpace(raw.MQTT.Topic)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(raw.Log.Level))
	}
	cfg.Log.Debug = raw.Log.Debug

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting in cfg. Field rules live in
// the struct tags; the rules spanning several fields are checked here.
func Validate(cfg Config) error {
	if err := validate.Validate(&cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if cfg.Playback.To >= 0 && cfg.Playback.To < cfg.Playback.From {
		return errors.Errorf("playback to (%g) before from (%g)", cfg.Playback.To, cfg.Playback.From)
	}
	if len(cfg.AtlasPages) > 0 && cfg.Atlas == "" {
		return errors.New("atlas_pages set without atlas")
	}
	if cfg.Atlas != "" && cfg.ImagesDir != "" {
		return errors.New("atlas and images_dir are mutually exclusive")
	}
	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return errors.New("mqtt enabled without broker")
		}
		if cfg.MQTT.Topic == "" {
			return errors.New("mqtt enabled without topic")
		}
	}
	return nil
}
