package main

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/framebridge"
	"github.com/phanxgames/framebridge/internal/config"
)

func writePNG(t *testing.T, fs afero.Fs, name string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0o644))
}

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.Document = "intro.json"
	return cfg
}

func TestLoadAssetsDefaults(t *testing.T) {
	a, err := loadAssets(afero.NewMemMapFs(), baseConfig())
	require.NoError(t, err)
	assert.Nil(t, a.images)
	assert.Nil(t, a.text)
	assert.Nil(t, a.fonts)
}

func TestLoadAssetsAtlas(t *testing.T) {
	fs := afero.NewMemMapFs()
	writePNG(t, fs, "art/page0.png", 32, 32)
	require.NoError(t, afero.WriteFile(fs, "art/atlas.json", []byte(`{"frames": {"hero.png": {"frame": {"x": 0, "y": 0, "w": 8, "h": 8}}}}`), 0o644))

	cfg := baseConfig()
	cfg.Atlas = "art/atlas.json"
	cfg.AtlasPages = []string{"page0.png"}
	a, err := loadAssets(fs, cfg)
	require.NoError(t, err)

	atlas, ok := a.images.(*framebridge.AtlasImageProvider)
	require.True(t, ok)
	img := atlas.Image(framebridge.ImageAsset{File: "hero.png"})
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestLoadAssetsMissingAtlasPage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "atlas.json", []byte(`{"frames": {}}`), 0o644))
	cfg := baseConfig()
	cfg.Atlas = "atlas.json"
	cfg.AtlasPages = []string{"missing.png"}
	_, err := loadAssets(fs, cfg)
	assert.Error(t, err)
}

func TestLoadAssetsImagesDir(t *testing.T) {
	cfg := baseConfig()
	cfg.ImagesDir = "images"
	a, err := loadAssets(afero.NewMemMapFs(), cfg)
	require.NoError(t, err)
	_, ok := a.images.(*framebridge.FileImageProvider)
	assert.True(t, ok)
}

func TestLoadAssetsTextAndFonts(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "fonts/go.ttf", goregular.TTF, 0o644))
	cfg := baseConfig()
	cfg.Text = map[string]string{"Hello": "Bonjour"}
	cfg.Fonts = map[string]string{"Go": "fonts/go.ttf"}

	a, err := loadAssets(fs, cfg)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", a.text.Text(framebridge.ParseKeypath("Title.Text.Source Text"), "Hello"))
	fonts, ok := a.fonts.(*framebridge.TTFFontProvider)
	require.True(t, ok)
	assert.Equal(t, 1, fonts.Families())
}

func TestLoadAssetsBadFont(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.ttf", []byte("nope"), 0o644))
	cfg := baseConfig()
	cfg.Fonts = map[string]string{"Bad": "bad.ttf"}
	_, err := loadAssets(fs, cfg)
	assert.Error(t, err)

	cfg.Fonts = map[string]string{"Missing": "missing.ttf"}
	_, err = loadAssets(fs, cfg)
	assert.Error(t, err)
}

func TestPlayerPlaybackRange(t *testing.T) {
	framebridge.SetSharedLogger(zerolog.Nop())
	doc := &framebridge.Document{Name: "d", FrameRate: 30, StartFrame: 5, EndFrame: 65, Width: 10, Height: 10}
	cfg := baseConfig()
	cfg.Playback.From = 0
	cfg.Playback.Loop = false

	c := framebridge.NewCompositor()
	p := newPlayer(c, doc, assets{}, cfg, zerolog.Nop())
	defer p.close()

	assert.Equal(t, 5.0, p.from)
	assert.Equal(t, 65.0, p.to)
	assert.True(t, p.layer.IsPlaying())

	c.Tick(1)
	p.togglePause()
	assert.False(t, p.layer.IsPlaying())
	paused := p.layer.CurrentFrame()
	assert.InDelta(t, 35.0, paused, 1e-3)

	p.step(1)
	assert.InDelta(t, paused+1, p.layer.CurrentFrame(), 1e-9)
	p.step(-1000)
	assert.Equal(t, 5.0, p.layer.CurrentFrame())

	p.togglePause()
	assert.True(t, p.layer.IsPlaying())
	assert.Equal(t, 65.0, p.layer.CurrentFrame())
}

func TestPlayerDrainWithoutSubscriber(t *testing.T) {
	framebridge.SetSharedLogger(zerolog.Nop())
	doc := &framebridge.Document{Name: "d", FrameRate: 30, EndFrame: 30, Width: 10, Height: 10}
	c := framebridge.NewCompositor()
	p := newPlayer(c, doc, assets{}, baseConfig(), zerolog.Nop())
	defer p.close()
	p.drain()
}

func TestPlayerStatsOverlay(t *testing.T) {
	framebridge.SetSharedLogger(zerolog.Nop())
	doc := &framebridge.Document{Name: "d", FrameRate: 30, EndFrame: 30, Width: 10, Height: 10}
	cfg := baseConfig()
	cfg.Window.Stats = true
	c := framebridge.NewCompositor()
	p := newPlayer(c, doc, assets{}, cfg, zerolog.Nop())
	require.NotNil(t, p.stats)
	assert.Len(t, c.Layers(), 2)
	p.close()
	assert.Empty(t, c.Layers())
}
