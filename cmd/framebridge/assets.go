package main

import (
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/phanxgames/framebridge"
	"github.com/phanxgames/framebridge/internal/config"
)

// assets holds the providers handed to the frame layer. Nil providers fall
// back to the engine defaults.
type assets struct {
	images framebridge.ImageProvider
	text   framebridge.TextProvider
	fonts  framebridge.FontProvider
}

func loadAssets(fs afero.Fs, cfg config.Config) (assets, error) {
	var a assets
	switch {
	case cfg.Atlas != "":
		atlas, err := loadAtlas(fs, cfg.Atlas, cfg.AtlasPages)
		if err != nil {
			return assets{}, err
		}
		a.images = atlas
	case cfg.ImagesDir != "":
		a.images = framebridge.NewFileImageProvider(fs, cfg.ImagesDir)
	}

	if len(cfg.Text) > 0 {
		a.text = framebridge.DictionaryTextProvider(cfg.Text)
	}

	if len(cfg.Fonts) > 0 {
		fonts := framebridge.NewTTFFontProvider()
		for family, file := range cfg.Fonts {
			data, err := afero.ReadFile(fs, file)
			if err != nil {
				return assets{}, errors.Wrapf(err, "font %q", family)
			}
			if err := fonts.Register(family, data); err != nil {
				return assets{}, err
			}
		}
		a.fonts = fonts
	}
	return a, nil
}

// loadAtlas reads TexturePacker JSON and its page images. Page files are
// resolved next to the JSON file.
func loadAtlas(fs afero.Fs, file string, pages []string) (*framebridge.AtlasImageProvider, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, errors.Wrap(err, "atlas")
	}
	files := framebridge.NewFileImageProvider(fs, path.Dir(file))
	imgs := make([]*ebiten.Image, len(pages))
	for i, page := range pages {
		imgs[i] = files.Image(framebridge.ImageAsset{ID: page, File: page})
		if imgs[i] == nil {
			return nil, errors.Errorf("atlas page %q not loadable", page)
		}
	}
	atlas, err := framebridge.LoadAtlas(data, imgs)
	if err != nil {
		return nil, err
	}
	atlas.Placeholder = true
	return atlas, nil
}
