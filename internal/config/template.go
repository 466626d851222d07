package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// WriteTemplate writes a starter configuration to path. An existing file is
// kept unless overwrite is set.
func WriteTemplate(fs afero.Fs, path string, overwrite bool) error {
	if !overwrite {
		if ok, _ := afero.Exists(fs, path); ok {
			return errors.Errorf("config already exists: %s", path)
		}
	}
	return afero.WriteFile(fs, path, []byte(Template), 0o644)
}

// Template is a commented starter configuration that Parse accepts.
const Template = `document = "intro.json"
# images_dir = "images"
# atlas = "atlas.json"
# atlas_pages = ["atlas.png"]
# script = "checks.json"
screenshots = "screenshots"

[fonts]
# "Title Font" = "fonts/title.ttf"

[text]
# "Title.Text.Source Text" = "Hello"

[window]
title = "framebridge"
width = 640
height = 480
tps = 60
clear_color = "#000000"
stats = false

[playback]
from = 0.0
to = -1.0
loop = true
respect_frame_rate = true
render_scale = 1.0

[mqtt]
enabled = false
broker = "tcp://localhost:1883"
topic = "framebridge/overrides"

[log]
level = "info"
debug = false
`
