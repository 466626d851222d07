package framebridge

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/dealancer/validate.v2"
	"gopkg.in/yaml.v2"
)

// Layer type names accepted in documents.
const (
	LayerTypeNull  = "null"
	LayerTypeGroup = "group"
	LayerTypeSolid = "solid"
	LayerTypeImage = "image"
	LayerTypeText  = "text"
)

// Document is a parsed animation document. Frame numbers are in document
// frames; FrameRate converts them to seconds.
type Document struct {
	Name       string       `json:"name" yaml:"name"`
	Version    string       `json:"version" yaml:"version"`
	FrameRate  float64      `json:"frameRate" yaml:"frameRate" validate:"gt=0"`
	StartFrame float64      `json:"startFrame" yaml:"startFrame"`
	EndFrame   float64      `json:"endFrame" yaml:"endFrame"`
	Width      float64      `json:"width" yaml:"width" validate:"gte=0"`
	Height     float64      `json:"height" yaml:"height" validate:"gte=0"`
	Assets     []ImageAsset `json:"assets,omitempty" yaml:"assets,omitempty"`
	Layers     []LayerSpec  `json:"layers" yaml:"layers"`
}

// ImageAsset is an image referenced by image layers.
type ImageAsset struct {
	ID     string  `json:"id" yaml:"id"`
	File   string  `json:"file" yaml:"file"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// LayerSpec describes one layer. Group layers nest Layers; the other types
// ignore them.
type LayerSpec struct {
	Name      string        `json:"name" yaml:"name" validate:"empty=false"`
	Type      string        `json:"type" yaml:"type"`
	InFrame   float64       `json:"inFrame,omitempty" yaml:"inFrame,omitempty"`
	OutFrame  float64       `json:"outFrame,omitempty" yaml:"outFrame,omitempty"`
	Width     float64       `json:"width,omitempty" yaml:"width,omitempty"`
	Height    float64       `json:"height,omitempty" yaml:"height,omitempty"`
	Asset     string        `json:"asset,omitempty" yaml:"asset,omitempty"`
	Transform TransformSpec `json:"transform" yaml:"transform"`
	Fill      *FillSpec     `json:"fill,omitempty" yaml:"fill,omitempty"`
	Text      *TextSpec     `json:"text,omitempty" yaml:"text,omitempty"`
	Layers    []LayerSpec   `json:"layers,omitempty" yaml:"layers,omitempty"`
}

// TransformSpec holds the transform properties. Scale and Opacity are in
// percent, Rotation in degrees.
type TransformSpec struct {
	AnchorPoint *PropertySpec `json:"anchorPoint,omitempty" yaml:"anchorPoint,omitempty"`
	Position    *PropertySpec `json:"position,omitempty" yaml:"position,omitempty"`
	Scale       *PropertySpec `json:"scale,omitempty" yaml:"scale,omitempty"`
	Rotation    *PropertySpec `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Opacity     *PropertySpec `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// FillSpec is the fill of a solid layer.
type FillSpec struct {
	Color   *PropertySpec `json:"color,omitempty" yaml:"color,omitempty"`
	Opacity *PropertySpec `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// TextSpec is the content of a text layer.
type TextSpec struct {
	Source *PropertySpec `json:"source,omitempty" yaml:"source,omitempty"`
	Font   string        `json:"font,omitempty" yaml:"font,omitempty"`
	Size   *PropertySpec `json:"size,omitempty" yaml:"size,omitempty"`
	Color  *PropertySpec `json:"color,omitempty" yaml:"color,omitempty"`
}

// PropertySpec is either a static Value or a list of Keyframes.
type PropertySpec struct {
	Value     any            `json:"value,omitempty" yaml:"value,omitempty"`
	Keyframes []KeyframeSpec `json:"keyframes,omitempty" yaml:"keyframes,omitempty"`
}

// KeyframeSpec is one authored keyframe. Bezier, when four numbers, takes
// precedence over Easing.
type KeyframeSpec struct {
	Frame  float64   `json:"frame" yaml:"frame"`
	Value  any       `json:"value" yaml:"value"`
	Easing string    `json:"easing,omitempty" yaml:"easing,omitempty"`
	Bezier []float64 `json:"bezier,omitempty" yaml:"bezier,omitempty"`
	Hold   bool      `json:"hold,omitempty" yaml:"hold,omitempty"`
}

// Static returns a PropertySpec holding a single value.
func Static(v any) *PropertySpec {
	return &PropertySpec{Value: v}
}

// Bounds returns the document's declared bounds at the origin.
func (d *Document) Bounds() Rect {
	return Rect{0, 0, d.Width, d.Height}
}

// Duration returns the document length in seconds.
func (d *Document) Duration() float64 {
	if d.FrameRate <= 0 {
		return 0
	}
	return (d.EndFrame - d.StartFrame) / d.FrameRate
}

// Validate checks the fields the render tree relies on. Field rules live in
// the struct tags; frame order and layer naming are checked here.
func (d *Document) Validate() error {
	if err := validate.Validate(d); err != nil {
		return errors.Wrap(ErrInvalidDocument, err.Error())
	}
	if d.EndFrame < d.StartFrame {
		return errors.Wrapf(ErrInvalidDocument, "end frame %v before start frame %v", d.EndFrame, d.StartFrame)
	}
	return validateLayers(d.Layers, "")
}

// validateLayers enforces names that work as keypath segments: no
// separators and unique among siblings.
func validateLayers(layers []LayerSpec, parent string) error {
	seen := make(map[string]bool, len(layers))
	for _, l := range layers {
		if strings.Contains(l.Name, ".") {
			return errors.Wrapf(ErrInvalidDocument, "layer name %q contains a keypath separator", l.Name)
		}
		if seen[l.Name] {
			return errors.Wrapf(ErrInvalidDocument, "duplicate layer name %q under %q", l.Name, parent)
		}
		seen[l.Name] = true
		if err := validateLayers(l.Layers, l.Name); err != nil {
			return err
		}
	}
	return nil
}

// Asset returns the image asset with the given id.
func (d *Document) Asset(id string) (ImageAsset, bool) {
	for _, a := range d.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return ImageAsset{}, false
}

// EmptyDocument returns a valid document with no layers and no duration.
func EmptyDocument() *Document {
	return &Document{Name: "empty", FrameRate: 60}
}

// ParseDocument decodes a JSON document and validates it.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "framebridge: parse document JSON")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseDocumentYAML decodes a YAML document and validates it.
func ParseDocumentYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "framebridge: parse document YAML")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadDocument reads a document from fs. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func LoadDocument(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "framebridge: read document %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseDocumentYAML(data)
	}
	return ParseDocument(data)
}
