package framebridge

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// TTFFontProvider serves TrueType/OpenType families through Ebitengine's
// text/v2. Unknown families fall back to Fallback, or the basicfont face.
type TTFFontProvider struct {
	sources  map[string]*text.GoTextFaceSource
	faces    map[faceKey]*text.GoTextFace
	Fallback FontProvider
}

type faceKey struct {
	family string
	size   float64
}

// NewTTFFontProvider creates an empty provider.
func NewTTFFontProvider() *TTFFontProvider {
	return &TTFFontProvider{
		sources: make(map[string]*text.GoTextFaceSource),
		faces:   make(map[faceKey]*text.GoTextFace),
	}
}

// Register parses font data and serves it under family.
func (p *TTFFontProvider) Register(family string, ttfData []byte) error {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return fmt.Errorf("framebridge: failed to parse font %q: %w", family, err)
	}
	p.sources[family] = source
	for k := range p.faces {
		if k.family == family {
			delete(p.faces, k)
		}
	}
	return nil
}

// Families returns the number of registered families.
func (p *TTFFontProvider) Families() int {
	return len(p.sources)
}

// Face implements FontProvider.
func (p *TTFFontProvider) Face(family string, size float64) text.Face {
	source, ok := p.sources[family]
	if !ok {
		if p.Fallback != nil {
			return p.Fallback.Face(family, size)
		}
		return DefaultFontProvider{}.Face(family, size)
	}
	key := faceKey{family, size}
	if f, ok := p.faces[key]; ok {
		return f
	}
	f := &text.GoTextFace{Source: source, Size: size}
	p.faces[key] = f
	return f
}

// lineHeight returns the distance between baselines for face.
func lineHeight(face text.Face) float64 {
	m := face.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// measureText returns the laid-out size of s in face.
func measureText(s string, face text.Face) (w, h float64) {
	return text.Measure(s, face, lineHeight(face))
}
