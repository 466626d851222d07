package framebridge

import (
	"image"
	_ "image/jpeg" // decoders for FileImageProvider
	_ "image/png"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/spf13/afero"
	"golang.org/x/image/font/basicfont"
)

// ImageProvider resolves image assets referenced by a document. A nil result
// leaves the image layer blank.
type ImageProvider interface {
	Image(asset ImageAsset) *ebiten.Image
}

// TextProvider may replace the source text of a text layer. keypath is the
// path of the layer's "Source Text" property.
type TextProvider interface {
	Text(keypath Keypath, source string) string
}

// FontProvider resolves a font family at a size.
type FontProvider interface {
	Face(family string, size float64) text.Face
}

// --- defaults ---

type nopImageProvider struct{}

func (nopImageProvider) Image(ImageAsset) *ebiten.Image { return nil }

// DefaultTextProvider returns source text unchanged.
type DefaultTextProvider struct{}

// Text implements TextProvider.
func (DefaultTextProvider) Text(_ Keypath, source string) string { return source }

// DefaultFontProvider serves the fixed-size basicfont face for every family.
type DefaultFontProvider struct{}

var basicFace = text.NewGoXFace(basicfont.Face7x13)

// Face implements FontProvider.
func (DefaultFontProvider) Face(string, float64) text.Face { return basicFace }

// --- bundled images ---

// BundleImageProvider serves images registered by asset id or file name.
type BundleImageProvider map[string]*ebiten.Image

// Image implements ImageProvider. The asset id wins over the file name.
func (b BundleImageProvider) Image(asset ImageAsset) *ebiten.Image {
	if img, ok := b[asset.ID]; ok {
		return img
	}
	return b[asset.File]
}

// --- files ---

// FileImageProvider decodes PNG/JPEG assets from Dir on FS. Decoded images
// are cached until Purge.
type FileImageProvider struct {
	FS  afero.Fs
	Dir string

	cache map[string]*ebiten.Image
}

// NewFileImageProvider creates a provider rooted at dir.
func NewFileImageProvider(fs afero.Fs, dir string) *FileImageProvider {
	return &FileImageProvider{FS: fs, Dir: dir, cache: make(map[string]*ebiten.Image)}
}

// Image implements ImageProvider. Missing or undecodable files log a warning
// and resolve to nil.
func (p *FileImageProvider) Image(asset ImageAsset) *ebiten.Image {
	if asset.File == "" {
		return nil
	}
	name := path.Join(p.Dir, asset.File)
	if img, ok := p.cache[name]; ok {
		return img
	}
	f, err := p.FS.Open(name)
	if err != nil {
		sharedLogger.Warn().Err(err).Str("asset", asset.ID).Msg("image asset not found")
		return nil
	}
	defer f.Close()
	decoded, _, err := image.Decode(f)
	if err != nil {
		sharedLogger.Warn().Err(err).Str("asset", asset.ID).Msg("image asset not decodable")
		return nil
	}
	img := ebiten.NewImageFromImage(decoded)
	if p.cache == nil {
		p.cache = make(map[string]*ebiten.Image)
	}
	p.cache[name] = img
	return img
}

// Purge drops decoded images so the next lookup re-reads the files.
func (p *FileImageProvider) Purge() {
	for k, img := range p.cache {
		img.Deallocate()
		delete(p.cache, k)
	}
}

// --- dictionary text ---

// DictionaryTextProvider replaces text by keypath string first, then by the
// source text itself. Unmatched text passes through.
type DictionaryTextProvider map[string]string

// Text implements TextProvider.
func (d DictionaryTextProvider) Text(keypath Keypath, source string) string {
	if s, ok := d[keypath.String()]; ok {
		return s
	}
	if s, ok := d[source]; ok {
		return s
	}
	return source
}
