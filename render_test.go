package framebridge

import (
	"image"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// emitTree runs command emission without submitting anything.
func emitTree(tree *RenderTree) []drawCommand {
	tree.commands = tree.emit(tree.commands[:0])
	return tree.commands
}

// --- Command emission ---

func TestSolidLayerEmitsOneCommand(t *testing.T) {
	tree := mustTree(t, testDocument(), EngineConfig{})
	tree.SetCurrentFrame(60)
	cmds := emitTree(tree)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	c := cmds[0]
	if c.kind != drawSolid || c.image != WhitePixel {
		t.Errorf("command = %+v, want solid with WhitePixel", c)
	}
	if c.transform[0] != 320 || c.transform[3] != 240 {
		t.Errorf("transform = %v, want scale 320x240", c.transform)
	}
	if math.Abs(c.color.A-0.5) > 1e-9 {
		t.Errorf("alpha = %v, want 0.5", c.color.A)
	}
}

func TestTransparentSolidSkipped(t *testing.T) {
	tree := mustTree(t, testDocument(), EngineConfig{})
	tree.SetCurrentFrame(0)
	if cmds := emitTree(tree); len(cmds) != 0 {
		t.Errorf("commands = %d, want 0 at zero opacity", len(cmds))
	}
}

func TestFillOpacityMultiplies(t *testing.T) {
	doc := testDocument()
	doc.Layers[0].Transform.Opacity = Static(50.0)
	doc.Layers[0].Fill.Opacity = Static(50.0)
	doc.Layers[0].Fill.Color = Static("#ff000080")
	tree := mustTree(t, doc, EngineConfig{})
	cmds := emitTree(tree)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	want := 128.0 / 255 * 0.25
	if math.Abs(cmds[0].color.A-want) > 1e-9 {
		t.Errorf("alpha = %v, want %v", cmds[0].color.A, want)
	}
}

func TestInactiveLayerPruned(t *testing.T) {
	doc := testDocument()
	doc.Layers[0].InFrame, doc.Layers[0].OutFrame = 0, 10
	tree := mustTree(t, doc, EngineConfig{})
	tree.SetCurrentFrame(60)
	if cmds := emitTree(tree); len(cmds) != 0 {
		t.Errorf("commands = %d, want 0 outside the layer's frames", len(cmds))
	}
}

func TestHiddenSubtreePruned(t *testing.T) {
	doc := testDocument()
	doc.Layers = []LayerSpec{{
		Name:   "Group",
		Type:   LayerTypeGroup,
		Layers: []LayerSpec{{Name: "Box", Type: LayerTypeSolid, Width: 4, Height: 4}},
	}}
	tree := mustTree(t, doc, EngineConfig{})
	if cmds := emitTree(tree); len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	g, _ := tree.NodeAt(ParseKeypath("Group"))
	g.Visible = false
	if cmds := emitTree(tree); len(cmds) != 0 {
		t.Errorf("commands = %d, want 0 for hidden group", len(cmds))
	}
}

func TestGroupTransformPropagates(t *testing.T) {
	doc := testDocument()
	doc.Layers = []LayerSpec{{
		Name:      "Group",
		Type:      LayerTypeGroup,
		Transform: TransformSpec{Position: Static([]any{10.0, 20.0}), Opacity: Static(50.0)},
		Layers: []LayerSpec{{
			Name:      "Box",
			Type:      LayerTypeSolid,
			Width:     4,
			Height:    4,
			Transform: TransformSpec{Position: Static([]any{1.0, 2.0})},
		}},
	}}
	tree := mustTree(t, doc, EngineConfig{})
	cmds := emitTree(tree)
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want 1", len(cmds))
	}
	if cmds[0].transform[4] != 11 || cmds[0].transform[5] != 22 {
		t.Errorf("translation = (%v, %v), want (11, 22)", cmds[0].transform[4], cmds[0].transform[5])
	}
	if math.Abs(cmds[0].color.A-0.5) > 1e-9 {
		t.Errorf("alpha = %v, want 0.5", cmds[0].color.A)
	}
}

func TestImageLayerWithoutImageEmitsNothing(t *testing.T) {
	doc := testDocument()
	doc.Assets = []ImageAsset{{ID: "hero", File: "hero.png"}}
	doc.Layers = []LayerSpec{{Name: "Hero", Type: LayerTypeImage, Asset: "hero"}}
	tree := mustTree(t, doc, EngineConfig{})
	if cmds := emitTree(tree); len(cmds) != 0 {
		t.Fatalf("commands = %d, want 0", len(cmds))
	}
	tree.SetImageProvider(BundleImageProvider{"hero": ebiten.NewImage(2, 2)})
	cmds := emitTree(tree)
	if len(cmds) != 1 || cmds[0].kind != drawImage {
		t.Errorf("commands = %+v, want one image command", cmds)
	}
}

func TestTextLayerEmitsText(t *testing.T) {
	doc := testDocument()
	doc.Layers = []LayerSpec{{Name: "Title", Type: LayerTypeText, Text: &TextSpec{Source: Static("hi")}}}
	tree := mustTree(t, doc, EngineConfig{})
	cmds := emitTree(tree)
	if len(cmds) != 1 || cmds[0].kind != drawText || cmds[0].text != "hi" {
		t.Errorf("commands = %+v, want one text command", cmds)
	}
}

// --- submission helpers ---

func TestCommandGeoM(t *testing.T) {
	cmd := drawCommand{transform: [6]float64{2, 0, 0, 3, 10, 20}}
	var out ebiten.GeoM
	out.Scale(2, 2)
	m := commandGeoM(&cmd, out)
	x, y := m.Apply(1, 1)
	if x != 24 || y != 46 {
		t.Errorf("Apply(1, 1) = (%v, %v), want (24, 46)", x, y)
	}
}

func TestClipTarget(t *testing.T) {
	dst := ebiten.NewImage(100, 100)
	var geom ebiten.GeoM
	geom.Translate(10, 10)
	sub := clipTarget(dst, Rect{0, 0, 50, 200}, geom)
	if sub == nil {
		t.Fatal("expected a clipped target")
	}
	if got := sub.Bounds(); got != image.Rect(10, 10, 60, 100) {
		t.Errorf("clip = %v, want (10,10)-(60,100)", got)
	}

	geom.Reset()
	geom.Translate(500, 500)
	if clipTarget(dst, Rect{0, 0, 50, 50}, geom) != nil {
		t.Error("off-screen bounds should clip to nothing")
	}
}
