package framebridge

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// drawKind identifies the kind of draw command.
type drawKind uint8

const (
	drawSolid drawKind = iota // WhitePixel scaled to the layer size
	drawImage                 // resolved image asset
	drawText                  // text/v2 glyph run
)

// drawCommand is a single draw instruction emitted during traversal.
type drawCommand struct {
	kind      drawKind
	transform [6]float64
	color     Color // alpha already multiplied down the tree
	image     *ebiten.Image
	text      string
	face      text.Face
	node      *Node
}

// emit walks the tree depth-first and appends commands for active, visible
// nodes with visible output. Inactive or hidden nodes prune their subtree.
func (t *RenderTree) emit(cmds []drawCommand) []drawCommand {
	updateWorldTransform(t.root, identityTransform, 1, false)
	for _, c := range t.root.children {
		cmds = emitNode(c, cmds)
	}
	return cmds
}

func emitNode(n *Node, cmds []drawCommand) []drawCommand {
	if !n.Visible || !n.Active {
		return cmds
	}
	switch n.Type {
	case NodeTypeSolid:
		a := n.Color.A * n.FillAlpha * n.worldAlpha
		if a > 0 && n.Width > 0 && n.Height > 0 {
			size := [6]float64{n.Width, 0, 0, n.Height, 0, 0}
			c := n.Color
			c.A = a
			cmds = append(cmds, drawCommand{kind: drawSolid, transform: multiplyAffine(n.worldTransform, size), color: c, image: WhitePixel, node: n})
		}
	case NodeTypeImage:
		if n.Image != nil && n.worldAlpha > 0 {
			cmds = append(cmds, drawCommand{kind: drawImage, transform: n.worldTransform, color: Color{1, 1, 1, n.worldAlpha}, image: n.Image, node: n})
		}
	case NodeTypeText:
		a := n.Color.A * n.worldAlpha
		if n.Face != nil && n.Text != "" && a > 0 {
			c := n.Color
			c.A = a
			cmds = append(cmds, drawCommand{kind: drawText, transform: n.worldTransform, color: c, text: n.Text, face: n.Face, node: n})
		}
	}
	for _, c := range n.children {
		cmds = emitNode(c, cmds)
	}
	return cmds
}

// Draw implements Engine.
func (t *RenderTree) Draw(dst *ebiten.Image, geom ebiten.GeoM) {
	if t.disposed || dst == nil {
		return
	}
	var out ebiten.GeoM
	out.Scale(t.renderScale, t.renderScale)
	out.Concat(geom)

	target := dst
	if t.maskToBounds {
		target = clipTarget(dst, t.doc.Bounds(), out)
		if target == nil {
			return
		}
	}

	t.commands = t.emit(t.commands[:0])
	submitCommands(target, t.commands, out)
}

// clipTarget returns the sub-image of dst covered by bounds under geom, or
// nil when nothing of it is on dst.
func clipTarget(dst *ebiten.Image, bounds Rect, geom ebiten.GeoM) *ebiten.Image {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{
		{bounds.X, bounds.Y},
		{bounds.X + bounds.Width, bounds.Y},
		{bounds.X, bounds.Y + bounds.Height},
		{bounds.X + bounds.Width, bounds.Y + bounds.Height},
	} {
		x, y := geom.Apply(p[0], p[1])
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	r := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return nil
	}
	return dst.SubImage(r).(*ebiten.Image)
}

// commandGeoM converts a command transform into an ebiten.GeoM followed by out.
func commandGeoM(cmd *drawCommand, out ebiten.GeoM) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, cmd.transform[0])
	m.SetElement(1, 0, cmd.transform[1])
	m.SetElement(0, 1, cmd.transform[2])
	m.SetElement(1, 1, cmd.transform[3])
	m.SetElement(0, 2, cmd.transform[4])
	m.SetElement(1, 2, cmd.transform[5])
	m.Concat(out)
	return m
}

// submitCommands issues one draw call per command. Colors are premultiplied
// here.
func submitCommands(dst *ebiten.Image, cmds []drawCommand, out ebiten.GeoM) {
	var op ebiten.DrawImageOptions
	for i := range cmds {
		cmd := &cmds[i]
		a := float32(cmd.color.A)
		switch cmd.kind {
		case drawSolid, drawImage:
			op.GeoM = commandGeoM(cmd, out)
			op.ColorScale.Reset()
			op.ColorScale.Scale(float32(cmd.color.R)*a, float32(cmd.color.G)*a, float32(cmd.color.B)*a, a)
			dst.DrawImage(cmd.image, &op)
		case drawText:
			top := &text.DrawOptions{}
			top.GeoM = commandGeoM(cmd, out)
			top.ColorScale.Scale(float32(cmd.color.R)*a, float32(cmd.color.G)*a, float32(cmd.color.B)*a, a)
			top.LineSpacing = lineHeight(cmd.face)
			text.Draw(dst, cmd.text, cmd.face, top)
		}
	}
}
