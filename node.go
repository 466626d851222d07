package framebridge

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// nodeIDCounter is a plain counter (no atomic, single UI goroutine).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is a render-tree element built from one document layer. A single
// flat struct serves every layer type. Animators write its fields during
// evaluation; callers may read them, and may write them between display
// passes, but the next evaluation overwrites animated fields.
type Node struct {
	// Identity
	ID      uint32
	Name    string
	Type    NodeType
	Keypath Keypath

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Rotation is in radians, Alpha in [0, 1].
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64
	Alpha    float64

	// Computed during traversal
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility. Active is false outside [InFrame, OutFrame).
	Visible  bool
	Active   bool
	InFrame  float64
	OutFrame float64

	// Solid fields (NodeTypeSolid)
	Width, Height float64
	Color         Color
	FillAlpha     float64 // fill opacity, multiplied into Color.A when drawn

	// Image fields (NodeTypeImage)
	Asset ImageAsset
	Image *ebiten.Image

	// Text fields (NodeTypeText)
	Text       string
	SourceText string
	FontFamily string
	FontSize   float64
	Face       text.Face

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.FillAlpha = 1
	n.Visible = true
	n.Active = true
	n.transformDirty = true
}

// NewGroupNode creates a node with no visual output.
func NewGroupNode(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup}
	nodeDefaults(n)
	return n
}

// NewSolidNode creates a filled rectangle node.
func NewSolidNode(name string, w, h float64, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeSolid}
	nodeDefaults(n)
	n.Width, n.Height, n.Color = w, h, c
	return n
}

// NewImageNode creates a node drawing the given asset.
func NewImageNode(name string, asset ImageAsset) *Node {
	n := &Node{Name: name, Type: NodeTypeImage, Asset: asset}
	nodeDefaults(n)
	n.Width, n.Height = asset.Width, asset.Height
	return n
}

// NewTextNode creates a text node.
func NewTextNode(name, content, family string, size float64) *Node {
	n := &Node{Name: name, Type: NodeTypeText, Text: content, SourceText: content, FontFamily: family, FontSize: size}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("framebridge: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("framebridge: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("framebridge: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// ChildByName returns the first direct child with the given name.
func (n *Node) ChildByName(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Images are not deallocated;
// they belong to the ImageProvider.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Image = nil
	n.Face = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

