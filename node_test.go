package framebridge

import "testing"

// --- Constructor defaults ---

func TestNewGroupNodeDefaults(t *testing.T) {
	n := NewGroupNode("group")
	assertNodeDefaults(t, n, "group", NodeTypeGroup)
}

func TestNewSolidNodeDefaults(t *testing.T) {
	n := NewSolidNode("solid", 10, 20, Color{1, 0, 0, 1})
	assertNodeDefaults(t, n, "solid", NodeTypeSolid)
	if n.Width != 10 || n.Height != 20 {
		t.Errorf("size = %vx%v, want 10x20", n.Width, n.Height)
	}
	if n.Color != (Color{1, 0, 0, 1}) {
		t.Errorf("Color = %+v", n.Color)
	}
}

func TestNewImageNodeDefaults(t *testing.T) {
	asset := ImageAsset{ID: "a", File: "a.png", Width: 8, Height: 4}
	n := NewImageNode("img", asset)
	assertNodeDefaults(t, n, "img", NodeTypeImage)
	if n.Asset != asset || n.Width != 8 || n.Height != 4 {
		t.Errorf("asset = %+v, size = %vx%v", n.Asset, n.Width, n.Height)
	}
}

func TestNewTextNodeDefaults(t *testing.T) {
	n := NewTextNode("txt", "hello", "Inter", 12)
	assertNodeDefaults(t, n, "txt", NodeTypeText)
	if n.Text != "hello" || n.SourceText != "hello" || n.FontFamily != "Inter" || n.FontSize != 12 {
		t.Errorf("text fields = %q %q %q %v", n.Text, n.SourceText, n.FontFamily, n.FontSize)
	}
}

func assertNodeDefaults(t *testing.T, n *Node, name string, typ NodeType) {
	t.Helper()
	if n.ID == 0 {
		t.Error("ID should be non-zero")
	}
	if n.Name != name {
		t.Errorf("Name = %q, want %q", n.Name, name)
	}
	if n.Type != typ {
		t.Errorf("Type = %v, want %v", n.Type, typ)
	}
	if n.ScaleX != 1 || n.ScaleY != 1 {
		t.Errorf("Scale = (%v, %v), want (1, 1)", n.ScaleX, n.ScaleY)
	}
	if n.Alpha != 1 || n.FillAlpha != 1 {
		t.Errorf("Alpha = %v, FillAlpha = %v, want 1", n.Alpha, n.FillAlpha)
	}
	if !n.Visible || !n.Active {
		t.Error("new nodes should be visible and active")
	}
}

func TestNodeIDsUnique(t *testing.T) {
	a := NewGroupNode("a")
	b := NewGroupNode("b")
	if a.ID == b.ID {
		t.Error("IDs should be unique")
	}
}

// --- Tree manipulation ---

func TestAddChild(t *testing.T) {
	parent := NewGroupNode("parent")
	child := NewGroupNode("child")
	parent.AddChild(child)
	if child.Parent != parent || parent.NumChildren() != 1 || parent.ChildAt(0) != child {
		t.Error("child not attached")
	}
	if parent.ChildByName("child") != child || parent.ChildByName("nope") != nil {
		t.Error("ChildByName mismatch")
	}
}

func TestAddChildReparents(t *testing.T) {
	a := NewGroupNode("a")
	b := NewGroupNode("b")
	child := NewGroupNode("child")
	a.AddChild(child)
	b.AddChild(child)
	if a.NumChildren() != 0 || b.NumChildren() != 1 || child.Parent != b {
		t.Error("child should move to the new parent")
	}
}

func TestAddChildNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGroupNode("p").AddChild(nil)
}

func TestAddChildCyclePanics(t *testing.T) {
	a := NewGroupNode("a")
	b := NewGroupNode("b")
	a.AddChild(b)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	b.AddChild(a)
}

func TestRemoveChild(t *testing.T) {
	parent := NewGroupNode("parent")
	c1 := NewGroupNode("c1")
	c2 := NewGroupNode("c2")
	parent.AddChild(c1)
	parent.AddChild(c2)
	parent.RemoveChild(c1)
	if parent.NumChildren() != 1 || parent.ChildAt(0) != c2 || c1.Parent != nil {
		t.Error("RemoveChild failed")
	}
	c2.RemoveFromParent()
	c2.RemoveFromParent()
	if parent.NumChildren() != 0 {
		t.Error("RemoveFromParent failed")
	}
}

func TestRemoveChildWrongParentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewGroupNode("a").RemoveChild(NewGroupNode("b"))
}

// --- Disposal ---

func TestDisposeRecursive(t *testing.T) {
	root := NewGroupNode("root")
	mid := NewGroupNode("mid")
	leaf := NewGroupNode("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	mid.Dispose()
	if root.NumChildren() != 0 {
		t.Error("disposed node should be detached")
	}
	if !mid.IsDisposed() || !leaf.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if leaf.Parent != nil {
		t.Error("disposed leaf should have no parent")
	}
	mid.Dispose()
}
