package framebridge

import (
	"math"
	"testing"
)

func transformsEqual(a, b [6]float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestLocalTransformIdentity(t *testing.T) {
	n := NewGroupNode("n")
	if got := computeLocalTransform(n); !transformsEqual(got, identityTransform) {
		t.Errorf("local = %v, want identity", got)
	}
}

func TestLocalTransformPivotScaleRotate(t *testing.T) {
	n := NewGroupNode("n")
	n.SetPivot(10, 0)
	n.SetScale(2, 2)
	n.SetRotation(math.Pi / 2)
	n.SetPosition(100, 100)
	m := computeLocalTransform(n)

	// The pivot lands on the position.
	x, y := transformPoint(m, 10, 0)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-100) > 1e-9 {
		t.Errorf("pivot -> (%v, %v), want (100, 100)", x, y)
	}
	// One unit right of the pivot rotates to two units down.
	x, y = transformPoint(m, 11, 0)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-102) > 1e-9 {
		t.Errorf("(11, 0) -> (%v, %v), want (100, 102)", x, y)
	}
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 1, -1, 3, 5, 7}
	if got := multiplyAffine(m, invertAffine(m)); !transformsEqual(got, identityTransform) {
		t.Errorf("m * inv(m) = %v", got)
	}
	if got := invertAffine([6]float64{0, 0, 0, 0, 1, 1}); got != identityTransform {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestWorldTransformPropagation(t *testing.T) {
	root := NewGroupNode("root")
	parent := NewGroupNode("parent")
	child := NewGroupNode("child")
	root.AddChild(parent)
	parent.AddChild(child)
	parent.SetPosition(10, 20)
	parent.SetAlpha(0.5)
	child.SetPosition(1, 2)
	child.SetAlpha(0.5)

	updateWorldTransform(root, identityTransform, 1, false)
	wt := child.WorldTransform()
	if wt[4] != 11 || wt[5] != 22 {
		t.Errorf("child translation = (%v, %v), want (11, 22)", wt[4], wt[5])
	}
	if child.WorldAlpha() != 0.25 {
		t.Errorf("child WorldAlpha = %v, want 0.25", child.WorldAlpha())
	}

	// A clean child follows a dirty parent.
	parent.SetPosition(0, 0)
	updateWorldTransform(root, identityTransform, 1, false)
	if wt := child.WorldTransform(); wt[4] != 1 || wt[5] != 2 {
		t.Errorf("child translation after parent move = (%v, %v), want (1, 2)", wt[4], wt[5])
	}
}

func TestWorldLocalRoundTrip(t *testing.T) {
	n := NewGroupNode("n")
	n.SetPosition(30, 40)
	n.SetScale(2, 4)
	n.SetRotation(0.3)
	updateWorldTransform(n, identityTransform, 1, false)
	wx, wy := n.LocalToWorld(3, 5)
	lx, ly := n.WorldToLocal(wx, wy)
	if math.Abs(lx-3) > 1e-9 || math.Abs(ly-5) > 1e-9 {
		t.Errorf("round trip = (%v, %v), want (3, 5)", lx, ly)
	}
}
