package render

import (
	"testing"

	"github.com/chewxy/math32"
)

func near(a, b float32) bool { return math32.Abs(a-b) < 1e-4 }

func nearVec(a, b Vec3) bool { return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) }

func TestMat4MulIdentity(t *testing.T) {
	a := Mat4Identity()
	b := Mat4Translate(V3(1, 2, 3))
	if got := Mat4Mul(a, b); got != b {
		t.Fatalf("identity*a mismatch")
	}
	if got := Mat4Mul(b, a); got != b {
		t.Fatalf("a*identity mismatch")
	}
}

func TestLookAtNotIdentity(t *testing.T) {
	m := Mat4LookAt(V3(0, 0, 3), V3(0, 0, 0), V3(0, 1, 0))
	if m == Mat4Identity() {
		t.Fatalf("lookAt unexpectedly identity")
	}
	if got := m.MulPoint(V3(0, 0, 0)); !near(got.Z, -3) {
		t.Fatalf("origin in view space z = %v, want -3", got.Z)
	}
}

func TestComposeDecompose(t *testing.T) {
	pos := V3(1, -2, 0.5)
	rot := QuatFromAxisAngle(V3(0, 1, 0), -math32.Pi/2)
	scale := V3(2, 2, 2)

	p, r, s := Mat4Compose(pos, rot, scale).Decompose()
	if !nearVec(p, pos) {
		t.Fatalf("pos = %v, want %v", p, pos)
	}
	if !nearVec(s, scale) {
		t.Fatalf("scale = %v, want %v", s, scale)
	}
	v := V3(1, 0, 0)
	if got, want := r.Rotate(v), rot.Rotate(v); !nearVec(got, want) {
		t.Fatalf("rotation = %v, want %v", got, want)
	}
}

func TestQuatRotateYaw(t *testing.T) {
	q := QuatFromAxisAngle(V3(0, 1, 0), math32.Pi/2)
	if got := q.Rotate(V3(1, 0, 0)); !nearVec(got, V3(0, 0, -1)) {
		t.Fatalf("Rotate(+X) = %v, want -Z", got)
	}
	m := Mat4Rotate(q)
	if got := m.MulDir(V3(1, 0, 0)); !nearVec(got, V3(0, 0, -1)) {
		t.Fatalf("Mat4Rotate(+X) = %v, want -Z", got)
	}
}

func TestBoxTransform(t *testing.T) {
	b := EmptyBox().ExpandByPoint(V3(-1, -1, -1)).ExpandByPoint(V3(1, 2, 3))
	if got := b.Volume(); !near(got, 2*3*4) {
		t.Fatalf("Volume() = %v, want 24", got)
	}
	moved := b.Transform(Mat4Translate(V3(1, 0, 0)))
	if !nearVec(moved.Center(), V3(1, 0.5, 1)) {
		t.Fatalf("Center() = %v", moved.Center())
	}
	if !EmptyBox().IsEmpty() || EmptyBox().Volume() != 0 {
		t.Fatalf("empty box has volume")
	}
}
