package geom

import (
	"math"
	"testing"
)

func TestQuatRotateFrontQuarterTurns(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		want  Vec3
	}{
		{name: "identity", angle: 0, want: Vec3{Z: -1}},
		{name: "quarter left", angle: math.Pi / 2, want: Vec3{X: -1}},
		{name: "quarter right", angle: -math.Pi / 2, want: Vec3{X: 1}},
		{name: "half turn", angle: math.Pi, want: Vec3{Z: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AngleAxis(tc.angle, Up).Rotate(Front)
			if got.Dist(tc.want) > 1e-9 {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestQuatMulComposesYawAngles(t *testing.T) {
	a := AngleAxis(math.Pi/6, Up)
	b := AngleAxis(math.Pi/3, Up)
	composed := a.Mul(b)
	direct := AngleAxis(math.Pi/2, Up)

	got := composed.Rotate(Front)
	want := direct.Rotate(Front)
	if got.Dist(want) > 1e-9 {
		t.Fatalf("expected composed rotation %+v, got %+v", want, got)
	}
}

func TestQuatNormalizeZeroFallsBackToIdentity(t *testing.T) {
	q := Quat{}.Normalize()
	if q != QuatIdentity() {
		t.Fatalf("expected identity, got %+v", q)
	}
}

func TestQuatRotatePreservesLength(t *testing.T) {
	q := AngleAxis(1.234, Up)
	v := Vec3{X: 3, Y: -1, Z: 2}
	if math.Abs(q.Rotate(v).Len()-v.Len()) > 1e-9 {
		t.Fatalf("rotation changed vector length: %f vs %f", q.Rotate(v).Len(), v.Len())
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Fatal("finite vector reported non-finite")
	}
	if (Vec3{X: math.Inf(1)}).IsFinite() {
		t.Fatal("infinite vector reported finite")
	}
	if (Vec3{Z: math.NaN()}).IsFinite() {
		t.Fatal("NaN vector reported finite")
	}
}
