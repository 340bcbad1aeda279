package card

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestNeedleAngle(t *testing.T) {
	tests := []struct {
		pct  int
		want float64
	}{
		{0, math.Pi},
		{25, 1.25 * math.Pi},
		{50, 1.5 * math.Pi},
		{100, 2 * math.Pi},
	}
	for _, tt := range tests {
		if got := NeedleAngle(tt.pct); math.Abs(got-tt.want) > eps {
			t.Errorf("NeedleAngle(%d) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestNeedleEnd(t *testing.T) {
	g := DefaultParams().MainGauge
	cx, cy := 361.5, 200.0

	for pct := 0; pct <= 100; pct++ {
		x, y := NeedleEnd(cx, cy, g, pct)
		a := math.Pi + float64(pct)/100*math.Pi
		wantX, wantY := cx+g.NeedleLength*math.Cos(a), cy+g.NeedleLength*math.Sin(a)
		if math.Abs(x-wantX) > eps || math.Abs(y-wantY) > eps {
			t.Fatalf("NeedleEnd(%d) = (%v, %v), want (%v, %v)", pct, x, y, wantX, wantY)
		}
		if y > cy+eps {
			t.Errorf("NeedleEnd(%d) points below the centre", pct)
		}
		if d := math.Hypot(x-cx, y-cy); math.Abs(d-g.NeedleLength) > 1e-6 {
			t.Errorf("NeedleEnd(%d) length = %v, want %v", pct, d, g.NeedleLength)
		}
	}

	if x, _ := NeedleEnd(cx, cy, g, 30); x >= cx {
		t.Errorf("needle at 30%% should be left of centre, x = %v", x)
	}
	if x, _ := NeedleEnd(cx, cy, g, 70); x <= cx {
		t.Errorf("needle at 70%% should be right of centre, x = %v", x)
	}
}

func TestTickAngles(t *testing.T) {
	angles := TickAngles()
	if len(angles) != TickCount {
		t.Fatalf("got %d ticks, want %d", len(angles), TickCount)
	}
	if math.Abs(angles[0]-math.Pi) > eps || math.Abs(angles[len(angles)-1]-2*math.Pi) > eps {
		t.Errorf("ticks should span [π, 2π], got %v..%v", angles[0], angles[len(angles)-1])
	}
	for i := 1; i < len(angles); i++ {
		if step := angles[i] - angles[i-1]; math.Abs(step-math.Pi/5) > eps {
			t.Errorf("tick step %d = %v, want π/5", i, step)
		}
	}
}

func TestQualitativeLabel(t *testing.T) {
	labels := []PercentLabel{
		{Text: "спокойно", UpTo: 20},
		{Text: "тревожно", UpTo: 60},
		{Text: "очень тревожно", UpTo: 90},
	}

	tests := []struct {
		name   string
		pct    int
		labels []PercentLabel
		want   string
	}{
		{"lowest", 0, labels, "спокойно"},
		{"inclusive bound", 20, labels, "спокойно"},
		{"next bucket", 21, labels, "тревожно"},
		{"upper bucket", 90, labels, "очень тревожно"},
		{"fallback to last", 95, labels, "очень тревожно"},
		{"no labels", 50, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualitativeLabel(tt.pct, tt.labels); got != tt.want {
				t.Errorf("QualitativeLabel(%d) = %q, want %q", tt.pct, got, tt.want)
			}
		})
	}
}
