package hexgrid

import (
	"testing"
)

func TestKey_CollisionFree(t *testing.T) {
	seen := make(map[string]AxialCoordinate)
	for x := -30; x <= 30; x++ {
		for z := -30; z <= 30; z++ {
			c := FromCoordinates(x, z)
			key := c.Key()
			if prev, ok := seen[key]; ok {
				t.Fatalf("key %q shared by %v and %v", key, prev, c)
			}
			seen[key] = c
		}
	}
}

func TestParseKey_RoundTrip(t *testing.T) {
	for _, c := range []AxialCoordinate{{0, 0}, {3, -7}, {-12, 40}, {-1, -1}} {
		got, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q) failed: %v", c.Key(), err)
		}
		if got != c {
			t.Errorf("ParseKey(%q): got %v, want %v", c.Key(), got, c)
		}
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "12", "a,1", "1,b", "1;2"} {
		if _, err := ParseKey(key); err == nil {
			t.Errorf("ParseKey(%q): expected error", key)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b AxialCoordinate
		want int
	}{
		{FromCoordinates(0, 0), FromCoordinates(0, 0), 0},
		{FromCoordinates(0, 0), FromCoordinates(1, 0), 1},
		{FromCoordinates(0, 0), FromCoordinates(1, -1), 1},
		{FromCoordinates(0, 0), FromCoordinates(2, 1), 3},
		{FromCoordinates(-2, 3), FromCoordinates(2, -1), 4},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v): got %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNeighbors_AllAtDistanceOne(t *testing.T) {
	c := FromCoordinates(4, -2)
	for i, n := range c.Neighbors() {
		if n != c.Add(NeighborDirections[i]) {
			t.Errorf("neighbor %d: got %v, want %v", i, n, c.Add(NeighborDirections[i]))
		}
		if d := Distance(c, n); d != 1 {
			t.Errorf("neighbor %v: distance got %d, want 1", n, d)
		}
	}
}

func TestOffsetConversion(t *testing.T) {
	tests := []struct {
		x, y  int
		o     Orientation
		wantX int
		wantZ int
	}{
		{0, 0, PointyTop, 0, 0},
		{3, 1, PointyTop, 3, 1},
		{3, 2, PointyTop, 2, 2},
		{3, 5, PointyTop, 1, 5},
		{0, 0, FlatTop, 0, 0},
		{1, 3, FlatTop, 1, 3},
		{2, 3, FlatTop, 2, 2},
		{5, 3, FlatTop, 5, 1},
	}
	for _, tt := range tests {
		gotX := OffsetToAxialX(tt.x, tt.y, tt.o)
		gotZ := OffsetToAxialZ(tt.x, tt.y, tt.o)
		if gotX != tt.wantX || gotZ != tt.wantZ {
			t.Errorf("offset (%d,%d) %s: got (%d,%d), want (%d,%d)",
				tt.x, tt.y, tt.o, gotX, gotZ, tt.wantX, tt.wantZ)
		}
	}
}

func TestAxialToOffset_Inverse(t *testing.T) {
	for _, o := range []Orientation{PointyTop, FlatTop} {
		for x := -5; x <= 5; x++ {
			for y := -5; y <= 5; y++ {
				ox, oy := AxialToOffset(OffsetToAxial(x, y, o), o)
				if ox != x || oy != y {
					t.Fatalf("%s: offset (%d,%d) came back as (%d,%d)", o, x, y, ox, oy)
				}
			}
		}
	}
}

func TestParseOrientation(t *testing.T) {
	tests := map[string]Orientation{
		"pointy":     PointyTop,
		"POINTY_TOP": PointyTop,
		"flat":       FlatTop,
		" flat-top ": FlatTop,
	}
	for in, want := range tests {
		got, err := ParseOrientation(in)
		if err != nil {
			t.Fatalf("ParseOrientation(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseOrientation(%q): got %s, want %s", in, got, want)
		}
	}
	if _, err := ParseOrientation("diagonal"); err == nil {
		t.Error("ParseOrientation(diagonal): expected error")
	}
}
