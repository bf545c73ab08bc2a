package colorregion

import (
	"math"
	"testing"
)

var sampleColors = []RGB{
	{0, 0, 0},
	{255, 255, 255},
	{255, 0, 0},
	{0, 255, 0},
	{0, 0, 255},
	{200, 50, 50},
	{10, 10, 10},
	{128, 128, 128},
	{250, 5, 5},
	{17, 201, 99},
}

func TestColorDistance_Identity(t *testing.T) {
	for _, c := range sampleColors {
		if d := ColorDistance(c, c); d != 0 {
			t.Errorf("ColorDistance(%v, %v) = %g, want 0", c, c, d)
		}
	}
}

func TestColorDistance_Symmetry(t *testing.T) {
	for _, a := range sampleColors {
		for _, b := range sampleColors {
			ab := ColorDistance(a, b)
			ba := ColorDistance(b, a)
			if ab != ba {
				t.Errorf("ColorDistance(%v, %v) = %g but reversed = %g", a, b, ab, ba)
			}
			if ab < 0 {
				t.Errorf("ColorDistance(%v, %v) = %g, want non-negative", a, b, ab)
			}
		}
	}
}

func TestColorDistance_KnownValues(t *testing.T) {
	tests := []struct {
		name    string
		a, b    RGB
		wantMin float64
		wantMax float64
	}{
		// White has L=100, black L=0 and both have a=b=0.
		{"black to white", RGB{0, 0, 0}, RGB{255, 255, 255}, 99.5, 100.5},
		{"near red", RGB{255, 0, 0}, RGB{250, 5, 5}, 0.1, 5},
		{"red to green", RGB{255, 0, 0}, RGB{0, 255, 0}, 150, 190},
		{"one unit gray", RGB{128, 128, 128}, RGB{129, 129, 129}, 0.01, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ColorDistance(tt.a, tt.b)
			if d < tt.wantMin || d > tt.wantMax {
				t.Errorf("ColorDistance = %.3f, want in [%g, %g]", d, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestRGB_Lab(t *testing.T) {
	l, a, b := RGB{255, 255, 255}.Lab()
	if math.Abs(l-100) > 0.01 || math.Abs(a) > 0.01 || math.Abs(b) > 0.01 {
		t.Errorf("white Lab = (%.3f, %.3f, %.3f), want (100, 0, 0)", l, a, b)
	}

	// sRGB red is roughly L=53.2, a=80.1, b=67.2
	l, a, b = RGB{255, 0, 0}.Lab()
	if math.Abs(l-53.2) > 0.5 || math.Abs(a-80.1) > 0.5 || math.Abs(b-67.2) > 0.5 {
		t.Errorf("red Lab = (%.3f, %.3f, %.3f), want about (53.2, 80.1, 67.2)", l, a, b)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#FF0000", RGB{255, 0, 0}, false},
		{"#c83232", RGB{200, 50, 50}, false},
		{"#fff", RGB{255, 255, 255}, false},
		{"FF0000", RGB{}, true},
		{"#GG0000", RGB{}, true},
		{"", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRGB_Hex(t *testing.T) {
	if got := (RGB{200, 50, 50}).Hex(); got != "#C83232" {
		t.Errorf("Hex: got %s, want #C83232", got)
	}
}
