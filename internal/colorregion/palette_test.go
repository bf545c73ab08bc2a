package colorregion

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPalette_Histogram(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	img := splitImage(100, 100, 80, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 255, 0, 255})

	p, err := a.Palette(img, "", 5)
	if err != nil {
		t.Fatalf("Palette failed: %v", err)
	}
	if p.Method != PaletteHistogram {
		t.Errorf("Method: got %s, want histogram", p.Method)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("colors: got %d, want 2", len(p.Colors))
	}
	if p.Colors[0].Hex != "#FF0000" || math.Abs(p.Colors[0].Weight-0.8) > 1e-9 {
		t.Errorf("first color: got %s %.3f, want #FF0000 0.8", p.Colors[0].Hex, p.Colors[0].Weight)
	}
	if math.Abs(p.WeightMean-0.5) > 1e-9 {
		t.Errorf("WeightMean: got %g, want 0.5", p.WeightMean)
	}
	if p.WeightStdDev <= 0 {
		t.Errorf("WeightStdDev: got %g, want > 0", p.WeightStdDev)
	}
}

func TestPalette_KMeans(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	img := splitImage(100, 100, 80, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255})

	p, err := a.Palette(img, PaletteKMeans, 2)
	if err != nil {
		t.Fatalf("Palette failed: %v", err)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("colors: got %d, want 2", len(p.Colors))
	}
	if ColorDistance(p.Colors[0].Color, RGB{255, 0, 0}) > 1 {
		t.Errorf("dominant cluster: got %v, want red", p.Colors[0].Color)
	}
	if math.Abs(p.Colors[0].Weight-0.8) > 0.01 {
		t.Errorf("dominant weight: got %.3f, want 0.8", p.Colors[0].Weight)
	}
}

func TestPalette_DominantColor(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	img := solidImage(64, 64, color.NRGBA{255, 0, 0, 255})

	p, err := a.Palette(img, PaletteDominantColor, 3)
	if err != nil {
		t.Fatalf("Palette failed: %v", err)
	}
	if len(p.Colors) == 0 || len(p.Colors) > 3 {
		t.Fatalf("colors: got %d, want 1..3", len(p.Colors))
	}
	foundRed := false
	for _, c := range p.Colors {
		if ColorDistance(c.Color, RGB{255, 0, 0}) < 5 {
			foundRed = true
		}
	}
	if !foundRed {
		t.Errorf("expected red in palette, got %+v", p.Colors)
	}
}

func TestPalette_EmptyImage(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	for _, method := range []PaletteMethod{PaletteHistogram, PaletteKMeans, PaletteDominantColor} {
		t.Run(string(method), func(t *testing.T) {
			p, err := a.Palette(empty, method, 3)
			if err != nil {
				t.Fatalf("Palette failed: %v", err)
			}
			if len(p.Colors) != 0 {
				t.Errorf("colors: got %d, want 0", len(p.Colors))
			}
		})
	}
}

func TestPalette_UnknownMethod(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	if _, err := a.Palette(solidImage(4, 4, color.White), "median-cut", 3); err == nil {
		t.Error("Palette should fail for an unknown method")
	}
}

func TestPalette_NilImage(t *testing.T) {
	a := seededAnalyzer(DefaultConfig())
	if _, err := a.Palette(nil, PaletteKMeans, 3); err == nil {
		t.Error("Palette should fail for a nil image")
	}
}
