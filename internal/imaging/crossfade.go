package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// CrossfadeFrame renders the crossfade from a to b at the given progress
// (0 = only a, 1 = only b). b is stretched to a's size first.
func CrossfadeFrame(a, b image.Image, progress float64) (image.Image, error) {
	if progress < 0 || progress > 1 {
		return nil, fmt.Errorf("progress %g outside [0,1]", progress)
	}
	ab := a.Bounds()
	if ab.Empty() {
		return nil, fmt.Errorf("source image is empty")
	}
	if b.Bounds().Empty() {
		return nil, fmt.Errorf("target image is empty")
	}

	fg := b
	if b.Bounds().Dx() != ab.Dx() || b.Bounds().Dy() != ab.Dy() {
		fg = imaging.Resize(b, ab.Dx(), ab.Dy(), imaging.Lanczos)
	}
	return blend.Opacity(imaging.Clone(a), fg, progress), nil
}
