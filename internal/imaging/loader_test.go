package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

// writeImageFile encodes img with enc into a file called name under a
// per-test directory.
func writeImageFile(t *testing.T, name string, img image.Image, enc func(io.Writer, image.Image) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := enc(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return writeImageFile(t, "test.png", solidImage(width, height, c), png.Encode)
}

func TestImageCache_LoadReusesDecodedImage(t *testing.T) {
	cache := NewImageCache()
	path := createTestImage(t, 100, 60, color.RGBA{255, 0, 0, 255})

	first, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := first.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("bounds = %dx%d, want 100x60", b.Dx(), b.Dy())
	}

	second, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if first != second {
		t.Error("second Load decoded the file again")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestImageCache_LoadErrors(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, path := range map[string]string{
		"missing": "/nonexistent/path/to/image.png",
		"garbage": garbage,
	} {
		t.Run(name, func(t *testing.T) {
			cache := NewImageCache()
			if _, err := cache.Load(path); err == nil {
				t.Fatal("expected error")
			}
			if cache.Len() != 0 {
				t.Errorf("failed load was cached")
			}
		})
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	a := writeImageFile(t, "a.png", solidImage(8, 8, color.White), png.Encode)
	b := writeImageFile(t, "b.png", solidImage(8, 8, color.Black), png.Encode)
	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load %s: %v", p, err)
		}
	}

	cache.Evict(a)
	cache.Evict("/never/loaded")
	if cache.Len() != 1 {
		t.Fatalf("Len after Evict = %d, want 1", cache.Len())
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", cache.Len())
	}
}

func TestBoundedImageCache_DropsOldest(t *testing.T) {
	cache := NewBoundedImageCache(2)
	paths := make([]string, 3)
	for i, name := range []string{"one.png", "two.png", "three.png"} {
		paths[i] = writeImageFile(t, name, solidImage(4, 4, color.Gray{Y: uint8(i * 80)}), png.Encode)
	}

	first, err := cache.Load(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range paths[1:] {
		if _, err := cache.Load(p); err != nil {
			t.Fatal(err)
		}
	}
	if cache.Len() != 2 {
		t.Fatalf("Len = %d, want 2", cache.Len())
	}

	// paths[0] was dropped, so this decodes a fresh image.
	again, err := cache.Load(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if again == first {
		t.Error("oldest entry was not dropped")
	}
	if cache.Len() != 2 {
		t.Errorf("Len after reload = %d, want 2", cache.Len())
	}
}

func TestBoundedImageCache_EvictThenRefill(t *testing.T) {
	cache := NewBoundedImageCache(1)
	a := writeImageFile(t, "a.png", solidImage(4, 4, color.White), png.Encode)
	b := writeImageFile(t, "b.png", solidImage(4, 4, color.Black), png.Encode)

	if _, err := cache.Load(a); err != nil {
		t.Fatal(err)
	}
	cache.Evict(a)
	if _, err := cache.Load(b); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestImageCache_ConcurrentLoads(t *testing.T) {
	cache := NewBoundedImageCache(4)
	path := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	path := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, path)
	if err != nil {
		t.Fatalf("LoadImageInfo: %v", err)
	}
	if info.Width != 200 || info.Height != 150 {
		t.Errorf("size = %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format = %q, want png", info.Format)
	}
	if info.ColorDepth != "8-bit" {
		t.Errorf("ColorDepth = %q, want 8-bit", info.ColorDepth)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_FormatFromContent(t *testing.T) {
	img := solidImage(10, 10, color.RGBA{0, 0, 255, 255})
	jpegEnc := func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }
	gifEnc := func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }

	tests := []struct {
		name   string
		enc    func(io.Writer, image.Image) error
		format string
	}{
		{"png.jpg", png.Encode, "png"},
		{"photo.jpg", jpegEnc, "jpeg"},
		{"anim.gif", gifEnc, "gif"},
		{"bitmap.bmp", bmp.Encode, "bmp"},
		{"no-extension", bmp.Encode, "bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImageFile(t, tt.name, img, tt.enc)
			info, err := LoadImageInfo(NewImageCache(), path)
			if err != nil {
				t.Fatalf("LoadImageInfo: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format = %q, want %q", info.Format, tt.format)
			}
		})
	}
}

func TestDescribeModel(t *testing.T) {
	tests := []struct {
		name  string
		img   image.Image
		alpha bool
		depth string
	}{
		{"rgba", image.NewRGBA(image.Rect(0, 0, 1, 1)), true, "8-bit"},
		{"nrgba64", image.NewNRGBA64(image.Rect(0, 0, 1, 1)), true, "16-bit"},
		{"gray", image.NewGray(image.Rect(0, 0, 1, 1)), false, "8-bit"},
		{"gray16", image.NewGray16(image.Rect(0, 0, 1, 1)), false, "16-bit"},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 1, 1), image.YCbCrSubsampleRatio420), false, "8-bit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha, depth := describeModel(tt.img)
			if alpha != tt.alpha || depth != tt.depth {
				t.Errorf("describeModel = (%v, %q), want (%v, %q)", alpha, depth, tt.alpha, tt.depth)
			}
		})
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	path := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})

	dims, err := GetDimensions(cache, path)
	if err != nil {
		t.Fatalf("GetDimensions: %v", err)
	}
	if dims.Width != 300 || dims.Height != 200 {
		t.Errorf("dims = %dx%d, want 300x200", dims.Width, dims.Height)
	}

	if _, err := GetDimensions(cache, "/nonexistent/image.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeImage(t *testing.T) {
	path := createTestImage(t, 30, 20, color.RGBA{10, 20, 30, 255})
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, format, err := DecodeImage(f)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Errorf("bounds = %dx%d, want 30x20", b.Dx(), b.Dy())
	}

	if _, _, err := DecodeImage(strings.NewReader("definitely not an image")); err == nil {
		t.Error("DecodeImage should fail for invalid data")
	}
}

// declaredSizePNG returns a valid 1x1 PNG whose header claims width x height.
func declaredSizePNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(1, 1, red)); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	// IHDR data starts after the signature (8), length (4) and type (4).
	binary.BigEndian.PutUint32(b[16:20], width)
	binary.BigEndian.PutUint32(b[20:24], height)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))
	return b
}

func TestDecodeImageLimit(t *testing.T) {
	var small bytes.Buffer
	if err := png.Encode(&small, solidImage(40, 25, green)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		data      []byte
		maxPixels int64
		tooLarge  bool
	}{
		{"no limit", small.Bytes(), 0, false},
		{"exact fit", small.Bytes(), 1000, false},
		{"one pixel over", small.Bytes(), 999, true},
		{"huge declared size", declaredSizePNG(t, 60000, 60000), 64 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, format, err := DecodeImageLimit(bytes.NewReader(tt.data), tt.maxPixels)
			if tt.tooLarge {
				if !errors.Is(err, ErrImageTooLarge) {
					t.Fatalf("err = %v, want ErrImageTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeImageLimit: %v", err)
			}
			if format != "png" {
				t.Errorf("format = %q, want png", format)
			}
			if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 25 {
				t.Errorf("bounds = %v, want 40x25", b)
			}
			if r, g, bl := channelsAt(img, 39, 24); r != 0 || g != 255 || bl != 0 {
				t.Errorf("pixel = (%d,%d,%d), want green", r, g, bl)
			}
		})
	}
}

func TestDecodeImageLimit_Garbage(t *testing.T) {
	_, _, err := DecodeImageLimit(strings.NewReader("not an image"), 100)
	if err == nil || errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want a decode error", err)
	}
}
