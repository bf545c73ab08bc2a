package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"slices"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DecodeImage decodes an image from r in any registered format (PNG, JPEG,
// GIF, BMP, WebP) and reports the format name.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// ErrImageTooLarge reports an image whose header declares more pixels than
// the caller allows.
var ErrImageTooLarge = errors.New("image too large")

// DecodeImageLimit is DecodeImage for untrusted input. It reads the header
// first and fails with ErrImageTooLarge, before allocating any pixels, when
// the image has more than maxPixels pixels. maxPixels <= 0 disables the
// check.
func DecodeImageLimit(r io.Reader, maxPixels int64) (image.Image, string, error) {
	if maxPixels <= 0 {
		return DecodeImage(r)
	}

	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, format, fmt.Errorf("%w: %s %dx%d exceeds %d pixels", ErrImageTooLarge, format, cfg.Width, cfg.Height, maxPixels)
	}
	// Replay the bytes the header read consumed.
	return DecodeImage(io.MultiReader(&head, r))
}

// ImageCache keeps decoded images keyed by the exact path they were loaded
// from, so repeated tool calls on the same file skip disk I/O and decoding.
//
// A cache created with a positive capacity drops the oldest loaded entry
// once it is full. Capacity 0 never evicts on its own; use Evict or Clear.
//
// ImageCache is safe for concurrent use by multiple goroutines.
type ImageCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	order    []string // load order, oldest first
	capacity int
}

type cacheEntry struct {
	img    image.Image
	format string
}

// NewImageCache creates an unbounded cache.
func NewImageCache() *ImageCache {
	return NewBoundedImageCache(0)
}

// NewBoundedImageCache creates a cache holding at most capacity images.
// capacity <= 0 means unbounded.
func NewBoundedImageCache(capacity int) *ImageCache {
	return &ImageCache{
		entries:  make(map[string]cacheEntry),
		capacity: max(capacity, 0),
	}
}

// Load returns the decoded image at path, reading it on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	img, _, err := c.LoadFormat(path)
	return img, err
}

// LoadFormat is Load that also reports the decoder that read the file
// ("png", "jpeg", "gif", "bmp" or "webp").
func (c *ImageCache) LoadFormat(path string) (image.Image, string, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e.img, e.format, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := DecodeImage(f)
	if err != nil {
		return nil, "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have loaded the same path meanwhile.
	if _, ok := c.entries[path]; !ok {
		c.order = append(c.order, path)
	}
	c.entries[path] = cacheEntry{img: img, format: format}
	for c.capacity > 0 && len(c.order) > c.capacity {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return img, format, nil
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.order = nil
	c.mu.Unlock()
}

// Evict removes the image loaded from path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; !ok {
		return
	}
	delete(c.entries, path)
	if i := slices.Index(c.order, path); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// ImageInfo is what image_load reports about a file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format names the decoder that read the file: "png", "jpeg", "gif",
	// "bmp" or "webp". The file extension is not consulted.
	Format string `json:"format"`

	ColorDepth    string `json:"color_depth"` // "8-bit" or "16-bit" per channel
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, format, err := cache.LoadFormat(path)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        format,
		FileSizeBytes: fi.Size(),
	}
	info.HasAlpha, info.ColorDepth = describeModel(img)
	return info, nil
}

// describeModel derives alpha presence and channel depth from the concrete
// image type the decoder produced. Paletted images count as having alpha
// because a palette entry may be transparent.
func describeModel(img image.Image) (alpha bool, depth string) {
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64:
		return true, "16-bit"
	case *image.Gray16:
		return false, "16-bit"
	case *image.RGBA, *image.NRGBA, *image.Paletted, *image.NYCbCrA:
		return true, "8-bit"
	}
	return false, "8-bit"
}

// DimensionsResult is the image_dimensions reply.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the size of the image at path, loading it through
// cache.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Size()
	return &DimensionsResult{Width: size.X, Height: size.Y}, nil
}
