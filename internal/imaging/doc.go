// Package imaging provides the image plumbing around color region analysis.
//
// It loads and caches decoded images, samples single pixels, crops and
// downsizes images before analysis, draws region markers for previews,
// renders crossfade frames, and measures displacement between two points.
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Coordinates are inclusive for single points
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. Operations
// on the same image should be synchronized by the caller if the image is mutable.
//
// # Supported Formats
//
// PNG, JPEG and GIF through the standard library, BMP and WebP through
// golang.org/x/image. The reported format comes from the decoder, never the
// file extension. Rendered output (crops, previews, crossfade frames)
// is always PNG, base64 encoded for transport.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Coordinates outside image bounds
//   - Invalid region specifications (x1 >= x2 or y1 >= y2)
//   - File I/O errors during image loading
//   - Encoding errors during image output
//
// # Performance Considerations
//
// ImageCache avoids decoding the same file twice. NewBoundedImageCache caps
// how many decoded images stay resident; the oldest loaded one is dropped
// first. An unbounded cache only shrinks through Evict or Clear.
package imaging
