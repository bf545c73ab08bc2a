// Package colorregion finds the dominant colors of an image, places a
// representative coordinate on each, and pairs regions across two images by
// perceptual color distance.
//
// The output is meant for choreographing background crossfades: when two
// slides share a color, the transition can be anchored on that color's
// position in both images instead of the frame center.
//
// # Pipeline
//
//  1. The image is copied into a non-premultiplied RGBA buffer.
//  2. Every Nth pixel (Config.SampleStride) is sampled; pixels with alpha
//     below Config.AlphaThreshold are skipped.
//  3. Each channel is rounded to the nearest multiple of Config.QuantizeStep
//     and counted per bucket. The first sample and first coordinate of each
//     bucket are kept.
//  4. Buckets are ranked by count and the top MaxRegions become regions.
//
// # Region Fields
//
// Coordinates is the first sampled pixel of the bucket, not a centroid.
// Size is a pseudo-random value in [0.1, 0.3) and does not measure area.
// Confidence is 0.9 - 0.1*rank and keeps falling below zero after rank 9.
//
// # Distance
//
// ColorDistance is the CIE76 Delta E between the two colors in L*a*b*
// (D65 white point), with L on the 0-100 scale.
//
// # Thread Safety
//
// An Analyzer may be shared between goroutines. Its configuration is
// read-only and its random source is guarded by a mutex. Every call works
// on its own buffer.
package colorregion
