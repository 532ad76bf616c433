// Package osd is a software (CPU-side) 2D vector graphics engine.
//
// It rasterizes paths and primitive shapes into caller-owned RGBA pixel
// buffers, with affine transforms, a save/restore graphics-state stack,
// clipping, anti-aliasing, stroke styling (caps, joins, dashing), and
// alpha/opaque compositing.
//
// The package exposes two layers:
//
//   - Value types (Matrix, Path, Color) and the Framebuffer object, for
//     direct in-process use.
//   - A handle-based API (CreateFrameBuffer, CreatePath, PathFill, ...)
//     backed by process-wide generation-checked registries, intended for
//     callers on the far side of a foreign-function boundary. An invalid,
//     destroyed, or wrong-kind handle is never fatal: mutating calls
//     degrade to no-ops and queries return documented sentinels.
//
// Pixel buffers hold premultiplied RGBA, one byte per channel. A single
// framebuffer must only be driven from one goroutine at a time; the
// registries themselves are safe for concurrent use from independent
// framebuffers.
package osd
