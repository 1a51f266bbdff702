// Package render is a small software 3D engine: a node graph of meshes and
// thick lines, physically flavoured materials, a perspective camera with a
// damped orbit controller, and a z-buffered rasterizer that draws into a
// caller-provided Target.
//
// Pipeline (fixed):
//
//	Node graph → World transforms → Sort (opaque, then transparent) →
//	Projection → Rasterization → Tone mapping → Dither → Frame output.
//
// Geometry and texture uploads are tracked by a Device, which allocates a
// buffer the first time a resource is drawn and releases it on Dispose.
package render
