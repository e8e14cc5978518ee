// Package metadata resolves burn-in token keys against clip/marker metadata
// exported from editing timelines.
//
// Exports differ in casing and separators from tool to tool ("Camera #",
// "Camera_#", "camera#"), so resolution is layered:
//
//  1. mapped paths: a static KeyMap lists dotted candidate paths per
//     canonical key, tried in priority order;
//  2. dynamic fallback: field names are normalised and searched at the top
//     level, then under "metadata", then under "clip_properties".
//
// Documents are read-only and keep the field order of their JSON source, so
// the fallback search is deterministic.
package metadata
