// Package burnin builds burn-in overlay text for DaVinci Resolve stills from
// timeline marker metadata. It re-exports the common entry points of the
// template, metadata and overlay packages.
package burnin
