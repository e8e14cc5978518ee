// Package settingsapi is the local HTTP server the burn-in editor saves to
// and loads from. It also previews layouts against timeline metadata.
package settingsapi
