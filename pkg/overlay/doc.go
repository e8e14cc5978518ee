// Package overlay turns burn-in layout settings into preview text.
//
// It owns the persisted element record, the text builder that substitutes
// compiled templates against a metadata document, the Good_Take conditional
// formatting rule and the normalisation applied when settings are saved
// (Sanitize) or loaded (Prepare).
package overlay
