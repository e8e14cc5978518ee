// Package template compiles burn-in caption templates such as
// "%Scene / %Shot - %Take %Camera#" into an ordered list of literal and token
// segments plus the de-duplicated list of referenced token keys.
//
// Compilation never fails: malformed or empty templates simply produce fewer
// segments. A literal percent sign followed by token characters is always
// read as a token; there is no escape syntax.
package template
