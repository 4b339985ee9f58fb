// Package tail renders the live trace log on a terminal.
//
// The tail subscribes to change notifications only; it ignores the
// first-content signal since there is no view to open.
package tail
