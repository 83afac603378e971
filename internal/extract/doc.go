// Package extract turns fetched HTML into a structured document and derives
// content signals from its text.
//
// Parse never fails: malformed or non-HTML input degrades to an empty
// title and content. Analyze is a pure function of the normalized text and
// is safe to call from any goroutine.
package extract
