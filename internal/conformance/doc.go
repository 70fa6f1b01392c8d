// Package conformance runs the external PPD conformance checker (cupstestppd)
// and captures its diagnostic output.
package conformance
