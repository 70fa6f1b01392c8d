// Package ppd reads the structural subset of PostScript Printer Description
// files that the troubleshooter needs: option groups and subgroups, UI
// options with their choices and defaults, and raw main-keyword attributes
// such as *cupsFilter and *FoomaticRIPCommandLine.
//
// Syntax problems are reported as *SyntaxError values whose codes follow the
// libcups ppdOpen status names. The reader is deliberately lenient about
// anything that does not affect structure; full conformance checking belongs
// to cupstestppd (see package conformance).
package ppd
