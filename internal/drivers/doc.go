// Package drivers works out which driver programs a PPD relies on that are not
// installed, and which OS packages would provide them.
//
// Programs come from two places in the PPD: the foomatic-rip command line
// (FoomaticRIPCommandLine, including Ghostscript IJS servers) and the CUPS
// filter declarations (*cupsFilter and *cupsFilter2).
package drivers
