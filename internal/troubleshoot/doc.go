// Package troubleshoot runs a sequence of diagnostic questions, each of which
// may show a page to the user and contributes named facts (answers) for the
// questions after it.
package troubleshoot
