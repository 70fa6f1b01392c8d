// Package ppdcheck implements the "Check PPD sanity" troubleshooter page.
//
// The page downloads the queue's PPD, asks the PPD reader whether it is
// usable and, when it is not, shows the conformance checker's explanation.
// For usable PPDs of local queues it looks for driver programs that are not
// installed and offers to install the package providing them.
package ppdcheck
