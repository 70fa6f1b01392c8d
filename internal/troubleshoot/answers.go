package troubleshoot

import "maps"

// Answer keys shared between questions.
const (
	KeyQueueListed        = "cups_queue_listed"
	KeyQueue              = "cups_queue"
	KeyPrinterRemote      = "cups_printer_remote"
	KeyPPDValid           = "cups_printer_ppd_valid"
	KeyPPDDefaults        = "cups_printer_ppd_defaults"
	KeyCupstestppdOutput  = "cupstestppd_output"
	KeyMissingPkgsAndExes = "missing_pkgs_and_exes"
	KeyPackagesInstalled  = "packages_installed"
)

// Answers maps fact names to values. A key is present only if the question
// that owns it produced it.
type Answers map[string]any

// Has reports whether key is set.
func (a Answers) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Bool returns a boolean answer. Missing or non-boolean values report ok=false.
func (a Answers) Bool(key string) (bool, bool) {
	v, ok := a[key].(bool)
	return v, ok
}

// String returns a string answer.
func (a Answers) String(key string) (string, bool) {
	v, ok := a[key].(string)
	return v, ok
}

// Strings returns a string-slice answer.
func (a Answers) Strings(key string) ([]string, bool) {
	v, ok := a[key].([]string)
	return v, ok
}

// Merge returns a new Answers holding a overlaid with other.
func (a Answers) Merge(other Answers) Answers {
	out := make(Answers, len(a)+len(other))
	maps.Copy(out, a)
	maps.Copy(out, other)
	return out
}

// Clone returns a shallow copy.
func (a Answers) Clone() Answers {
	return maps.Clone(a)
}
