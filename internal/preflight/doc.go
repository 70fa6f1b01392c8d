// Package preflight provides readiness checks for the services, programs and
// directories printdoctor depends on.
//
// The CLI "printdoctor status" command runs RunAll and renders each Result.
// Failures are informational: the troubleshooter degrades around a missing
// checker or an unreachable PackageKit rather than refusing to run.
package preflight
