// Package pkgdb maps driver programs to the OS packages that ship them.
//
// Lookups consult, in order, the user catalog, the built-in catalog of
// well-known printer driver programs, a SQLite cache of earlier answers and
// finally the distribution's own file-to-package query (dnf repoquery or
// apt-file). Cache writes are serialized across processes with a lock file.
package pkgdb
