// Package runtime runs external programs for the generator and validates the
// environment before anything touches the disk. Executor abstracts os/exec so
// that pipeline steps can be tested with a fake; Validate checks the Node.js
// version and the presence of the package manager executable.
package runtime
