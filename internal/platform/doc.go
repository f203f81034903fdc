// Package platform holds process-level helpers shared by the generator:
// logger configuration plus the filesystem operations used by the copy and
// cleanup steps. Permission helpers are no-ops on Windows.
package platform
