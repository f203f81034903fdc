// Package scaffold copies the starter source files into a freshly created
// project. Template sets are embedded in the binary; a directory on disk can
// be used instead. Files are copied verbatim, without interpolation.
package scaffold
