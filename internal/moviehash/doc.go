// Package moviehash computes the 64-bit content fingerprint that subtitle
// indexes use to key video files.
//
// The value is the file size plus the sum of every little-endian 64-bit word
// in the first and last 64 KiB of the file, with unsigned wrap-around. Only
// two fixed windows are read, so the cost does not grow with file size.
//
// This package has no subfetch-specific dependencies.
//
// Primary entry points:
//   - Compute: fingerprints a file on disk
//   - ComputeReader: fingerprints any random-access source of known size
package moviehash
