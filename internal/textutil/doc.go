// Package textutil provides filename sanitization for files written to the
// download directory.
package textutil
