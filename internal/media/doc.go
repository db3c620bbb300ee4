// Package media discovers video files beneath a directory.
//
// Discovery is a recursive walk filtered by a case-insensitive extension
// allow-list. Results keep filesystem traversal order. Subdirectories that
// cannot be read are logged and skipped; only an unreadable root is an error.
package media
