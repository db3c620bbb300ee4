// Package subtitles turns index records into ranked download candidates and
// writes chosen subtitles to disk.
//
// Service adapts the OpenSubtitles client to Candidate values. Rank orders
// candidates by rating, highest first, keeping arrival order among equal
// ratings and placing unrated candidates last. Writer stores downloaded
// payloads under a sanitized file name using an atomic rename.
package subtitles
