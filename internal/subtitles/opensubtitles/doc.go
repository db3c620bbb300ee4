// Package opensubtitles is a client for the legacy OpenSubtitles REST search
// index.
//
// Searches are plain GET requests whose filters are path segments:
//
//	{base}/query-{title}/sublanguageid-{lang}
//	{base}/moviebytesize-0/moviehash-{hash}/sublanguageid-{lang}
//
// The index answers with a JSON array of subtitle records. Each record
// carries a direct download link; links to gzip payloads are decompressed
// transparently. Every failure (network, HTTP status, undecodable body) is
// reported as ErrTransport and nothing is retried.
package opensubtitles
