// Package main hosts the subfetch CLI entrypoint and command graph.
//
// Running subfetch with no subcommand starts an interactive search session:
// the operator chooses between a title search and a movie-hash search,
// picks from the ranked results, and downloads as many subtitles as they
// like. The hash, history and config subcommands expose the fingerprint
// engine, the download journal and configuration scaffolding on their own.
//
// Commands stay declarative; searching, ranking, hashing and persistence live
// in the internal packages.
package main
