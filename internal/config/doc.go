// Package config loads, normalizes, and validates subfetch configuration data.
//
// It supplies repository defaults that reproduce the stock interactive
// behaviour, expands user paths (including tilde shortcuts), reads TOML files,
// and honours the SUBFETCH_USER_AGENT environment fallback. The Config type
// centralizes the subtitle index endpoint, the media extension allow-list,
// download and log locations, and the optional download journal so the
// workflow and its collaborators receive every knob through their
// constructors instead of package globals.
//
// A missing configuration file is not an error: defaults are used.
package config
