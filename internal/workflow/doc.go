// Package workflow runs one interactive subtitle session as a state machine.
//
// A Session walks the operator from choosing an identification mode (title
// or movie hash) through obtaining the query key, searching the index,
// ranking and presenting candidates, and a pick/download loop that repeats
// over the same ranked list until the operator cancels or declines to
// continue.
//
// All terminal interaction goes through the Console capability, and every
// other collaborator (index, media discovery, hashing, file writing, the
// optional journal) is an interface supplied through Options. That keeps the
// state machine free of I/O so tests can script whole conversations.
//
// Branch failures (nothing found, unreadable file, transport errors) end the
// session with an Outcome and a plain-language notice rather than an error;
// Run only returns an error when the console itself fails or the context is
// cancelled.
package workflow
