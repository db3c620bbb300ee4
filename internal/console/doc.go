// Package console implements the operator conversation on a terminal.
//
// Terminal satisfies workflow.Console: it prints prompts, reads one line per
// answer, renders media files and ranked candidates as tables, and colours
// notices when the output is a TTY. It also supplies a byte progress bar for
// downloads. RenderTable is shared with the CLI's report commands.
package console
