package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"subfetch/internal/media"
	"subfetch/internal/subtitles"
	"subfetch/internal/workflow"
)

// ErrClosed reports that the input stream ended before an answer was read.
var ErrClosed = errors.New("console input closed")

type lineResult struct {
	text string
	err  error
}

// Terminal is a line-oriented operator console.
type Terminal struct {
	in       io.Reader
	out      io.Writer
	colorize bool

	readerOnce sync.Once
	lines      chan lineResult
}

// NewTerminal returns a Terminal reading answers from in and writing to out.
// Colour and progress bars are enabled only when out is a terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, colorize: ShouldColorize(out)}
}

// SetColor forces colour output on or off.
func (t *Terminal) SetColor(enabled bool) {
	t.colorize = enabled
}

// Prompt writes message and waits for one line of input. Trailing newline
// characters are stripped. Cancelling ctx abandons the wait.
func (t *Terminal) Prompt(ctx context.Context, message string) (string, error) {
	fmt.Fprint(t.out, message)
	t.readerOnce.Do(t.startReader)

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case res, ok := <-t.lines:
		if !ok {
			return "", ErrClosed
		}
		if res.err != nil {
			fmt.Fprintln(t.out)
			if errors.Is(res.err, io.EOF) {
				return "", fmt.Errorf("%w: %w", ErrClosed, res.err)
			}
			return "", fmt.Errorf("read console input: %w", res.err)
		}
		return res.text, nil
	}
}

// startReader feeds lines from the input into t.lines. A final line without
// a newline is delivered before the terminating error.
func (t *Terminal) startReader() {
	t.lines = make(chan lineResult)
	go func() {
		defer close(t.lines)
		reader := bufio.NewReader(t.in)
		for {
			line, err := reader.ReadString('\n')
			text := strings.TrimRight(line, "\r\n")
			if err != nil {
				if text != "" {
					t.lines <- lineResult{text: text}
				}
				t.lines <- lineResult{err: err}
				return
			}
			t.lines <- lineResult{text: text}
		}
	}()
}

// Notify prints a status message, coloured by kind.
func (t *Terminal) Notify(kind workflow.Notice, message string) {
	c := color.New(noticeColor(kind))
	if t.colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintln(t.out, message)
}

func noticeColor(kind workflow.Notice) color.Attribute {
	switch kind {
	case workflow.NoticeSuccess:
		return color.FgGreen
	case workflow.NoticeWarn:
		return color.FgYellow
	case workflow.NoticeError:
		return color.FgRed
	default:
		return color.Reset
	}
}

// ShowMedia lists discovered video files with a cancel entry.
func (t *Terminal) ShowMedia(files []media.File) {
	rows := make([][]string, 0, len(files))
	for i, f := range files {
		rows = append(rows, []string{strconv.Itoa(i + 1), f.Path, humanize.IBytes(uint64(f.Size))})
	}
	t.heading("Video files found:")
	fmt.Fprintln(t.out, RenderTable([]string{"#", "File", "Size"}, rows, []Alignment{AlignRight, AlignLeft, AlignRight}))
	fmt.Fprintln(t.out, "0. Cancel")
}

// ShowCandidates renders the ranked list with 1-based positions.
func (t *Terminal) ShowCandidates(list subtitles.RankedList) {
	rows := make([][]string, 0, list.Len())
	for i, c := range list {
		rows = append(rows, []string{strconv.Itoa(i + 1), c.FileName, c.Language, c.RatingLabel()})
	}
	fmt.Fprintln(t.out, RenderTable([]string{"#", "File Name", "Language", "Rating"}, rows, []Alignment{AlignRight, AlignLeft, AlignLeft, AlignRight}))
}

// Progress returns a byte progress bar for a download. Without a terminal it
// returns a writer that discards updates.
func (t *Terminal) Progress(label string, total int64) io.WriteCloser {
	if !t.colorize {
		return nopProgress{}
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(t.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(30),
	)
}

type nopProgress struct{}

func (nopProgress) Write(p []byte) (int, error) { return len(p), nil }

func (nopProgress) Close() error { return nil }

func (t *Terminal) heading(title string) {
	c := color.New(color.FgBlue, color.Bold)
	if t.colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintln(t.out, title)
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
