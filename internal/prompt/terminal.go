// Package prompt implements the file picker prompts on a text terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/storagekit/pkg/storage"
	"github.com/starford/storagekit/pkg/storage/local"
)

var _ local.Prompter = (*Terminal)(nil)

// Terminal asks for paths on a line-oriented terminal. An empty answer or
// end of input cancels the prompt.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal returns a prompter reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Prompt implements local.Prompter.
func (t *Terminal) Prompt(ctx context.Context, kind local.PromptKind, settings storage.DialogSettings) (string, bool, error) {
	if _, err := fmt.Fprint(t.out, question(kind, settings)); err != nil {
		return "", false, err
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case a = <-ch:
	}
	if a.err != nil && !errors.Is(a.err, io.EOF) {
		return "", false, a.err
	}

	line := strings.TrimSpace(a.line)
	if line == "" {
		return "", false, nil
	}
	return expandHome(line), true, nil
}

func question(kind local.PromptKind, settings storage.DialogSettings) string {
	var b strings.Builder
	label := settings.OverrideSelectText
	if label == "" {
		switch kind {
		case local.PromptOpenFile:
			label = "Open file"
		case local.PromptSaveFile:
			label = "Save as"
		default:
			label = "Select folder"
		}
	}
	b.WriteString(label)
	if len(settings.ShownFileTypes) > 0 && kind != local.PromptFolder {
		fmt.Fprintf(&b, " (%s)", strings.Join(settings.ShownFileTypes, ", "))
	}
	b.WriteString(" [empty to cancel]: ")
	return b.String()
}

// expandHome replaces a leading "~" with the user's home folder.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
