package repl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/haiku/log"
)

const defaultEditor = "vi"

// editRecordCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop over the data record. It writes the record as YAML to a temp file,
// opens $EDITOR, and decodes the result. On a decode error the user is asked
// to re-edit; declining exits the program.
type editRecordCommand struct {
	record    any
	ctxFunc   func() context.Context
	newRecord any
	cleared   bool
	logger    log.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editRecordCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editRecordCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editRecordCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] when the user
// declines to fix a document that does not decode.
func (c *editRecordCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := marshalRecord(ctx, c.record)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), "haiku-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			c.cleared = true

			return nil
		}

		record, decodeErr := decodeRecord(ctx, bytes.NewReader(data))
		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil))

		if decodeErr == nil {
			c.newRecord = record

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// marshalRecord formats a record as block YAML.
func marshalRecord(ctx context.Context, record any) ([]byte, error) {
	if record == nil {
		return nil, nil
	}

	return yaml.MarshalContext(ctx, record, yaml.Indent(2), yaml.IndentSequence(true))
}

// decodeRecord decodes the first YAML or JSON document of r.
func decodeRecord(ctx context.Context, r io.Reader) (any, error) {
	var record any

	if err := yaml.NewDecoder(r).DecodeContext(ctx, &record); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, ErrLoadRecord.Wrap(err)
	}

	return record, nil
}

// runEditor opens the user's editor on path and returns the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
