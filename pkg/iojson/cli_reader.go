package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned by FileReader.Read when it would read a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal)")

// FileReader decodes a JSON value of type T from the file named by a flag.
// An empty path or "-" reads stdin.
type FileReader[T any] struct {
	Name  string // flag name, "file" when empty
	Usage string

	path string
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:        fr.Name,
		Usage:       fr.Usage,
		Destination: &fr.path,
	}
	if flag.Name == "" {
		flag.Name = "file"
		flag.Aliases = []string{"f"}
	}
	if flag.Usage == "" {
		flag.Usage = `path to JSON file ("-" or empty reads stdin)`
	}
	return flag
}

// IsSet reports whether the flag was given a path.
func (fr *FileReader[T]) IsSet() bool {
	return fr.path != ""
}

// Path returns the path the flag was given.
func (fr *FileReader[T]) Path() string {
	return fr.path
}

// Read decodes the file, or stdin when the path is empty or "-".
func (fr *FileReader[T]) Read(stdin io.Reader) (T, error) {
	var input T

	reader := stdin
	if fr.path != "" && fr.path != "-" {
		f, err := os.Open(fr.path)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return input, ErrNoInput
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
