package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/highlight"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/pkg/iojson"
)

type MatchCmd struct {
	flags *Flags
	app   *console.App

	// flags
	text       string
	regex      string
	spans      iojson.FileReader[record.Spans]
	html       bool
	jsonOutput bool

	isTerminal func(w io.Writer) bool
}

// NewMatchCmd creates a new match command
func NewMatchCmd(flags *Flags, app *console.App) *MatchCmd {
	return &MatchCmd{
		flags:      flags,
		app:        app,
		spans:      iojson.FileReader[record.Spans]{Name: "spans", Usage: "read match spans from a JSON file instead of the backend"},
		isTerminal: writerIsTerminal,
	}
}

// Register adds the match command to the application
func (cmd *MatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "match",
		Usage:     "Highlight a regex match and its named groups",
		UsageText: "smartlp match --text TEXT (--regex PATTERN | --spans FILE) [--html | --json]",
		Description: `Asks the backend to run --regex against --text, or reads the match spans
from --spans (a JSON file, "-" for stdin), and prints the text with the
overall match and its capture groups highlighted.

Output is styled when stdout is a terminal. Use --html for <mark> markup or
--json for the flattened list of marks.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "text",
				Usage:       "text to highlight",
				Required:    true,
				Destination: &cmd.text,
			},
			&cli.StringFlag{
				Name:        "regex",
				Usage:       "pattern evaluated by the backend",
				Destination: &cmd.regex,
			},
			cmd.spans.Flag(),
			&cli.BoolFlag{
				Name:        "html",
				Usage:       "output HTML markup",
				Destination: &cmd.html,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the marks as a JSON line",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// markInfo is the JSON output format for smartlp match --json.
type markInfo struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}

func (cmd *MatchCmd) run(ctx context.Context, c *cli.Command) error {
	spans, err := cmd.matchSpans(ctx, c)
	if err != nil {
		return err
	}

	frag := highlight.Build(cmd.text, spans)
	out := c.Root().Writer

	switch {
	case cmd.jsonOutput:
		marks := frag.Marks()
		infos := make([]markInfo, len(marks))
		for i, mk := range marks {
			infos[i] = markInfo{Name: mk.Name, Class: mk.Class, Text: mk.Text, Depth: mk.Depth}
		}
		if err := iojson.WriteLine(out, infos); err != nil {
			return fmt.Errorf("encode marks: %w", err)
		}
	case cmd.html:
		_, _ = fmt.Fprintln(out, frag.RenderHTML())
	case cmd.isTerminal(out):
		_, _ = fmt.Fprintln(out, frag.RenderANSI(highlight.DefaultTheme()))
		writeMarks(out, frag.Marks())
	default:
		_, _ = fmt.Fprintln(out, frag.TextContent())
		writeMarks(out, frag.Marks())
	}
	return nil
}

func (cmd *MatchCmd) matchSpans(ctx context.Context, c *cli.Command) ([]record.MatchSpan, error) {
	switch {
	case cmd.spans.IsSet() && cmd.regex != "":
		return nil, fmt.Errorf("--regex and --spans are mutually exclusive")
	case cmd.spans.IsSet():
		spans, err := cmd.spans.Read(c.Root().Reader)
		if err != nil {
			return nil, fmt.Errorf("read spans: %w", err)
		}
		return spans, nil
	case cmd.regex != "":
		spans, err := cmd.app.Client.FindMatch(ctx, cmd.text, cmd.regex)
		if err != nil {
			return nil, fmt.Errorf("find match: %w", err)
		}
		return spans, nil
	default:
		return nil, fmt.Errorf("one of --regex or --spans is required")
	}
}

// writeMarks prints each capture group below the text, indented by depth.
func writeMarks(w io.Writer, marks []highlight.Mark) {
	for _, mk := range marks {
		if mk.Depth == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", strings.Repeat("  ", mk.Depth-1), mk.Name, mk.Text)
	}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
