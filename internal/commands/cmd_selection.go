package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
	"github.com/skykid17/smartlp-sub005/internal/core/validate"
	"github.com/skykid17/smartlp-sub005/pkg/iojson"
)

type SelectionCmd struct {
	flags *Flags
	app   *console.App

	// flags
	table      string
	jsonOutput bool
}

// NewSelectionCmd creates a new selection command
func NewSelectionCmd(flags *Flags, app *console.App) *SelectionCmd {
	return &SelectionCmd{flags: flags, app: app}
}

// Register adds the selection command to the application
func (cmd *SelectionCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "selection",
		Usage: "Inspect and edit persisted selections",
		Description: `Reads and writes the same selection store the TUI uses. With the json
backend a running TUI picks up changes made here immediately.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List selected record IDs",
				UsageText: "smartlp selection ls [--table entries] [--json]",
				Flags:     cmd.subFlags(),
				Action:    cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Add record IDs to the selection",
				UsageText: "smartlp selection add [--table entries] ID [ID...]",
				Flags:     cmd.subFlags(),
				Action:    cmd.runAdd,
			},
			{
				Name:      "rm",
				Usage:     "Remove record IDs from the selection",
				UsageText: "smartlp selection rm [--table entries] ID [ID...]",
				Flags:     cmd.subFlags(),
				Action:    cmd.runRemove,
			},
			{
				Name:      "clear",
				Usage:     "Empty the selection",
				UsageText: "smartlp selection clear [--table entries]",
				Flags:     cmd.subFlags(),
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *SelectionCmd) subFlags() []cli.Flag {
	return []cli.Flag{
		tableFlag(&cmd.table),
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "output as a JSON line",
			Destination: &cmd.jsonOutput,
		},
	}
}

// tableFlag selects a table body. Shared by the commands operating on a
// selection.
func tableFlag(dest *string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "table",
		Aliases:     []string{"t"},
		Usage:       "table body the selection belongs to (entries, rules)",
		Value:       console.TableEntries,
		Destination: dest,
	}
}

// selectionInfo is the JSON output format for smartlp selection --json.
type selectionInfo struct {
	Table string      `json:"table"`
	Key   string      `json:"key"`
	Count int         `json:"count"`
	IDs   []record.ID `json:"ids"`
}

func (cmd *SelectionCmd) selection() (*selection.Selection, error) {
	return cmd.app.Services().Selection(cmd.table)
}

func (cmd *SelectionCmd) runList(ctx context.Context, c *cli.Command) error {
	sel, err := cmd.selection()
	if err != nil {
		return err
	}
	return cmd.print(c, sel)
}

func (cmd *SelectionCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}
	sel, err := cmd.selection()
	if err != nil {
		return err
	}
	sel.AddIDs(ids...)
	return cmd.print(c, sel)
}

func (cmd *SelectionCmd) runRemove(ctx context.Context, c *cli.Command) error {
	ids, err := parseIDs(c.Args().Slice())
	if err != nil {
		return err
	}
	sel, err := cmd.selection()
	if err != nil {
		return err
	}
	sel.RemoveIDs(ids...)
	return cmd.print(c, sel)
}

func (cmd *SelectionCmd) runClear(ctx context.Context, c *cli.Command) error {
	sel, err := cmd.selection()
	if err != nil {
		return err
	}
	sel.ClearSelection()
	return cmd.print(c, sel)
}

func (cmd *SelectionCmd) print(c *cli.Command, sel *selection.Selection) error {
	ids := sel.IDs()
	out := c.Root().Writer

	if cmd.jsonOutput {
		info := selectionInfo{Table: cmd.table, Key: sel.StorageKey(), Count: len(ids), IDs: ids}
		if err := iojson.WriteLine(out, info); err != nil {
			return fmt.Errorf("encode selection: %w", err)
		}
		return nil
	}

	if len(ids) == 0 {
		_, _ = fmt.Fprintln(out, styles.TextMutedStyle.Render("No "+cmd.table+" selected"))
		return nil
	}
	for _, id := range ids {
		_, _ = fmt.Fprintln(out, id)
	}
	return nil
}

// parseIDs validates command line record IDs.
func parseIDs(args []string) ([]record.ID, error) {
	return validate.RecordIDs("ids", args)
}
