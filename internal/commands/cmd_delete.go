package commands

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
	"github.com/skykid17/smartlp-sub005/pkg/iojson"
)

type DeleteCmd struct {
	flags *Flags
	app   *console.App

	// flags
	table      string
	yes        bool
	jsonOutput bool
}

// NewDeleteCmd creates a new delete command
func NewDeleteCmd(flags *Flags, app *console.App) *DeleteCmd {
	return &DeleteCmd{flags: flags, app: app}
}

// Register adds the delete command to the application
func (cmd *DeleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "delete",
		Usage:     "Delete every selected record of a table",
		UsageText: "smartlp delete [--table entries] [--yes]",
		Description: `Sends one DELETE request per selected ID, paced by delete.rate_limit.
Deleted IDs leave the selection; IDs that failed stay selected so the
command can be re-run.`,
		Flags: []cli.Flag{
			tableFlag(&cmd.table),
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the result as a JSON line",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// deleteInfo is the JSON output format for smartlp delete --json.
type deleteInfo struct {
	Table   string            `json:"table"`
	Deleted []record.ID       `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

func (cmd *DeleteCmd) run(ctx context.Context, c *cli.Command) error {
	svc := cmd.app.Services()
	sel, err := svc.Selection(cmd.table)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	ids := sel.IDs()
	if len(ids) == 0 {
		_, _ = fmt.Fprintln(out, styles.TextMutedStyle.Render("No "+cmd.table+" selected"))
		return nil
	}

	if !cmd.yes {
		ok, err := confirm(c, fmt.Sprintf("Delete %d %s?", len(ids), cmd.table))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	res, err := svc.DeleteSelected(ctx, cmd.table, sel)

	if cmd.jsonOutput {
		if encErr := iojson.WriteLine(out, newDeleteInfo(cmd.table, res)); encErr != nil {
			return fmt.Errorf("encode result: %w", encErr)
		}
		return err
	}

	if len(res.Deleted) > 0 {
		_, _ = fmt.Fprintf(out, "%s deleted %d %s\n", styles.TextSuccessStyle.Render("✔"), len(res.Deleted), cmd.table)
	}
	for _, id := range failedIDs(res) {
		_, _ = fmt.Fprintf(out, "%s %s: %v\n", styles.TextErrorStyle.Render("✘"), id, res.Failed[id])
	}
	return err
}

func newDeleteInfo(table string, res api.BulkResult) deleteInfo {
	info := deleteInfo{Table: table, Deleted: res.Deleted}
	if info.Deleted == nil {
		info.Deleted = []record.ID{}
	}
	if len(res.Failed) > 0 {
		info.Failed = make(map[string]string, len(res.Failed))
		for id, err := range res.Failed {
			info.Failed[id.String()] = err.Error()
		}
	}
	return info
}

func failedIDs(res api.BulkResult) []record.ID {
	ids := make([]record.ID, 0, len(res.Failed))
	for id := range res.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// confirm asks a yes/no question on the command's reader. Anything but an
// explicit yes declines.
func confirm(c *cli.Command, question string) (bool, error) {
	root := c.Root()
	_, _ = fmt.Fprintf(root.Writer, "%s [y/N] ", question)

	line, err := bufio.NewReader(root.Reader).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation (pass --yes to skip): %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
