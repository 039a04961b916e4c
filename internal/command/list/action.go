package list

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command"
)

func action(_ context.Context, cmd *cli.Command) error {
	r, err := command.Registry(cmd)
	if err != nil {
		return err
	}

	headers := []string{"MODEL", "START NAME", "SCHEMA", "DEFAULT ID", "GPU", "REMOTE CODE"}
	showIDs := cmd.Bool("ids")
	if showIDs {
		headers = append(headers, "MODEL IDS")
	}

	var rows [][]string
	for _, s := range r.Schemas() {
		meta := s.Meta()
		row := []string{
			s.ModelName(),
			s.StartName(),
			s.Name(),
			meta.DefaultID,
			strconv.FormatBool(meta.RequiresGPU),
			strconv.FormatBool(meta.TrustRemoteCode),
		}
		if showIDs {
			row = append(row, strings.Join(meta.ModelIDs, "\n"))
		}
		rows = append(rows, row)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, command.Table(headers, rows))

	return err
}
