package options

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/command"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/llmconfig"
)

func action(_ context.Context, cmd *cli.Command) error {
	s, err := command.Lookup(cmd)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if cmd.Bool("yaml") {
		out, err := s.ExampleYAML()
		if err != nil {
			return err
		}
		_, err = w.Write(out)

		return err
	}

	return printOptions(w, s)
}

func printOptions(w io.Writer, s *llmconfig.Schema) error {
	meta := s.Meta()
	if _, err := fmt.Fprintf(w, "%s (%s)\n  default id: %s\n  url: %s\n  env override: %s\n\n",
		command.Title(s.Name()), s.StartName(), meta.DefaultID, meta.URL, s.ConfigEnvKey()); err != nil {
		return err
	}

	headers := []string{"FLAG", "TYPE", "DEFAULT", "ENV", "DESCRIPTION"}
	for _, group := range s.Options() {
		rows := make([][]string, 0, len(group.Options))
		for _, opt := range group.Options {
			rows = append(rows, []string{
				opt.Flag,
				opt.Type.String(),
				formatDefault(opt),
				opt.EnvKey,
				opt.Help,
			})
		}

		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", command.Title(group.Title), command.Table(headers, rows)); err != nil {
			return err
		}
	}

	return nil
}

func formatDefault(opt llmconfig.OptionDescriptor) string {
	switch v := opt.Default.(type) {
	case nil:
		if opt.Required {
			return "(required)"
		}
		return "-"
	case string:
		return strconv.Quote(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
