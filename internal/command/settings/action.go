package settings

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-llmconfig/internal/config"
	"github.com/lwmacct/251207-go-pkg-llmconfig/pkg/cfgm"
)

func action(_ context.Context, cmd *cli.Command) error {
	cfg := config.DefaultConfig()
	if !cmd.Bool("example") {
		loaded, err := config.Load(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	out, err := cfgm.ExampleYAML(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.Root().Writer.Write(out)

	return err
}
