package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/cli/config"
	"github.com/kagami-lab/kagami/pkg/usecase"
)

func cmdGenerate() *cli.Command {
	var llmCfg config.LLM

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     "Generate text from a free-form prompt",
		ArgsUsage: "<prompt> (use '-' to read the prompt from stdin)",
		Flags:     llmCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			prompt := strings.Join(c.Args().Slice(), " ")
			if prompt == "" {
				return goerr.New("a prompt is required")
			}
			if prompt == "-" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read prompt from stdin")
				}
				prompt = string(data)
			}

			client, err := llmCfg.Configure()
			if err != nil {
				return err
			}
			uc := usecase.New(client)

			result, err := uc.GenerateText(ctx, prompt)
			if err != nil {
				return err
			}

			fmt.Println(result)
			return nil
		},
	}
}
