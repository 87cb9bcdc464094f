package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/kagami-lab/kagami/pkg/cli/config"
	"github.com/kagami-lab/kagami/pkg/usecase"
	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

func cmdAnalyze() *cli.Command {
	var (
		llmCfg      config.LLM
		analysisCfg config.Analysis
		storageCfg  config.Storage
		templateID  string
		record      bool
		concurrency int
	)

	var flags []cli.Flag
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, analysisCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "template",
			Aliases:     []string{"t"},
			Usage:       "Analysis template ID",
			Value:       "summary",
			Sources:     cli.EnvVars("KAGAMI_TEMPLATE"),
			Destination: &templateID,
		},
		&cli.BoolFlag{
			Name:        "record",
			Usage:       "Record analyses in the reflection history",
			Sources:     cli.EnvVars("KAGAMI_RECORD"),
			Destination: &record,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of files analyzed in parallel",
			Value:       4,
			Destination: &concurrency,
		},
	)

	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze one or more note files",
		ArgsUsage: "<file> [file...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return goerr.New("at least one file is required")
			}

			templates, err := analysisCfg.LoadTemplates()
			if err != nil {
				return err
			}
			tmpl, ok := templates.Find(templateID)
			if !ok {
				return goerr.New("unknown template", goerr.V("template", templateID))
			}

			style, err := analysisCfg.Style()
			if err != nil {
				return err
			}

			client, err := llmCfg.Configure()
			if err != nil {
				return err
			}

			opts := analysisCfg.Options()
			if record {
				repo, err := storageCfg.Configure()
				if err != nil {
					return err
				}
				if err := repo.Initialize(ctx); err != nil {
					return err
				}
				opts = append(opts, usecase.WithReflections(repo))
			}
			uc := usecase.New(client, opts...)

			logging.From(ctx).Info("Analyzing files",
				"files", len(files),
				"template", tmpl.ID,
				"style", style,
			)

			results := make([]string, len(files))
			var mu sync.Mutex
			errsByFile := make(map[string]error)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i, file := range files {
				g.Go(func() error {
					content, err := os.ReadFile(file)
					if err != nil {
						mu.Lock()
						errsByFile[file] = goerr.Wrap(err, "failed to read file", goerr.V("file", file))
						mu.Unlock()
						return nil
					}

					result, err := uc.AnalyzeContent(gctx, string(content), tmpl.Prompt, style,
						usecase.WithNote(file, file))
					mu.Lock()
					if err != nil {
						errsByFile[file] = err
					} else {
						results[i] = result
					}
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			header := color.New(color.FgCyan, color.Bold)
			errHeader := color.New(color.FgRed, color.Bold)
			for i, file := range files {
				if err, failed := errsByFile[file]; failed {
					errHeader.Printf("== %s\n", file)
					fmt.Printf("analysis failed: %s\n\n", err.Error())
					continue
				}
				header.Printf("== %s\n", file)
				fmt.Printf("%s\n\n", results[i])
			}

			if len(errsByFile) > 0 {
				return goerr.New("some files failed to analyze",
					goerr.V("failed", len(errsByFile)),
					goerr.V("total", len(files)))
			}
			return nil
		},
	}
}
