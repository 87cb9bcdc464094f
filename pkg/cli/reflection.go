package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/cli/config"
	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/model"
)

func cmdReflection() *cli.Command {
	return &cli.Command{
		Name:    "reflection",
		Aliases: []string{"r"},
		Usage:   "Inspect and manage the reflection history",
		Commands: []*cli.Command{
			cmdReflectionList(),
			cmdReflectionSearch(),
			cmdReflectionShow(),
			cmdReflectionDelete(),
		},
	}
}

func openReflections(ctx context.Context, cfg *config.Storage) (interfaces.ReflectionRepository, error) {
	repo, err := cfg.Configure()
	if err != nil {
		return nil, err
	}
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func printReflection(entry *model.Reflection, full bool) {
	idColor := color.New(color.FgYellow)
	idColor.Printf("%s", entry.ID)
	fmt.Printf("  %s  %s\n", entry.Date, entry.SourceNotePath)

	text := entry.ReflectionText
	if !full {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[:idx]
		}
		const maxLen = 120
		if len(text) > maxLen {
			text = text[:maxLen] + "..."
		}
	}
	fmt.Printf("  %s\n", text)

	if len(entry.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(entry.Tags, ", "))
	}
	if full {
		if len(entry.Keywords) > 0 {
			fmt.Printf("  keywords: %s\n", strings.Join(entry.Keywords, ", "))
		}
		fmt.Printf("  recorded: %s\n", time.UnixMilli(entry.Timestamp).Format(time.RFC3339))
	}
	fmt.Println()
}

func cmdReflectionList() *cli.Command {
	var storageCfg config.Storage

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List all recorded reflections",
		Flags:   storageCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := openReflections(ctx, &storageCfg)
			if err != nil {
				return err
			}

			entries, err := repo.List(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no reflections recorded")
				return nil
			}
			for _, entry := range entries {
				printReflection(entry, false)
			}
			return nil
		},
	}
}

func cmdReflectionSearch() *cli.Command {
	var (
		storageCfg config.Storage
		text       string
		tags       []string
		keywords   []string
		dateFrom   string
		dateTo     string
		sourcePath string
	)

	var flags []cli.Flag
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Case-insensitive substring of the reflection text",
			Destination: &text,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Tag to match (can be specified multiple times, any match)",
			Destination: &tags,
		},
		&cli.StringSliceFlag{
			Name:        "keyword",
			Usage:       "Keyword to match (can be specified multiple times, any match)",
			Destination: &keywords,
		},
		&cli.StringFlag{
			Name:        "from",
			Usage:       "Earliest date, inclusive (YYYY-MM-DD)",
			Destination: &dateFrom,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Latest date, inclusive (YYYY-MM-DD)",
			Destination: &dateTo,
		},
		&cli.StringFlag{
			Name:        "path",
			Usage:       "Substring of the source note path",
			Destination: &sourcePath,
		},
	)

	return &cli.Command{
		Name:  "search",
		Usage: "Search reflections by text, tags, keywords, date range, or source",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := openReflections(ctx, &storageCfg)
			if err != nil {
				return err
			}

			entries, err := repo.Search(ctx, model.ReflectionQuery{
				Text:       text,
				Tags:       tags,
				Keywords:   keywords,
				DateFrom:   dateFrom,
				DateTo:     dateTo,
				SourcePath: sourcePath,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no reflections matched")
				return nil
			}
			for _, entry := range entries {
				printReflection(entry, false)
			}
			return nil
		},
	}
}

func cmdReflectionShow() *cli.Command {
	var storageCfg config.Storage

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one reflection in full",
		ArgsUsage: "<id>",
		Flags:     storageCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("a reflection ID is required")
			}

			repo, err := openReflections(ctx, &storageCfg)
			if err != nil {
				return err
			}

			entry, err := repo.Get(ctx, model.ReflectionID(id))
			if err != nil {
				return err
			}
			printReflection(entry, true)
			return nil
		},
	}
}

func cmdReflectionDelete() *cli.Command {
	var storageCfg config.Storage

	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a reflection",
		ArgsUsage: "<id>",
		Flags:     storageCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("a reflection ID is required")
			}

			repo, err := openReflections(ctx, &storageCfg)
			if err != nil {
				return err
			}

			if err := repo.Delete(ctx, model.ReflectionID(id)); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", id)
			return nil
		},
	}
}
