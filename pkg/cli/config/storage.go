package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/repository/reflection"
	"github.com/kagami-lab/kagami/pkg/repository/storage"
)

// Storage holds configuration for the reflection history backend
type Storage struct {
	backend string
	dir     string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Reflection storage backend [fs, memory]",
			Value:       "fs",
			Sources:     cli.EnvVars("KAGAMI_STORAGE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Usage:       "Directory for persisted reflection history",
			Value:       ".kagami",
			Sources:     cli.EnvVars("KAGAMI_STORAGE_DIR"),
			Destination: &s.dir,
		},
	}
}

// LogAttrs returns log attributes for the storage configuration
func (s *Storage) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", s.backend),
		slog.String("dir", s.dir),
	}
}

// Configure creates the reflection repository from the configured flags
func (s *Storage) Configure() (interfaces.ReflectionRepository, error) {
	var st interfaces.Storage
	switch s.backend {
	case "fs", "":
		fs, err := storage.NewFS(s.dir)
		if err != nil {
			return nil, err
		}
		st = fs
	case "memory":
		st = storage.NewMemory()
	default:
		return nil, goerr.New("unknown storage backend", goerr.V("backend", s.backend))
	}

	return reflection.New(st, "reflections"), nil
}
