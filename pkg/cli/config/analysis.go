package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/usecase"
)

// Template is a named analysis prompt loaded from the templates file
type Template struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	Prompt string `toml:"prompt"`
}

// Validate checks if the Template is valid
func (t *Template) Validate() error {
	if t.ID == "" {
		return goerr.New("template ID is required")
	}
	if t.Prompt == "" {
		return goerr.New("template prompt is required", goerr.V("id", t.ID))
	}
	return nil
}

// TemplateConfig is the root of the templates TOML file
type TemplateConfig struct {
	Templates []Template `toml:"template"`
}

// Validate checks templates for missing fields and duplicate IDs
func (c *TemplateConfig) Validate() error {
	seen := make(map[string]bool)
	for _, tmpl := range c.Templates {
		if err := tmpl.Validate(); err != nil {
			return goerr.Wrap(err, "invalid template")
		}
		if seen[tmpl.ID] {
			return goerr.New("duplicate template ID", goerr.V("id", tmpl.ID))
		}
		seen[tmpl.ID] = true
	}
	return nil
}

// Find returns the template with the given ID
func (c *TemplateConfig) Find(id string) (*Template, bool) {
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i], true
		}
	}
	return nil, false
}

// defaultTemplates is used when no templates file is configured
var defaultTemplates = TemplateConfig{
	Templates: []Template{
		{
			ID:     "summary",
			Name:   "Summary",
			Prompt: "Summarize the key points and themes of the following text.",
		},
		{
			ID:     "feedback",
			Name:   "Feedback",
			Prompt: "Give feedback on the clarity and structure of the following text.",
		},
	},
}

// Analysis holds configuration for the analysis pipeline
type Analysis struct {
	cacheTTL      time.Duration
	cacheSize     int
	privateMarker string
	style         string
	templatesPath string
}

// Flags returns CLI flags for analysis configuration
func (a *Analysis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "How long analysis results stay cached",
			Value:       usecase.DefaultCacheTTL,
			Sources:     cli.EnvVars("KAGAMI_CACHE_TTL"),
			Destination: &a.cacheTTL,
		},
		&cli.IntFlag{
			Name:        "cache-size",
			Usage:       "Maximum number of cached analysis results",
			Value:       usecase.DefaultCacheSize,
			Sources:     cli.EnvVars("KAGAMI_CACHE_SIZE"),
			Destination: &a.cacheSize,
		},
		&cli.StringFlag{
			Name:        "private-marker",
			Usage:       "Delimiter marking private content spans to strip before sending (empty disables)",
			Value:       "%%",
			Sources:     cli.EnvVars("KAGAMI_PRIVATE_MARKER"),
			Destination: &a.privateMarker,
		},
		&cli.StringFlag{
			Name:        "style",
			Usage:       "Communication style for analysis feedback [direct, gentle]",
			Value:       string(types.StyleGentle),
			Sources:     cli.EnvVars("KAGAMI_STYLE"),
			Destination: &a.style,
		},
		&cli.StringFlag{
			Name:        "templates",
			Usage:       "Path to the analysis templates TOML file (built-in templates when empty)",
			Sources:     cli.EnvVars("KAGAMI_TEMPLATES"),
			Destination: &a.templatesPath,
		},
	}
}

// Style returns the configured communication style
func (a *Analysis) Style() (types.Style, error) {
	style := types.Style(a.style)
	if !style.IsValid() {
		return "", goerr.New("invalid communication style",
			goerr.T(types.ErrTagValidation), goerr.V("style", a.style))
	}
	return style, nil
}

// Options returns the use case options derived from the configured flags
func (a *Analysis) Options() []usecase.Option {
	return []usecase.Option{
		usecase.WithCacheTTL(a.cacheTTL),
		usecase.WithCacheSize(a.cacheSize),
		usecase.WithPrivateMarker(a.privateMarker),
	}
}

// LoadTemplates loads and validates the templates file, falling back to the
// built-in templates when no path is configured.
func (a *Analysis) LoadTemplates() (*TemplateConfig, error) {
	if a.templatesPath == "" {
		cfg := defaultTemplates
		return &cfg, nil
	}

	data, err := os.ReadFile(a.templatesPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read templates file",
			goerr.V("path", a.templatesPath))
	}

	var cfg TemplateConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse templates file",
			goerr.V("path", a.templatesPath))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid templates file",
			goerr.V("path", a.templatesPath))
	}
	return &cfg, nil
}
