package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultPath is used when no config file is given on the command line.
const DefaultPath = "./config.json"

const homePlaceholder = "$HOME"

const schemaJSON = `{
  "type": "object",
  "required": ["source", "base"],
  "properties": {
    "source":  {"type": "string"},
    "base":    {"type": "string"},
    "include": {"type": "string"}
  }
}`

var schema = mustSchema(schemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("config: bad schema: %v", err))
	}
	return sch
}

// Config locates the analyzed tree and the prefix stripped from output paths.
type Config struct {
	Source string `json:"source"`
	Base   string `json:"base"`

	// Include is an optional glob selecting the modules in scope.
	Include string `json:"include,omitempty"`
}

// A ParseError indicates the config file could not be turned into a Config.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the config file at path. getenv supplies HOME for the
// $HOME placeholder.
func Load(path string, getenv func(string) string) (cfg *Config, err error) {
	defer func() {
		if err != nil {
			err = &ParseError{Path: path, Err: err}
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, getenv)
}

// Parse validates data and returns the normalized Config.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}
		return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize(getenv("HOME"))
	return &cfg, nil
}

// Normalize expands $HOME and trims one trailing slash from the path fields.
func (c *Config) Normalize(home string) {
	c.Base = trimTrailingSlash(ExpandHome(c.Base, home))
	c.Source = trimTrailingSlash(ExpandHome(c.Source, home))
	c.Include = ExpandHome(c.Include, home)
}

// ExpandHome replaces the first $HOME in s with home.
func ExpandHome(s, home string) string {
	return strings.Replace(s, homePlaceholder, home, 1)
}

func trimTrailingSlash(s string) string {
	return strings.TrimSuffix(s, "/")
}
