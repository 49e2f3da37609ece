package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	IndexConfig struct {
		CaseSensitive       bool     `yaml:"case_sensitive"`
		IgnoreArticles      []string `yaml:"ignore_articles" validate:"dive,required"`
		Locale              string   `yaml:"locale"`
		MaxDepth            int      `yaml:"max_depth" validate:"min=1,max=16"`
		MaxEntriesPerLetter int      `yaml:"max_entries_per_letter" validate:"min=0"`
	}

	NotesConfig struct {
		Placement         NotePlacement  `yaml:"placement" validate:"gte=0"`
		GenerateBackRefs  bool           `yaml:"generate_back_refs"`
		BackRefSymbol     string         `yaml:"back_ref_symbol" validate:"required_unless=GenerateBackRefs false"`
		RestartPerChapter bool           `yaml:"restart_numbering_per_chapter"`
		NumberingStyle    NumberingStyle `yaml:"numbering_style" validate:"gte=0"`
	}

	DocumentConfig struct {
		IDPrefix              string      `yaml:"id_prefix" validate:"required"`
		MaxIDLength           int         `yaml:"max_id_length" validate:"min=16,max=256"`
		CollisionSuffixLength int         `yaml:"collision_suffix_length" validate:"min=2,max=16"`
		FuzzyMinKeyLength     int         `yaml:"fuzzy_min_key_length" validate:"min=0"`
		ChapterTitleTemplate  string      `yaml:"chapter_title_template"`
		Index                 IndexConfig `yaml:"index"`
		Notes                 NotesConfig `yaml:"notes"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Document DocumentConfig `yaml:"document"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	ChapterTitleTemplateFieldName TemplateFieldName = "chapter_title_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(ChapterTitleTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
		// cross-field: generated ids must keep at least one character of the
		// base once room for a collision suffix is reserved
		if d := &cfg.Document; d.MaxIDLength <= d.CollisionSuffixLength+1 {
			return nil, fmt.Errorf("max_id_length %d leaves no room for collision_suffix_length %d", d.MaxIDLength, d.CollisionSuffixLength)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
