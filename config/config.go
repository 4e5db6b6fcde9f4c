// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// Config aggregates configuration for the application.
type Config struct {
	SampleSize      int             `mapstructure:"sample_size" yaml:"sample_size"`
	DefaultLabel    string          `mapstructure:"default_label" yaml:"default_label"`
	StartingIndex   int             `mapstructure:"starting_index" yaml:"starting_index"`
	MaxSeriesPerRun int             `mapstructure:"max_series_per_run" yaml:"max_series_per_run"`
	MultiCore       MultiCoreConfig `mapstructure:"multi_core" yaml:"multi_core"`
	Labeled         SeriesConfig    `mapstructure:"labeled" yaml:"labeled"`
	Unlabeled       SeriesConfig    `mapstructure:"unlabeled" yaml:"unlabeled"`
	Logging         LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

type MultiCoreConfig struct {
	Enable bool `mapstructure:"enable" yaml:"enable"`
	// Limit caps the worker pool size; 0 means no cap.
	Limit int `mapstructure:"limit" yaml:"limit"`
}

// SeriesConfig holds the settings of one series kind.
type SeriesConfig struct {
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`
	// FileExtension selects candidate files, including the leading dot.
	FileExtension string `mapstructure:"file_extension" yaml:"file_extension"`
	// FilenameLayout is a Go time layout matched against the file name stem.
	FilenameLayout  string `mapstructure:"filename_layout" yaml:"filename_layout"`
	InputSeparator  string `mapstructure:"input_separator" yaml:"input_separator"`
	OutputFile      string `mapstructure:"output_file" yaml:"output_file"`
	OutputSeparator string `mapstructure:"output_separator" yaml:"output_separator"`

	MaxNullFraction    float64                        `mapstructure:"max_null_fraction" yaml:"max_null_fraction"`
	MaxConsecutiveNull int                            `mapstructure:"max_consecutive_null" yaml:"max_consecutive_null"`
	NullFilling        seriestype.NullFillingStrategy `mapstructure:"null_filling" yaml:"null_filling"`
	Duplicates         seriestype.DuplicatePolicy     `mapstructure:"duplicates" yaml:"duplicates"`
	Malformed          seriestype.MalformedPolicy     `mapstructure:"malformed" yaml:"malformed"`
	MalformedDir       string                         `mapstructure:"malformed_dir" yaml:"malformed_dir"`
}

type LoggingConfig struct {
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level"`
	ToFile       bool   `mapstructure:"to_file" yaml:"to_file"`
	FileLevel    string `mapstructure:"file_level" yaml:"file_level"`
	// FileMode is either "append" or "truncate".
	FileMode string `mapstructure:"file_mode" yaml:"file_mode"`
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
}

func defaultSeriesConfig(name string) SeriesConfig {
	return SeriesConfig{
		InputDir:           filepath.Join("data", name, "input"),
		FileExtension:      ".dat",
		FilenameLayout:     "2006-01-02 15-04-05",
		InputSeparator:     ",",
		OutputFile:         filepath.Join("data", name, name+".csv"),
		OutputSeparator:    ",",
		MaxNullFraction:    0.1,
		MaxConsecutiveNull: 5,
		NullFilling:        seriestype.FillLinear,
		Duplicates:         seriestype.DuplicatesDiscard,
		Malformed:          seriestype.MalformedSave,
		MalformedDir:       filepath.Join("data", name, "malformed"),
	}
}

func DefaultConfig() *Config {
	return &Config{
		SampleSize:      100,
		DefaultLabel:    "S",
		StartingIndex:   0,
		MaxSeriesPerRun: 0,
		MultiCore: MultiCoreConfig{
			Enable: false,
			Limit:  0,
		},
		Labeled:   defaultSeriesConfig("labeled"),
		Unlabeled: defaultSeriesConfig("unlabeled"),
		Logging: LoggingConfig{
			ConsoleLevel: "info",
			ToFile:       false,
			FileLevel:    "debug",
			FileMode:     FileModeAppend,
			FilePath:     filepath.Join("logs", ServiceName+".log"),
		},
	}
}

// Load reads configuration from a file and environment variables.
// When path is empty, "seriesingest.{yaml,json,toml}" is looked up in the
// working directory and its absence is not an error.
// Environment variables use the prefix "SERIESINGEST" and the dot character
// in keys is replaced by an underscore. For example, "labeled.input_dir"
// becomes "SERIESINGEST_LABELED_INPUT_DIR".
// Relative paths are resolved against the directory of the configuration file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	base := "."
	if used := v.ConfigFileUsed(); used != "" {
		base = filepath.Dir(used)
	}
	if err := cfg.resolvePaths(base); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

func (c *Config) resolvePaths(base string) error {
	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve configuration directory: %w", err)
	}
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(abs, *p)
		}
	}
	for _, sc := range []*SeriesConfig{&c.Labeled, &c.Unlabeled} {
		resolve(&sc.InputDir)
		resolve(&sc.OutputFile)
		resolve(&sc.MalformedDir)
	}
	resolve(&c.Logging.FilePath)
	return nil
}

// Schema returns the canonical column layout shared by both series kinds.
func (c *Config) Schema() seriestype.Schema {
	return seriestype.Schema{
		SampleSize:    c.SampleSize,
		Label:         c.DefaultLabel,
		StartingIndex: c.StartingIndex,
	}
}

// SeriesType returns the immutable configuration of one series kind.
func (c *Config) SeriesType(kind seriestype.Kind) (seriestype.Config, error) {
	var sc SeriesConfig
	switch kind {
	case seriestype.Labeled:
		sc = c.Labeled
	case seriestype.Unlabeled:
		sc = c.Unlabeled
	default:
		return seriestype.Config{}, fmt.Errorf("unknown series type %d", kind)
	}
	return seriestype.Config{
		Kind:               kind,
		Schema:             c.Schema(),
		InputDir:           sc.InputDir,
		FileExtension:      sc.FileExtension,
		FilenameLayout:     sc.FilenameLayout,
		InputSeparator:     sc.InputSeparator,
		OutputFile:         sc.OutputFile,
		OutputSeparator:    sc.OutputSeparator,
		MaxNullFraction:    sc.MaxNullFraction,
		MaxConsecutiveNull: sc.MaxConsecutiveNull,
		NullFilling:        sc.NullFilling,
		Duplicates:         sc.Duplicates,
		Malformed:          sc.Malformed,
		MalformedDir:       sc.MalformedDir,
	}, nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
