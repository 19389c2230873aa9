package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	internal "github.com/precidx/precidx/precidx"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Spec       SpecConfig       `mapstructure:"spec"`
	Data       DataConfig       `mapstructure:"data"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Provenance ProvenanceConfig `mapstructure:"provenance"`
	Store      StoreConfig      `mapstructure:"store"`
}

// SpecConfig locates the tool catalog text.
type SpecConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig locates transcript folders and the output directory.
type DataConfig struct {
	Folders   []string `mapstructure:"folders"`
	OutputDir string   `mapstructure:"output_dir"`
}

// PolicyConfig tunes parsing and batch behavior.
type PolicyConfig struct {
	PreserveCombinatorCase bool `mapstructure:"preserve_combinator_case"` // keep anyOf/oneOf/allOf casing as written
	Workers                int  `mapstructure:"workers"`                  // concurrent transcript validations
	ExcludeLastSteps       int  `mapstructure:"exclude_last_steps"`       // trailing summary steps to skip in metrics
}

// ProvenanceConfig tunes parameter provenance checking.
type ProvenanceConfig struct {
	SubstringMinLen int      `mapstructure:"substring_min_len"` // 0 disables substring matching
	QueryParams     []string `mapstructure:"query_params"`      // override of query-sourced argument names
	EntitiesPath    string   `mapstructure:"entities_path"`     // JSON file: folder name -> entity list
}

// StoreConfig locates the runs database.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(internal.DefaultAppName)
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("spec.path", internal.DefaultSpecPath)
	viper.SetDefault("data.folders", []string{})
	viper.SetDefault("data.output_dir", internal.DefaultOutputDir)

	viper.SetDefault("policy.preserve_combinator_case", false)
	viper.SetDefault("policy.workers", internal.DefaultWorkers)
	viper.SetDefault("policy.exclude_last_steps", 0)

	viper.SetDefault("provenance.substring_min_len", internal.DefaultSubstringMinLen)
	viper.SetDefault("provenance.query_params", []string{})
	viper.SetDefault("provenance.entities_path", "")

	viper.SetDefault("store.enabled", false)
	viper.SetDefault("store.path", internal.DefaultStorePath)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults and env vars apply.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &AppConfig, nil
}

// LoadEntities reads the per-folder entity lists named by the provenance
// config. An empty path yields an empty map.
func (c ProvenanceConfig) LoadEntities() (map[string][]string, error) {
	if c.EntitiesPath == "" {
		return map[string][]string{}, nil
	}
	data, err := os.ReadFile(c.EntitiesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities config %s: %w", c.EntitiesPath, err)
	}
	entities := make(map[string][]string)
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities config %s: %w", c.EntitiesPath, err)
	}
	return entities, nil
}
