package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// AppDir is the per-user directory holding config and session state.
	AppDir = ".resume-studio"

	// BackendFile stores the session as a JSON file.
	BackendFile = "file"
	// BackendSQLite stores the session in a SQLite database.
	BackendSQLite = "sqlite"
	// BackendMemory keeps the session in memory only.
	BackendMemory = "memory"

	// DefaultHistoryLimit bounds the number of undo snapshots kept.
	DefaultHistoryLimit = 200
	// DefaultTargetJobRole is used until the user picks a role.
	DefaultTargetJobRole = "Senior Software Engineer"
)

// Config represents the application configuration.
type Config struct {
	AnthropicAPIKey string        `json:"anthropic_api_key"`
	Models          ModelsConfig  `json:"models,omitempty"`
	Storage         StorageConfig `json:"storage"`
	History         HistoryConfig `json:"history"`
	Pandoc          PandocConfig  `json:"pandoc"`
	Defaults        DefaultConfig `json:"defaults"`
}

// ModelsConfig holds model selection for generation and analysis.
type ModelsConfig struct {
	Generation string `json:"generation,omitempty"`
	Analysis   string `json:"analysis,omitempty"`
}

// StorageConfig selects where session state is persisted.
type StorageConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// HistoryConfig tunes the undo history.
type HistoryConfig struct {
	Limit int `json:"limit"`
}

// PandocConfig holds pandoc-related configuration. Every field is optional:
// PDF export is skipped without the template and class, and DOCX export uses
// pandoc's default styles without a reference document.
type PandocConfig struct {
	TemplatePath string `json:"template_path"`
	ClassFile    string `json:"class_file"`
	ReferenceDoc string `json:"reference_doc,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir     string `json:"output_dir"`
	TargetJobRole string `json:"target_job_role"`
	// ExportFormats is a comma separated list such as "pdf,html,docx".
	ExportFormats string `json:"export_formats,omitempty"`
}

// GetGenerationModel returns the generation model or default if not specified.
func (c *Config) GetGenerationModel() (model string) {
	if c.Models.Generation != "" {
		model = c.Models.Generation
		return model
	}
	model = "claude-sonnet-4-20250514"
	return model
}

// GetAnalysisModel returns the model used for the interview prep kit.
func (c *Config) GetAnalysisModel() (model string) {
	if c.Models.Analysis != "" {
		model = c.Models.Analysis
		return model
	}
	model = "claude-sonnet-4-5-20250929"
	return model
}

// PDFEnabled reports whether pandoc export is configured.
func (c *Config) PDFEnabled() (ok bool) {
	ok = c.Pandoc.TemplatePath != "" && c.Pandoc.ClassFile != ""
	return ok
}

// DefaultPath returns ~/.resume-studio/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, AppDir, "config.json")
	return path, err
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'resume-studio init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	cfg.ApplyEnv()

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// ApplyEnv overrides file values with ANTHROPIC_API_KEY and RESUME_STUDIO_STORE.
func (c *Config) ApplyEnv() {
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.AnthropicAPIKey = apiKey
	}

	if backend := os.Getenv("RESUME_STUDIO_STORE"); backend != "" {
		c.Storage.Backend = backend
	}
}

// Validate checks that required configuration is present and fills defaults.
func (c *Config) Validate() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			c.Storage.Path, err = defaultStoragePath(c.Storage.Backend)
			if err != nil {
				return err
			}
		}
	case BackendMemory:
	default:
		err = errors.Errorf("storage.backend must be one of %s, %s, %s: got %q", BackendFile, BackendSQLite, BackendMemory, c.Storage.Backend)
		return err
	}

	if c.History.Limit < 0 {
		err = errors.Errorf("history.limit must not be negative: got %d", c.History.Limit)
		return err
	}

	if c.History.Limit == 0 {
		c.History.Limit = DefaultHistoryLimit
	}

	if (c.Pandoc.TemplatePath == "") != (c.Pandoc.ClassFile == "") {
		err = errors.New("pandoc.template_path and pandoc.class_file must be set together")
		return err
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./applications"
	}

	if c.Defaults.TargetJobRole == "" {
		c.Defaults.TargetJobRole = DefaultTargetJobRole
	}

	return err
}

func defaultStoragePath(backend string) (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}

	name := "session.json"
	if backend == BackendSQLite {
		name = "session.db"
	}

	path = filepath.Join(homeDir, AppDir, name)
	return path, err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		AnthropicAPIKey: "sk-ant-api03-...",
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(homeDir, AppDir, "session.db"),
		},
		History: HistoryConfig{
			Limit: DefaultHistoryLimit,
		},
		Defaults: DefaultConfig{
			OutputDir:     filepath.Join(homeDir, "Documents", "Applications"),
			TargetJobRole: DefaultTargetJobRole,
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
