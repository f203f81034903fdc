package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/humbkr/nextjs-project-starter/internal/branding"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyPackageManager = "package_manager"
	KeyNodeConstraint = "node_constraint"
	KeyBestEffort     = "best_effort"
	KeyTemplateDir    = "template_dir"
	KeyGitInit        = "git_init"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
)

// Settings is the resolved configuration for one generator run.
type Settings struct {
	PackageManager string
	NodeConstraint string
	BestEffort     bool
	TemplateDir    string
	GitInit        bool
	LogLevel       string
	LogFormat      string
}

var defaultValues = map[string]any{
	KeyPackageManager: "yarn",
	KeyNodeConstraint: ">= 18.18.0",
	KeyBestEffort:     false,
	KeyTemplateDir:    "",
	KeyGitInit:        true,
	KeyLogLevel:       "info",
	KeyLogFormat:      "text",
}

// Keys returns the known setting keys.
func Keys() []string {
	return []string{
		KeyPackageManager,
		KeyNodeConstraint,
		KeyBestEffort,
		KeyTemplateDir,
		KeyGitInit,
		KeyLogLevel,
		KeyLogFormat,
	}
}

// Dir returns the path to the config directory (~/.nextjs-starter/).
func Dir() string {
	if override := os.Getenv(branding.EnvVar("home")); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	for key, value := range defaultValues {
		viper.SetDefault(key, value)
	}
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// BindFlag makes a command flag override the setting stored under key.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %q: flag not defined", key)
	}
	return viper.BindPFlag(key, flag)
}

// Resolve returns the current settings.
func Resolve() Settings {
	return Settings{
		PackageManager: strings.TrimSpace(viper.GetString(KeyPackageManager)),
		NodeConstraint: strings.TrimSpace(viper.GetString(KeyNodeConstraint)),
		BestEffort:     viper.GetBool(KeyBestEffort),
		TemplateDir:    strings.TrimSpace(viper.GetString(KeyTemplateDir)),
		GitInit:        viper.GetBool(KeyGitInit),
		LogLevel:       viper.GetString(KeyLogLevel),
		LogFormat:      viper.GetString(KeyLogFormat),
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// IsKnown reports whether key is a recognised setting.
func IsKnown(key string) bool {
	_, ok := defaultValues[key]
	return ok
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
