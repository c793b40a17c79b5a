// config.go: settings struct and functions to load and save the application settings.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/divyasajjan/landmark-finder/internal/errors"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings contains top level application settings.
type MainSettings struct {
	Name string // application instance name
	Log  LogConfig
}

// LogConfig defines the configuration for the application log file.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file
}

// DatastoreSettings contains the SQLite catalog settings.
type DatastoreSettings struct {
	Path     string // path to the SQLite database file
	SeedFile string // path to landmark seed JSON, optional
}

// WikidataSettings contains settings for the knowledge-base resolver.
type WikidataSettings struct {
	Endpoint    string              // MediaWiki action API endpoint
	Language    string              // search language
	SearchLimit int                 // max candidates per search
	Timeout     time.Duration       // per-request timeout
	Aliases     map[string][]string // landmark name -> alias labels to retry with
}

// FactsSettings contains settings for the Wikipedia facts collaborator.
type FactsSettings struct {
	Endpoint string        // REST summary endpoint prefix
	Timeout  time.Duration // per-request timeout
	CacheTTL time.Duration // how long fetched extracts are memoized
}

// GeminiSettings contains settings for the LLM summary/chat collaborator.
type GeminiSettings struct {
	APIKey string // Gemini API key
	Model  string // model name
}

// ScraperSettings contains settings for image acquisition.
type ScraperSettings struct {
	DataRoot     string              // root of the per-landmark image corpus
	TargetCount  int                 // images to acquire per run
	MinDimension int                 // minimum width/height of accepted images
	Timeout      time.Duration       // per-download timeout
	Keywords     map[string][]string // landmark name -> default search keywords
}

// TrainerSettings contains settings for training runs.
type TrainerSettings struct {
	ModelName string // label recorded on training runs
	Epochs    int    // epochs requested from the external trainer
	Command   string // external trainer executable, empty disables training
}

// Settings contains all application settings.
type Settings struct {
	Debug     bool // true to enable debug log output
	Main      MainSettings
	Datastore DatastoreSettings
	Wikidata  WikidataSettings
	Facts     FactsSettings
	Gemini    GeminiSettings
	Scraper   ScraperSettings
	Trainer   TrainerSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("landmark")
	viper.AutomaticEnv()

	// defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SetTestSettings installs a settings instance directly, bypassing viper.
// Intended for tests only.
func SetTestSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	once.Do(func() {})
	settingsInstance = settings
}

// SaveYAMLConfig updates the YAML configuration file with new settings.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first to get an atomic replace
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		os.Remove(tempName)
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			FileContext(configPath, int64(len(yamlData))).
			Build()
	}

	return nil
}
