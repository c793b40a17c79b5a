package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/divyasajjan/landmark-finder/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the OS specific default configuration paths.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "landmark-finder"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "landmark-finder"),
			"/etc/landmark-finder",
		}
	}

	return configPaths, nil
}

// GetBasePath expands a possibly relative directory against the working
// directory and ensures it exists.
func GetBasePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	basePath := filepath.Join(wd, path)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return path
	}
	return basePath
}
