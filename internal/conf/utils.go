package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/modaudio/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the default configuration directories for the current OS.
// If a config file exists in one of them, only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryResource).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryResource).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "modaudio"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "modaudio"),
			"/etc/modaudio",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, ConfigFileName)); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// FindConfigFile returns the first existing config file in the default paths
func FindConfigFile() (string, error) {
	paths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		configFile := filepath.Join(path, ConfigFileName)
		if _, err := os.Stat(configFile); err == nil {
			return configFile, nil
		}
	}

	return "", errors.Newf("config file not found in %v", paths).
		Component("conf").
		Category(errors.CategoryNotFound).
		Build()
}

// ResolveRootPaths makes relative pack root paths absolute against baseDir
func (s *Settings) ResolveRootPaths(baseDir string) {
	for i := range s.Packs.Roots {
		if !filepath.IsAbs(s.Packs.Roots[i].Path) {
			s.Packs.Roots[i].Path = filepath.Join(baseDir, s.Packs.Roots[i].Path)
		}
	}
}
