package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const placeholderAPIKey = "YOUR_API_KEY_HERE"

const userConfigHeader = `# TJWeather API configuration
# Replace the placeholder with your API key.
#
# API_KEY        required
# NC_ENDPOINT    NetCDF download endpoint
# JSON_ENDPOINT  JSON query endpoint
`

// UserConfigPath is the per-user env file under home.
func UserConfigPath(home string) string {
	return filepath.Join(home, ".config", "tjweather", ".env")
}

// InitUserConfig writes an example user config file. An existing file is
// left alone unless force is set. It reports the path and whether a file was
// written.
func InitUserConfig(home string, force bool) (string, bool, error) {
	path := UserConfigPath(home)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return path, false, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	body, err := godotenv.Marshal(map[string]string{
		"API_KEY":       placeholderAPIKey,
		"NC_ENDPOINT":   DefaultNCEndpoint,
		"JSON_ENDPOINT": DefaultJSONEndpoint,
	})
	if err != nil {
		return path, false, fmt.Errorf("failed to render config file: %w", err)
	}

	if err := os.WriteFile(path, []byte(userConfigHeader+body+"\n"), 0o600); err != nil {
		return path, false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}
