// Package config loads client settings and Habitica credentials.
package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// EnvUserID and EnvAPIToken are the credential environment variables
	EnvUserID   = "HABITICA_USER_ID"
	EnvAPIToken = "HABITICA_API_TOKEN"

	configFile = "config.json"

	defaultTimeoutSeconds = 15
)

// Settings are the optional client overrides from ~/.habitui/config.json
type Settings struct {
	BaseURL        string `json:"base_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Timeout returns the per-call network timeout
func (s Settings) Timeout() time.Duration {
	secs := s.TimeoutSeconds
	if secs <= 0 {
		secs = defaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}

// Credentials identify the Habitica account
type Credentials struct {
	UserID   string
	APIToken string
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".habitui"), nil
}

// ConfigPath returns the settings file path (~/.habitui/config.json)
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadSettings reads the settings file. A missing file is not an
// error; defaults apply.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}

// SaveSettings writes the settings file, creating the directory as needed
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// EnvCredentials reads credentials from the environment
func EnvCredentials() (Credentials, bool) {
	creds := Credentials{
		UserID:   strings.TrimSpace(os.Getenv(EnvUserID)),
		APIToken: strings.TrimSpace(os.Getenv(EnvAPIToken)),
	}
	return creds, creds.UserID != "" && creds.APIToken != ""
}

// PromptCredentials asks for the two credentials on w and reads them
// from r, one per line.
func PromptCredentials(r io.Reader, w io.Writer) (Credentials, error) {
	scanner := bufio.NewScanner(r)

	fmt.Fprint(w, "Habitica user ID: ")
	userID, err := readLine(scanner)
	if err != nil {
		return Credentials{}, err
	}
	fmt.Fprint(w, "Habitica API token: ")
	token, err := readLine(scanner)
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{UserID: userID, APIToken: token}
	if creds.UserID == "" || creds.APIToken == "" {
		return Credentials{}, errors.New("both user ID and API token are required")
	}
	return creds, nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
