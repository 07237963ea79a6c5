package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# revcompare configuration

# Number of most recent quarters charted per company
window = 20

# Exactly two companies are compared.
[[entities]]
name = "NVIDIA"
symbol = "NVDA"
color = "#76B900"

[[entities]]
name = "AMD"
symbol = "AMD"
color = "#ED1C24"

[fetch]
base_url = "https://query2.finance.yahoo.com"
# Visited once to obtain the session cookie used for the crumb
session_url = "https://fc.yahoo.com"
# Per-request timeout (e.g., "30s", "1m")
timeout = "30s"
# Outbound request rate; 0 disables limiting
requests_per_second = 2.0
# Fetch both companies at the same time
concurrent = false
# Years of quarterly statements to request
history_years = 6

[chart]
# Figure size in inches
width = 14.0
height = 12.0
# Liberation font variant: "Sans", "Serif" or "Mono"
font_variant = "Sans"
title_size = 20.0
label_size = 14.0
tick_size = 12.0
caption = "Source: Yahoo Finance | Generated with gonum/plot"
# PNG path; leave empty to open the chart in the system viewer
output = ""

[logging]
# debug, info, warn, error
level = "info"
console = true
file = false
max_size = 10
max_backups = 3
max_age = 30
`

// WriteTemplate writes the commented config template into configDir.
// An existing file is left untouched unless force is set.
func WriteTemplate(configDir string, force bool) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}
