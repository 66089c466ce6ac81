// internal/config/load.go
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment overrides for secrets kept out of config files.
const (
	EnvInverterEndpoint = "SOLAX_INVERTER_ENDPOINT"
	EnvInverterSerial   = "SOLAX_INVERTER_SERIAL"
	EnvWebhookURL       = "SOLAX_WEBHOOK_URL"
)

// Load reads a config file.
// .yaml/.yml files are decoded strictly; anything else is read as a
// KEY=VALUE secrets file. Environment overrides are applied last.
// Load does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(bytes.NewReader(data))
	default:
		cfg, err = decodeLegacy(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

func decodeYAML(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// decodeLegacy reads the flat secrets.txt format:
//
//	INVERTER_IP=192.168.1.50
//	SERIAL=SXXXXXXXXX
//	SERVER=root@10.0.0.7
//	DISCORD_WEBHOOK=https://discord.com/api/webhooks/...
//	HAVE_IDRAC=true
//	IDRAC_SERVER=10.0.0.20,root,calvin
//
// SERVER and IDRAC_SERVER may repeat. Unknown keys are ignored.
func decodeLegacy(r io.Reader) (*Config, error) {
	cfg := &Config{}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch key {
		case "INVERTER_IP":
			cfg.Inverter.Endpoint = value
		case "SERIAL", "INVERTER_SERIAL":
			cfg.Inverter.Serial = value
		case "SERVER":
			cfg.Shutdown.Hosts = append(cfg.Shutdown.Hosts, value)
		case "DISCORD_WEBHOOK":
			cfg.Alert.WebhookURL = value
		case "HAVE_IDRAC":
			cfg.PowerOn.Enabled = strings.ToLower(value) == "true"
		case "IDRAC_SERVER":
			parts := strings.Split(value, ",")
			if len(parts) != 3 {
				continue
			}
			cfg.PowerOn.Hosts = append(cfg.PowerOn.Hosts, PowerOnHost{
				Address:  strings.TrimSpace(parts[0]),
				Username: strings.TrimSpace(parts[1]),
				Password: strings.TrimSpace(parts[2]),
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvInverterEndpoint)); v != "" {
		cfg.Inverter.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvInverterSerial)); v != "" {
		cfg.Inverter.Serial = v
	}
	if v := strings.TrimSpace(getenv(EnvWebhookURL)); v != "" {
		cfg.Alert.WebhookURL = v
	}
}
