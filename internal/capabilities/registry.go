package capabilities

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Manifest describes the service identity and the capability list advertised
// in the SSE handshake envelope.
type Manifest struct {
	Service      string   `yaml:"service"`
	Capabilities []string `yaml:"capabilities"`
}

// Load reads the embedded manifest YAML. Called once at startup.
func Load() (*Manifest, error) {
	data, err := configFiles.ReadFile("config/manifest.yaml")
	if err != nil {
		return nil, fmt.Errorf("read capability manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal capability manifest: %w", err)
	}
	if m.Service == "" {
		return nil, fmt.Errorf("capability manifest missing service name")
	}
	if len(m.Capabilities) == 0 {
		return nil, fmt.Errorf("capability manifest lists no capabilities")
	}

	return &m, nil
}
