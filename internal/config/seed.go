package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed lists guild-level grants applied at startup.
//
//	guilds:
//	  - id: 7
//	    roles: [700]
//	    users: [1001]
type Seed struct {
	Guilds []GuildSeed `yaml:"guilds"`
}

// GuildSeed holds one guild's authorized roles and users.
type GuildSeed struct {
	ID    int64   `yaml:"id"`
	Roles []int64 `yaml:"roles"`
	Users []int64 `yaml:"users"`
}

// LoadSeed reads a grant seed file. An empty path yields an empty seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return &Seed{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and checks seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for i, g := range seed.Guilds {
		if g.ID <= 0 {
			return nil, fmt.Errorf("seed guild #%d: id must be positive", i+1)
		}
	}
	return &seed, nil
}
