package server

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Tyrowin/nexus-chat-server/internal/chat"
)

// RoomYAML is one seed room.
type RoomYAML struct {
	Name string `yaml:"name"`
}

// RoomsConfig is the layout of the seed rooms file:
//
//	rooms:
//	  - name: general
//	  - name: random
type RoomsConfig struct {
	Rooms []RoomYAML `yaml:"rooms"`
}

// LoadRoomsFromYAML reads a seed rooms file and creates each room.
func LoadRoomsFromYAML(path string, coord *chat.Coordinator, logger zerolog.Logger) ([]chat.RoomInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from ROOMS_FILE
	if err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}
	return ImportRoomsFromYAML(data, coord, logger)
}

// ImportRoomsFromYAML parses seed rooms and creates them with no members and
// an empty history. Entries whose name is empty are skipped.
func ImportRoomsFromYAML(data []byte, coord *chat.Coordinator, logger zerolog.Logger) ([]chat.RoomInfo, error) {
	var cfg RoomsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rooms config: %w", err)
	}

	created := make([]chat.RoomInfo, 0, len(cfg.Rooms))
	for _, r := range cfg.Rooms {
		info, err := coord.SeedRoom(r.Name)
		if err != nil {
			logger.Warn().Err(err).Str("name", r.Name).Msg("skipping seed room")
			continue
		}
		created = append(created, info)
	}

	logger.Info().Int("count", len(created)).Msg("seeded rooms from YAML")
	return created, nil
}
