package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode      string `mapstructure:"mode"`
	Port      int    `mapstructure:"port"`
	Secret    string `mapstructure:"secret"`
	JWTSecret string `mapstructure:"jwt_secret"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	BadgerPath string `mapstructure:"badger_path"`

	MaxParticipantsPerRoom int `mapstructure:"max_participants_per_room"`
	MaxConcurrentRooms     int `mapstructure:"max_concurrent_rooms"`
	MaxTotalConnections    int `mapstructure:"max_total_connections"`
	MaxVideoStreamsPerRoom int `mapstructure:"max_video_streams_per_room"`
	MaxAudioStreamsPerRoom int `mapstructure:"max_audio_streams_per_room"`

	RoomGracePeriod time.Duration `mapstructure:"room_grace_period"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
	ChatLogCap      int           `mapstructure:"chat_log_cap"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("badger_path", "./data/chat")
	v.SetDefault("max_participants_per_room", 16)
	v.SetDefault("max_concurrent_rooms", 100)
	v.SetDefault("max_total_connections", 2000)
	v.SetDefault("max_video_streams_per_room", 12)
	v.SetDefault("max_audio_streams_per_room", 16)
	v.SetDefault("room_grace_period", "2m")
	v.SetDefault("janitor_interval", "30s")
	v.SetDefault("chat_log_cap", 200)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
