package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Host      string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port      int    `env:"PORT,default=3000" validate:"gt=0,lt=65536"`
	GrpcPort  int    `env:"GRPC_PORT,default=3001" validate:"gt=0,lt=65536"`
	DebugPort int    `env:"DEBUG_PORT,default=0" validate:"gte=0,lt=65536"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`

	LogBackend     string `env:"LOG_BACKEND,default=badger" validate:"oneof=badger sqlite memory"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger" validate:"required_if=LogBackend badger"`
	SqliteFilepath string `env:"SQLITE_FILEPATH,default=./data/game-lab.db" validate:"required_if=LogBackend sqlite"`

	TickInterval         time.Duration `env:"TICK_INTERVAL,default=100ms" validate:"gt=0"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=30s" validate:"gt=0"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=16" validate:"gt=0"`
	MailboxSize          int           `env:"MAILBOX_SIZE,default=64" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=10s" validate:"gte=0"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true" validate:"min=16"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h" validate:"gt=0"`

	OtelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadConfig reads an optional .env file then the environment.
func LoadConfig(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
