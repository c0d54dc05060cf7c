package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		App      App      `env-prefix:"APP_"`
		Logger   Logger   `env-prefix:"LOGGER_"`
		Database Database `env-prefix:"DB_"`
		Redis    Redis    `env-prefix:"REDIS_"`
		Firebase Firebase `env-prefix:"FIREBASE_"`
		Engine   Engine   `env-prefix:"ENGINE_"`
		HTTP     HTTP     `env-prefix:"HTTP_"`
		Ops      Ops      `env-prefix:"OPS_"`
		Env      string   `env:"ENV" env-default:"local" validate:"oneof=local dev staging prod"`
	}

	App struct {
		Name    string `env:"NAME"    env-default:"push-dispatcher" validate:"required"`
		Version string `env:"VERSION" env-default:"dev"             validate:"required"`
	}

	Logger struct {
		Level      string `env:"LEVEL"       env-default:"info" validate:"oneof=debug info warn error"`
		Filename   string `env:"FILENAME"    env-default:""`
		MaxSize    int    `env:"MAX_SIZE"    env-default:"100"  validate:"min=1,max=1000"`
		MaxBackups int    `env:"MAX_BACKUPS" env-default:"3"    validate:"min=0,max=20"`
		MaxAge     int    `env:"MAX_AGE"     env-default:"28"   validate:"min=1,max=365"`
	}

	Database struct {
		DSN            string        `env:"DSN" validate:"required"`
		PoolMax        int32         `env:"POOL_MAX"        env-default:"10" validate:"min=1,max=100"`
		ConnAttempts   int           `env:"CONN_ATTEMPTS"   env-default:"5"  validate:"min=1,max=20"`
		ConnDelay      time.Duration `env:"CONN_DELAY"      env-default:"2s" validate:"gte=100ms,lte=30s"`
		MigrationsPath string        `env:"MIGRATIONS_PATH" env-default:"file://migrations"`
	}

	Redis struct {
		Addr        string        `env:"ADDR"          env-default:"localhost:6379" validate:"required"`
		Password    string        `env:"PASSWORD"      env-default:""`
		DB          int           `env:"DB"            env-default:"0"`
		PoolSize    int           `env:"POOL_SIZE"     env-default:"20"    validate:"min=1,max=100"`
		MinIdleCons int           `env:"MIN_IDLE_CONS" env-default:"10"    validate:"min=1,max=100"`
		PoolTimeout time.Duration `env:"POOL_TIMEOUT"  env-default:"100ms" validate:"gte=10ms,lte=10s"`
	}

	Firebase struct {
		CredentialsFile string `env:"CREDENTIALS_FILE" env-default:"firebase-adminsdk.json" validate:"required"`
	}

	// Engine carries the dispatch tunables. GuardWindow is the inter-run
	// spacing the execution guard enforces; CycleDelay the pause between
	// full cycles; NotifyPause the throttle between notifications within
	// one cycle. BatchLimit 0 means fetch all pending rows; GatewayRate 0
	// means no send rate limit.
	Engine struct {
		GuardWindow time.Duration `env:"GUARD_WINDOW" env-default:"5m" validate:"gte=0"`
		CycleDelay  time.Duration `env:"CYCLE_DELAY"  env-default:"2s" validate:"gte=100ms,lte=10m"`
		NotifyPause time.Duration `env:"NOTIFY_PAUSE" env-default:"1s" validate:"gte=0,lte=1m"`
		BatchLimit  uint64        `env:"BATCH_LIMIT"  env-default:"0"`
		GatewayRate int           `env:"GATEWAY_RATE" env-default:"0" validate:"min=0"`
	}

	HTTP struct {
		Host              string        `env:"HOST"                env-default:"0.0.0.0" validate:"required"`
		Port              string        `env:"PORT"                env-default:"8080"    validate:"required"`
		ReadTimeout       time.Duration `env:"READ_TIMEOUT"        env-default:"5s"      validate:"gte=10ms,lte=30s"`
		WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       env-default:"5s"      validate:"gte=10ms,lte=30s"`
		IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        env-default:"60s"     validate:"gte=10ms,lte=5m"`
		ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" env-default:"5s"      validate:"gte=10ms,lte=30s"`
		ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    env-default:"10s"     validate:"gte=10ms,lte=30s"`
	}

	// Ops is the dispatcher's health and metrics listener.
	Ops struct {
		Addr string `env:"ADDR" env-default:":8081" validate:"required"`
	}
)

// Load reads configuration from the environment, after loading a local
// .env file when one exists.
func Load() (*Config, error) {
	const op = "config.Load"

	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: read env: %w", op, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New()

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		msgs := make([]string, 0, len(validationErrs))
		for _, ve := range validationErrs {
			msgs = append(msgs, fmt.Sprintf("%s=%v must satisfy '%s'", ve.Field(), ve.Value(), ve.Tag()))
		}
		return fmt.Errorf("validation: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("validation: %w", err)
}
