package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const ErrorSpanTag = "error"

type Config struct {
	ServiceName string        `env:"SERVICE_NAME" envDefault:"auth-svc"`
	Server      ServerConfig  `envPrefix:"SERVER_"`
	DB          DBConfig      `envPrefix:"POSTGRES_"`
	Redis       RedisConfig   `envPrefix:"REDIS_"`
	Jaeger      *JaegerConfig `envPrefix:"JAEGER_"`
	Auth        AuthConfig    `envPrefix:"AUTH_"`
	Email       EmailConfig   `envPrefix:"EMAIL_"`
	Sweep       SweepConfig   `envPrefix:"SWEEP_"`
}

type ServerConfig struct {
	Mode           string        `env:"MODE"            envDefault:"dev"`
	Scheme         string        `env:"SCHEME"          envDefault:"http"`
	Domain         string        `env:"DOMAIN"          envDefault:"localhost"`
	Port           int           `env:"PORT"            envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

type DBConfig struct {
	Host         string        `env:"HOST"          envDefault:"localhost"`
	Port         int           `env:"PORT"          envDefault:"5432"`
	User         string        `env:"USER"          envDefault:"app_owner"`
	Password     string        `env:"PASSWORD"`
	Database     string        `env:"DB"            envDefault:"auth_db"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"10s"`
}

type RedisConfig struct {
	Addr string `env:"ADDR" envDefault:"localhost:6379"`
	Pass string `env:"PASS"`
	DB   int    `env:"DB"   envDefault:"0"`
}

type JaegerConfig struct {
	Sampler struct {
		Type  string  `env:"TYPE"  envDefault:"const"`
		Param float64 `env:"PARAM" envDefault:"1"`
	} `envPrefix:"SAMPLER_"`
	Reporter struct {
		LogSpans           bool   `env:"LOG_SPANS"             envDefault:"false"`
		LocalAgentHostPort string `env:"LOCAL_AGENT_HOST_PORT" envDefault:"localhost:6831"`
	} `envPrefix:"REPORTER_"`
}

type AuthConfig struct {
	BcryptCost      int           `env:"BCRYPT_COST"      envDefault:"12"`
	HashConcurrency int64         `env:"HASH_CONCURRENCY" envDefault:"4"`
	JWT             JWTConfig     `envPrefix:"JWT_"`
	Refresh         RefreshConfig `envPrefix:"REFRESH_"`
	Login           LoginConfig   `envPrefix:"LOGIN_"`
	Captcha         CaptchaConfig `envPrefix:"CAPTCHA_"`
}

type JWTConfig struct {
	Secret    string        `env:"SECRET,required"`
	Issuer    string        `env:"ISSUER"     envDefault:"auth-svc"`
	Audience  string        `env:"AUDIENCE"   envDefault:"auth-svc-clients"`
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
}

type RefreshConfig struct {
	TTL         time.Duration `env:"TTL"          envDefault:"168h"`
	GracePeriod time.Duration `env:"GRACE_PERIOD" envDefault:"120s"`
	RateLimit   int64         `env:"RATE_LIMIT"   envDefault:"10"`
	RateWindow  time.Duration `env:"RATE_WINDOW"  envDefault:"1m"`
}

type LoginConfig struct {
	MaxAttempts   int           `env:"MAX_ATTEMPTS"   envDefault:"5"`
	Window        time.Duration `env:"WINDOW"         envDefault:"15m"`
	BlockDuration time.Duration `env:"BLOCK_DURATION" envDefault:"15m"`
}

type CaptchaConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Secret  string `env:"SECRET"`
}

type EmailConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Server  string `env:"SERVER"  envDefault:"smtp.gmail.com"`
	Port    int    `env:"PORT"    envDefault:"587"`
	User    string `env:"USER"`
	Pass    string `env:"PASS"`
}

type SweepConfig struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"1h"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	conf := Config{Jaeger: &JaegerConfig{}}
	if err := env.Parse(&conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func MustLoad(envFiles ...string) Config {
	conf, err := Load(envFiles...)
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}

	zap.L().Info("Config loaded", zap.String("service", conf.ServiceName))
	return conf
}
