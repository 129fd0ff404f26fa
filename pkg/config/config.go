package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Outbox    OutboxConfig
	Auction   AuctionConfig
	Scheduler SchedulerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Auction.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AUCTIONHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"AUCTIONHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUCTIONHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUCTIONHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AUCTIONHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AUCTIONHUB_DB_DSN"`
	Driver string `envconfig:"AUCTIONHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AUCTIONHUB_DB_HOST"`
	Port     int    `envconfig:"AUCTIONHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"AUCTIONHUB_DB_USER"`
	Password string `envconfig:"AUCTIONHUB_DB_PASSWORD"`
	Name     string `envconfig:"AUCTIONHUB_DB_NAME"`
	SSLMode  string `envconfig:"AUCTIONHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUCTIONHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUCTIONHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUCTIONHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUCTIONHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUCTIONHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUCTIONHUB_REDIS_ADDR"`
	Password     string        `envconfig:"AUCTIONHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUCTIONHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUCTIONHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUCTIONHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUCTIONHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUCTIONHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUCTIONHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AUCTIONHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AUCTIONHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"AUCTIONHUB_JWT_EXPIRATION_MINUTES" default:"60"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUCTIONHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"AUCTIONHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUCTIONHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"AUCTIONHUB_PUBSUB_DOMAIN_TOPIC" default:"auction-domain-events"`
	DomainSubscription string `envconfig:"AUCTIONHUB_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AUCTIONHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AUCTIONHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AUCTIONHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// AuctionConfig carries engine defaults applied to new auction events.
type AuctionConfig struct {
	TimerWindowSeconds int           `envconfig:"AUCTIONHUB_AUCTION_TIMER_WINDOW_SECONDS" default:"20"`
	StartingBudget     int64         `envconfig:"AUCTIONHUB_AUCTION_STARTING_BUDGET" default:"10000"`
	MaxBidCap          int64         `envconfig:"AUCTIONHUB_AUCTION_MAX_BID_CAP" default:"5000"`
	MaxItemsPerParty   int           `envconfig:"AUCTIONHUB_AUCTION_MAX_ITEMS_PER_PARTY" default:"11"`
	AdvanceDelay       time.Duration `envconfig:"AUCTIONHUB_AUCTION_ADVANCE_DELAY" default:"3s"`
	AutoMode           bool          `envconfig:"AUCTIONHUB_AUCTION_AUTO_MODE" default:"true"`
}

func (a AuctionConfig) TimerWindow() time.Duration {
	return time.Duration(a.TimerWindowSeconds) * time.Second
}

func (a AuctionConfig) validate() error {
	if a.TimerWindowSeconds <= 0 {
		return fmt.Errorf("timer window must be positive, got %d", a.TimerWindowSeconds)
	}
	if a.StartingBudget <= 0 {
		return fmt.Errorf("starting budget must be positive, got %d", a.StartingBudget)
	}
	if a.MaxBidCap <= 0 {
		return fmt.Errorf("max bid cap must be positive, got %d", a.MaxBidCap)
	}
	return nil
}

type SchedulerConfig struct {
	PollInterval time.Duration `envconfig:"AUCTIONHUB_SCHEDULER_POLL_INTERVAL" default:"15s"`
	MetricsPort  string        `envconfig:"AUCTIONHUB_SCHEDULER_METRICS_PORT" default:"9091"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	hostValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if hostValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
