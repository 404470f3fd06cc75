package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSqlite   = "sqlite"

	minBcryptCost = 10
	maxBcryptCost = 31
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort       int           `yaml:"http_port"`
	Storage        Storage       `yaml:"storage"`
	ThreadsPerPage int           `yaml:"threads_per_page"` // number of threads returned by board listing
	NLastReplies   int           `yaml:"n_last_replies"`   // number of last replies shown per thread in board listing
	BcryptCost     int           `yaml:"bcrypt_cost"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	SecureHeaders  bool          `yaml:"secure_headers"` // adds HSTS, enable when served over https
	CorsOrigins    []string      `yaml:"cors_allowed_origins"`
	RateLimits     RateLimits    `yaml:"rate_limits"`
	Log            Log           `yaml:"log"`
}

type Storage struct {
	Driver        string `yaml:"driver"`
	SqlitePath    string `yaml:"sqlite_path"`
	MongoDatabase string `yaml:"mongo_database"`
}

// RateLimits are per client IP, in requests per minute.
type RateLimits struct {
	CreatePerMinute float64 `yaml:"create_per_minute"`
	ReportPerMinute float64 `yaml:"report_per_minute"`
	DeletePerMinute float64 `yaml:"delete_per_minute"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Mongo struct {
	URI string `yaml:"uri"`
}

type Private struct {
	Pg    Pg    `yaml:"pg"`
	Mongo Mongo `yaml:"mongo"`
}

func (p *Public) setDefaults() {
	if p.HttpPort == 0 {
		p.HttpPort = 8080
	}
	if p.Storage.Driver == "" {
		p.Storage.Driver = DriverPostgres
	}
	if p.Storage.SqlitePath == "" {
		p.Storage.SqlitePath = "anonboard.db"
	}
	if p.Storage.MongoDatabase == "" {
		p.Storage.MongoDatabase = "anonboard"
	}
	if p.ThreadsPerPage == 0 {
		p.ThreadsPerPage = 10
	}
	if p.NLastReplies == 0 {
		p.NLastReplies = 3
	}
	if p.BcryptCost == 0 {
		p.BcryptCost = 12
	}
	if p.RequestTimeout == 0 {
		p.RequestTimeout = 10 * time.Second
	}
	if p.MaxBodyBytes == 0 {
		p.MaxBodyBytes = 64 << 10
	}
	if p.RateLimits.CreatePerMinute == 0 {
		p.RateLimits.CreatePerMinute = 6
	}
	if p.RateLimits.ReportPerMinute == 0 {
		p.RateLimits.ReportPerMinute = 30
	}
	if p.RateLimits.DeletePerMinute == 0 {
		p.RateLimits.DeletePerMinute = 10
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
}

func (p *Public) validate() error {
	switch p.Storage.Driver {
	case DriverPostgres, DriverMongo, DriverSqlite:
	default:
		return fmt.Errorf("unknown storage driver %q", p.Storage.Driver)
	}
	if p.ThreadsPerPage < 0 {
		return fmt.Errorf("threads_per_page must be positive, got %d", p.ThreadsPerPage)
	}
	if p.NLastReplies < 0 {
		return fmt.Errorf("n_last_replies must be positive, got %d", p.NLastReplies)
	}
	if p.BcryptCost < minBcryptCost || p.BcryptCost > maxBcryptCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, p.BcryptCost)
	}
	if p.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", p.RequestTimeout)
	}
	if p.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", p.MaxBodyBytes)
	}
	return nil
}

func (p *Private) validate(driver string) error {
	switch driver {
	case DriverPostgres:
		if p.Pg.Host == "" || p.Pg.Dbname == "" {
			return fmt.Errorf("pg host and dbname are required for the %s driver", driver)
		}
	case DriverMongo:
		if p.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required for the %s driver", driver)
		}
	}
	return nil
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder.
// private.yaml may be absent when the selected driver needs no credentials.
func Load(configFolder string) (*Config, error) {
	var public Public
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return nil, err
	}
	public.setDefaults()
	if err := public.validate(); err != nil {
		return nil, err
	}

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		if err := loadPath(privatePath, &private); err != nil {
			return nil, err
		}
	}
	if err := private.validate(public.Storage.Driver); err != nil {
		return nil, err
	}

	return &Config{Public: public, Private: private}, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
