package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"dealerhub/storage"
)

const (
	KeyStoreBackend        = "store.backend"
	KeyStoreMaxBatchWrites = "store.max_batch_writes"
	KeySQLitePath          = "store.sqlite.path"
	KeyMongoURI            = "store.mongo.uri"
	KeyMongoDatabase       = "store.mongo.database"
	KeyDynamoTable         = "store.dynamodb.table"
	KeyDynamoRegion        = "store.dynamodb.region"
	KeyDynamoEndpoint      = "store.dynamodb.endpoint"
	KeyImportWorkers       = "import.workers"
	KeyImportListDelimiter = "import.list_delimiter"
	KeyImportCommitTimeout = "import.commit_timeout"
	KeyLogLevel            = "log.level"
	KeyLogFormat           = "log.format"
	KeyServerPort          = "server.port"
)

type Config struct {
	Store  StoreConfig  `mapstructure:"store" validate:"required"`
	Import ImportConfig `mapstructure:"import"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type StoreConfig struct {
	Backend        string       `mapstructure:"backend" validate:"required,oneof=sqlite mongo dynamodb"`
	MaxBatchWrites int          `mapstructure:"max_batch_writes" validate:"gte=0"`
	SQLite         SQLiteConfig `mapstructure:"sqlite"`
	Mongo          MongoConfig  `mapstructure:"mongo"`
	DynamoDB       DynamoConfig `mapstructure:"dynamodb"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type DynamoConfig struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type ImportConfig struct {
	Workers       int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	ListDelimiter string        `mapstructure:"list_delimiter" validate:"required,len=1,excludesall=0x2C"`
	CommitTimeout time.Duration `mapstructure:"commit_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# dealerhub configuration
store:
  backend: "sqlite"
  max_batch_writes: 0
  sqlite:
    path: "dealerhub.db"
  mongo:
    uri: "mongodb://localhost:27017/?replicaSet=rs0"
    database: "dealerhub"
  dynamodb:
    table: "dealerhub-records"
    region: "eu-central-1"
    endpoint: ""

import:
  workers: 4
  list_delimiter: ";"
  commit_timeout: "0s"

log:
  level: "info"
  format: "console"

server:
  port: 8080
`
}

// StorageOptions maps the store section onto storage.Open options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:        c.Store.Backend,
		MaxBatchWrites: c.Store.MaxBatchWrites,
		SQLitePath:     c.Store.SQLite.Path,
		MongoURI:       c.Store.Mongo.URI,
		MongoDatabase:  c.Store.Mongo.Database,
		DynamoTable:    c.Store.DynamoDB.Table,
		DynamoRegion:   c.Store.DynamoDB.Region,
		DynamoEndpoint: c.Store.DynamoDB.Endpoint,
	}
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateBackend(cfg.Store); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStoreBackend, storage.BackendSQLite)
	v.SetDefault(KeyStoreMaxBatchWrites, 0)
	v.SetDefault(KeySQLitePath, "dealerhub.db")
	v.SetDefault(KeyMongoURI, "")
	v.SetDefault(KeyMongoDatabase, "dealerhub")
	v.SetDefault(KeyDynamoTable, "")
	v.SetDefault(KeyDynamoRegion, "")
	v.SetDefault(KeyDynamoEndpoint, "")
	v.SetDefault(KeyImportWorkers, 4)
	v.SetDefault(KeyImportListDelimiter, ";")
	v.SetDefault(KeyImportCommitTimeout, "0s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyServerPort, 8080)
}

// validateBackend checks the settings the selected backend needs.
func validateBackend(store StoreConfig) error {
	switch store.Backend {
	case storage.BackendSQLite:
		if strings.TrimSpace(store.SQLite.Path) == "" {
			return fmt.Errorf("validation failed: store.sqlite.path is required for the sqlite backend")
		}
	case storage.BackendMongo:
		if strings.TrimSpace(store.Mongo.URI) == "" || strings.TrimSpace(store.Mongo.Database) == "" {
			return fmt.Errorf("validation failed: store.mongo.uri and store.mongo.database are required for the mongo backend")
		}
	case storage.BackendDynamoDB:
		if strings.TrimSpace(store.DynamoDB.Table) == "" {
			return fmt.Errorf("validation failed: store.dynamodb.table is required for the dynamodb backend")
		}
		if store.MaxBatchWrites > storage.DynamoMaxTransactItems {
			return fmt.Errorf(
				"validation failed: store.max_batch_writes %d exceeds the dynamodb transaction limit of %d",
				store.MaxBatchWrites,
				storage.DynamoMaxTransactItems,
			)
		}
	}
	return nil
}
