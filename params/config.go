package params

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/uhyunpark/ioaccount/pkg/address"
)

type Network struct {
	// Name selects the bech32 prefix: "mainnet" (io) or "testnet" (it).
	// Applied once at startup via address.SetNetwork; never change it afterwards.
	Name string `envconfig:"IOTEX_NETWORK" default:"mainnet"`
}

type Node struct {
	APIAddr  string `envconfig:"API_ADDR" default:":8080"`
	LogFile  string `envconfig:"LOG_FILE" default:"data/iod.log"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// DirectoryPath is the Pebble directory of public identity records.
	// Empty keeps the directory in memory.
	DirectoryPath  string   `envconfig:"DIRECTORY_PATH" default:"data/directory"`
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

type Config struct {
	Network Network
	Node    Node
}

func Default() Config {
	return Config{
		Network: Network{Name: "mainnet"},
		Node: Node{
			APIAddr:        ":8080",
			LogFile:        "data/iod.log",
			LogLevel:       "info",
			DirectoryPath:  "data/directory",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	cfg := Default()
	if err := envconfig.Process("", &cfg.Network); err != nil {
		return cfg, fmt.Errorf("failed to process network config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Node); err != nil {
		return cfg, fmt.Errorf("failed to process node config: %w", err)
	}
	if _, err := cfg.AddressNetwork(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// AddressNetwork maps the configured name onto the address codec's network
func (c Config) AddressNetwork() (address.Network, error) {
	return address.ParseNetwork(c.Network.Name)
}
