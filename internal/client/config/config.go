package config

import (
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
)

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// Config holds runtime settings for the vault CLI.
type Config struct {
	ServerEndpointAddr string
	Transport          string
	HTTPBaseURL        string
	RequestTimeout     time.Duration
	KDFIterations      int

	VaultDebounce    time.Duration
	VaultMinInterval time.Duration
	CardsDebounce    time.Duration
	CardsMinInterval time.Duration

	TicketTTL      time.Duration
	MaxOTPAttempts int

	LogLevel string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Transport = TransportGRPC
	c.HTTPBaseURL = "http://127.0.0.1:3001/api"
	c.RequestTimeout = 10 * time.Second
	c.KDFIterations = 250000

	c.VaultDebounce = 2 * time.Second
	c.VaultMinInterval = 3 * time.Second
	c.CardsDebounce = time.Second
	c.CardsMinInterval = 5 * time.Second

	c.TicketTTL = 300 * time.Second
	c.MaxOTPAttempts = 5

	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Policy returns the sync policy configured for kind.
func (c *Config) Policy(kind models.Kind) services.Policy {
	if kind == models.KindCards {
		return services.Policy{Debounce: c.CardsDebounce, MinInterval: c.CardsMinInterval}
	}
	return services.Policy{Debounce: c.VaultDebounce, MinInterval: c.VaultMinInterval}
}

func (c *Config) FlowConfig() services.FlowConfig {
	return services.FlowConfig{
		Iterations:     c.KDFIterations,
		TicketTTL:      c.TicketTTL,
		MaxOTPAttempts: c.MaxOTPAttempts,
	}
}
