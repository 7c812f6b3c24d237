package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vaultify/internal/flagx"
	"github.com/dmitrijs2005/vaultify/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Zero values leave the current
// setting alone.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	Transport          string         `json:"transport"`
	HTTPBaseURL        string         `json:"http_base_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	KDFIterations      int            `json:"kdf_iterations"`
	VaultDebounce      timex.Duration `json:"vault_debounce"`
	VaultMinInterval   timex.Duration `json:"vault_min_interval"`
	CardsDebounce      timex.Duration `json:"cards_debounce"`
	CardsMinInterval   timex.Duration `json:"cards_min_interval"`
	TicketTTL          timex.Duration `json:"ticket_ttl"`
	MaxOTPAttempts     int            `json:"max_otp_attempts"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Read
// and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	flagx.Overlay(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	flagx.Overlay(&cfg.Transport, jc.Transport)
	flagx.Overlay(&cfg.HTTPBaseURL, jc.HTTPBaseURL)
	flagx.Overlay(&cfg.RequestTimeout, jc.RequestTimeout.Duration)
	flagx.Overlay(&cfg.KDFIterations, jc.KDFIterations)
	flagx.Overlay(&cfg.VaultDebounce, jc.VaultDebounce.Duration)
	flagx.Overlay(&cfg.VaultMinInterval, jc.VaultMinInterval.Duration)
	flagx.Overlay(&cfg.CardsDebounce, jc.CardsDebounce.Duration)
	flagx.Overlay(&cfg.CardsMinInterval, jc.CardsMinInterval.Duration)
	flagx.Overlay(&cfg.TicketTTL, jc.TicketTTL.Duration)
	flagx.Overlay(&cfg.MaxOTPAttempts, jc.MaxOTPAttempts)
	flagx.Overlay(&cfg.LogLevel, jc.LogLevel)
}
