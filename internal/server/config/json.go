package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vaultify/internal/flagx"
	"github.com/dmitrijs2005/vaultify/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept both "1s"
// strings and integer nanoseconds. Zero values leave the current setting
// alone.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	TicketValidityDuration      timex.Duration `json:"ticket_validity_duration"`
	TicketSweepInterval         timex.Duration `json:"ticket_sweep_interval"`
	DocumentStorage             string         `json:"document_storage"`
	OTPIssuer                   string         `json:"otp_issuer"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays config with the file named by -c/-config, if any.
// Read and decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	flagx.Overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	flagx.Overlay(&config.DatabaseDSN, c.DatabaseDSN)
	flagx.Overlay(&config.SecretKey, c.SecretKey)
	flagx.Overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	flagx.Overlay(&config.TicketValidityDuration, c.TicketValidityDuration.Duration)
	flagx.Overlay(&config.TicketSweepInterval, c.TicketSweepInterval.Duration)
	flagx.Overlay(&config.DocumentStorage, c.DocumentStorage)
	flagx.Overlay(&config.OTPIssuer, c.OTPIssuer)
	flagx.Overlay(&config.S3RootUser, c.S3RootUser)
	flagx.Overlay(&config.S3RootPassword, c.S3RootPassword)
	flagx.Overlay(&config.S3Bucket, c.S3Bucket)
	flagx.Overlay(&config.S3Region, c.S3Region)
	flagx.Overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
