package config

import (
	"encoding/json"
	"os"

	"github.com/betterimg/betterimg/internal/flagx"
	"github.com/betterimg/betterimg/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	StoreMode            string         `json:"store_mode"`
	DatabaseDSN          string         `json:"database_dsn"`
	RemoteEndpointAddr   string         `json:"remote_endpoint_addr"`
	SecretKey            string         `json:"secret_key"`
	SessionTokenValidity timex.Duration `json:"session_token_validity"`
	ImageGenEndpointAddr string         `json:"image_gen_endpoint_addr"`
	ImageGenAPIKey       string         `json:"image_gen_api_key"`
	AvatarTimeout        timex.Duration `json:"avatar_timeout"`
	PaymentEndpointAddr  string         `json:"payment_endpoint_addr"`
	PaymentClientID      string         `json:"payment_client_id"`
	PaymentSecret        string         `json:"payment_secret"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors. Intended usage is:
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones; absent JSON keys keep their zero value and therefore fall back to
// whatever was set before only for the string fields the caller left empty.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.StoreMode != "" {
		cfg.StoreMode = jc.StoreMode
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RemoteEndpointAddr != "" {
		cfg.RemoteEndpointAddr = jc.RemoteEndpointAddr
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.SessionTokenValidity.Duration != 0 {
		cfg.SessionTokenValidity = jc.SessionTokenValidity.Duration
	}
	if jc.ImageGenEndpointAddr != "" {
		cfg.ImageGenEndpointAddr = jc.ImageGenEndpointAddr
	}
	if jc.ImageGenAPIKey != "" {
		cfg.ImageGenAPIKey = jc.ImageGenAPIKey
	}
	if jc.AvatarTimeout.Duration != 0 {
		cfg.AvatarTimeout = jc.AvatarTimeout.Duration
	}
	if jc.PaymentEndpointAddr != "" {
		cfg.PaymentEndpointAddr = jc.PaymentEndpointAddr
	}
	if jc.PaymentClientID != "" {
		cfg.PaymentClientID = jc.PaymentClientID
	}
	if jc.PaymentSecret != "" {
		cfg.PaymentSecret = jc.PaymentSecret
	}
}
