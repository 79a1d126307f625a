package config

import (
	"encoding/json"
	"os"
	"time"

	"tracklite/internal/flagx"
	"tracklite/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations can
// be given as strings like "60s" or as integer nanoseconds; values are then
// copied into the runtime Config.
type JsonConfig struct {
	DatabasePath     string         `json:"database_path"`
	RemoteDSN        string         `json:"remote_dsn"`
	SyncInterval     timex.Duration `json:"sync_interval"`
	RetentionWindow  timex.Duration `json:"retention_window"`
	PageSize         int            `json:"page_size"`
	SessionTokenPath string         `json:"session_token_path"`
	SessionSecret    string         `json:"session_secret"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent file path means no overlay. Read or unmarshal errors
// panic; the entry point recovers and reports them.
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

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RemoteDSN != "" {
		cfg.RemoteDSN = jc.RemoteDSN
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.RetentionWindow.Duration != 0 {
		cfg.RetentionWindow = time.Duration(jc.RetentionWindow.Duration)
	}
	if jc.PageSize != 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.SessionTokenPath != "" {
		cfg.SessionTokenPath = jc.SessionTokenPath
	}
	if jc.SessionSecret != "" {
		cfg.SessionSecret = jc.SessionSecret
	}
}
