package config

import (
	"sort"

	"github.com/armmbed/mbedtargets"
)

// BuildOptions converts parsed configuration into options for
// [mbedtargets.New].
//
// The offline snapshot and snapshot files take precedence over the online
// database section, which is then ignored.
func BuildOptions(cfg *Config) []mbedtargets.Option {
	switch {
	case cfg.Offline:
		return []mbedtargets.Option{mbedtargets.WithOffline()}
	case cfg.SnapshotFile != "":
		return []mbedtargets.Option{mbedtargets.WithSnapshotFile(cfg.SnapshotFile)}
	}

	var dbOpts []mbedtargets.DatabaseOption

	if cfg.Database.URL != "" {
		dbOpts = append(dbOpts, mbedtargets.WithDatabaseURL(cfg.Database.URL))
	}

	if cfg.Database.AuthToken != nil {
		dbOpts = append(dbOpts, mbedtargets.WithAuthToken(*cfg.Database.AuthToken))
	}

	if cfg.Database.Timeout != 0 {
		dbOpts = append(dbOpts, mbedtargets.WithTimeout(cfg.Database.Timeout.Duration()))
	}

	if len(cfg.Database.Headers) > 0 {
		dbOpts = append(dbOpts, mbedtargets.WithHeaders(mapToKeyValuePairs(cfg.Database.Headers)...))
	}

	return []mbedtargets.Option{mbedtargets.WithDatabase(dbOpts...)}
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
