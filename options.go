package mbedtargets

import (
	"errors"
	"log/slog"
)

// targetsConfig holds mutable state during Targets construction.
type targetsConfig struct {
	logger *slog.Logger

	// newProvider builds the data provider once the logger is known.
	// nil means the online database with default settings.
	newProvider func(logger *slog.Logger) (TargetDataProvider, error)
}

// Option is a function that configures a [Targets] collection during
// construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// The provider options [WithProvider], [WithDatabase], [WithOffline] and
// [WithSnapshotFile] replace one another; the last one given wins.
type Option func(*targetsConfig) error

// WithProvider makes the collection read its records from p.
//
// Example:
//
//	targets, err := mbedtargets.New(mbedtargets.WithProvider(
//	    mbedtargets.ProviderFunc(func(ctx context.Context) ([]mbedtargets.RawRecord, error) {
//	        return records, nil
//	    }),
//	))
//
// Returns an error if p is nil.
func WithProvider(p TargetDataProvider) Option {
	return func(cfg *targetsConfig) error {
		if p == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.newProvider = func(*slog.Logger) (TargetDataProvider, error) {
			return p, nil
		}
		return nil
	}
}

// WithDatabase configures the online database provider used by default.
//
// Example:
//
//	targets, err := mbedtargets.New(mbedtargets.WithDatabase(
//	    mbedtargets.WithAuthToken(token),
//	    mbedtargets.WithTimeout(30 * time.Second),
//	))
//
// The database options are validated by [New].
func WithDatabase(opts ...DatabaseOption) Option {
	return func(cfg *targetsConfig) error {
		cfg.newProvider = func(logger *slog.Logger) (TargetDataProvider, error) {
			// the collection's logger is a default; an explicit WithDatabaseLogger wins
			return OnlineDatabase(append([]DatabaseOption{WithDatabaseLogger(logger)}, opts...)...)
		}
		return nil
	}
}

// WithOffline makes the collection serve the snapshot compiled into the
// library instead of querying the online database. See [OfflineDatabase].
func WithOffline() Option {
	return func(cfg *targetsConfig) error {
		cfg.newProvider = func(*slog.Logger) (TargetDataProvider, error) {
			return OfflineDatabase(), nil
		}
		return nil
	}
}

// WithSnapshotFile makes the collection read a database snapshot from path
// on every pass. See [FileDatabase].
//
// Returns an error if path is empty.
func WithSnapshotFile(path string) Option {
	return func(cfg *targetsConfig) error {
		if path == "" {
			return errors.New("snapshot file path cannot be empty")
		}
		cfg.newProvider = func(*slog.Logger) (TargetDataProvider, error) {
			return FileDatabase(path), nil
		}
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the collection's providers.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *targetsConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
