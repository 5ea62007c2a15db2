package mbedtargets

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/armmbed/mbedtargets/internal/database"
	"github.com/armmbed/mbedtargets/internal/snapshot"
)

// DefaultDatabaseURL is the Mbed online board database endpoint.
const DefaultDatabaseURL = database.DefaultURL

// EnvAuthToken names the environment variable holding the database API
// token. [OnlineDatabase] reads it when no [WithAuthToken] option is given.
const EnvAuthToken = "MBED_API_AUTH_TOKEN"

const defaultDatabaseTimeout = database.DefaultTimeout

// RawRecord is one unprocessed board entry as supplied by a
// [TargetDataProvider]: a JSON-like mapping of attribute names to strings,
// lists of strings and nested mappings. No key is required.
type RawRecord map[string]any

// TargetDataProvider supplies the current list of raw board records.
//
// TargetData is called once at the start of every iteration pass over a
// [Targets] collection. It returns the full list in a stable order, or an
// error that the collection hands to its caller unchanged. Retries,
// caching and timeouts are the provider's business.
type TargetDataProvider interface {
	TargetData(ctx context.Context) ([]RawRecord, error)
}

// ProviderFunc adapts an ordinary function to [TargetDataProvider].
//
// Example:
//
//	provider := mbedtargets.ProviderFunc(func(ctx context.Context) ([]mbedtargets.RawRecord, error) {
//	    return records, nil
//	})
type ProviderFunc func(ctx context.Context) ([]RawRecord, error)

// TargetData calls f(ctx).
func (f ProviderFunc) TargetData(ctx context.Context) ([]RawRecord, error) {
	return f(ctx)
}

// databaseConfig holds mutable state during online database construction.
type databaseConfig struct {
	url       string
	authToken string
	tokenSet  bool
	headers   map[string]string
	timeout   time.Duration
	logger    *slog.Logger
}

// DatabaseOption configures the provider returned by [OnlineDatabase].
//
// Options return an error if validation fails.
//
// Built-in options: [WithDatabaseURL], [WithAuthToken], [WithTimeout],
// [WithHeaders], [WithDatabaseLogger].
type DatabaseOption func(*databaseConfig) error

// WithDatabaseURL overrides the database endpoint, e.g. to point at a
// mirror or a test server. Defaults to [DefaultDatabaseURL].
//
// Returns an error if the URL cannot be parsed or has no http/https scheme.
func WithDatabaseURL(rawURL string) DatabaseOption {
	return func(cfg *databaseConfig) error {
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return errors.New("invalid database URL: " + err.Error())
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return errors.New("database URL must have an http:// or https:// scheme")
		}
		cfg.url = rawURL
		return nil
	}
}

// WithAuthToken sets the API token sent as "Authorization: Bearer <token>".
//
// Passing an empty token disables the header even when [EnvAuthToken] is
// set in the environment.
func WithAuthToken(token string) DatabaseOption {
	return func(cfg *databaseConfig) error {
		cfg.authToken = token
		cfg.tokenSet = true
		return nil
	}
}

// WithTimeout sets the timeout of a single database request.
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) DatabaseOption {
	return func(cfg *databaseConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHeaders adds custom HTTP headers to every database request.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	provider, err := mbedtargets.OnlineDatabase(
//	    mbedtargets.WithHeaders("User-Agent", "my-tool/1.0"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) DatabaseOption {
	return func(cfg *databaseConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(keyValues)/2)
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithDatabaseLogger sets the logger used for request debug events.
//
// Returns an error if the logger is nil.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(cfg *databaseConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// onlineDatabase is the [TargetDataProvider] backed by the HTTP database.
type onlineDatabase struct {
	client *database.Client
}

// OnlineDatabase returns a [TargetDataProvider] that fetches the full board
// list from the Mbed online database on every call.
//
// Without options it queries [DefaultDatabaseURL] with a 10 second timeout
// and the token found in [EnvAuthToken], if any.
//
// Returns an error if any option is invalid.
func OnlineDatabase(opts ...DatabaseOption) (TargetDataProvider, error) {
	cfg := &databaseConfig{
		url:     DefaultDatabaseURL,
		timeout: defaultDatabaseTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return newOnlineDatabase(cfg), nil
}

func newOnlineDatabase(cfg *databaseConfig) *onlineDatabase {
	token := cfg.authToken
	if !cfg.tokenSet {
		token = os.Getenv(EnvAuthToken)
	}

	return &onlineDatabase{
		client: database.NewClient(database.Config{
			URL:       cfg.url,
			AuthToken: token,
			Headers:   cfg.headers,
			Timeout:   cfg.timeout,
			Logger:    cfg.logger,
		}),
	}
}

// TargetData fetches the records; errors are returned as the client reports them.
func (d *onlineDatabase) TargetData(ctx context.Context) ([]RawRecord, error) {
	records, err := d.client.FetchTargets(ctx)
	if err != nil {
		return nil, err
	}
	return toRawRecords(records), nil
}

// Close releases idle connections.
func (d *onlineDatabase) Close() error {
	d.client.Close()
	return nil
}

// OfflineDatabase returns a [TargetDataProvider] serving the board database
// snapshot compiled into the library. It never touches the network.
func OfflineDatabase() TargetDataProvider {
	return ProviderFunc(func(ctx context.Context) ([]RawRecord, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := snapshot.Embedded()
		if err != nil {
			return nil, err
		}
		return toRawRecords(records), nil
	})
}

// FileDatabase returns a [TargetDataProvider] reading a database snapshot
// from path. The file is re-read on every call and must hold the same
// {"data": [...]} document the online database returns.
func FileDatabase(path string) TargetDataProvider {
	return ProviderFunc(func(ctx context.Context) ([]RawRecord, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := snapshot.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return toRawRecords(records), nil
	})
}

func toRawRecords(records []map[string]any) []RawRecord {
	out := make([]RawRecord, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
