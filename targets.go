package mbedtargets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
)

// Targets is a restartable collection of the boards known to a
// [TargetDataProvider].
//
// Targets stores no records. Every iteration pass asks the provider for the
// full current list when the pass begins and yields one [Target] per record
// in provider order. Two passes may therefore see different data if the
// provider's data changes in between; no snapshot is kept.
//
// The typical use is:
//
//	targets, err := mbedtargets.New()
//	if err != nil {
//	    return err
//	}
//
//	for target, err := range targets.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(target.ProductCode(), target.BoardType())
//	}
//
// The zero Targets is ready to use and queries the online database with
// default settings. A nil *Targets is not: its passes yield a single error.
// Targets is safe for concurrent use and must not be copied after first use.
type Targets struct {
	provider TargetDataProvider

	// set on first use of the zero value
	fallbackOnce sync.Once
	fallback     TargetDataProvider
}

// zeroValueDatabaseURL is the endpoint queried by the zero Targets.
var zeroValueDatabaseURL = DefaultDatabaseURL

var errNilTargets = errors.New("mbedtargets: nil *Targets")

// New creates a [Targets] collection with the given options.
//
// Without options the collection queries the Mbed online database at
// [DefaultDatabaseURL], authenticating with [EnvAuthToken] if it is set.
// See [WithProvider], [WithDatabase], [WithOffline] and [WithSnapshotFile]
// for other sources.
//
// New does not contact the provider. Returns an error if any option is invalid.
func New(opts ...Option) (*Targets, error) {
	cfg := &targetsConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	newProvider := cfg.newProvider
	if newProvider == nil {
		newProvider = func(logger *slog.Logger) (TargetDataProvider, error) {
			return OnlineDatabase(WithDatabaseLogger(logger))
		}
	}

	provider, err := newProvider(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure target database: %w", err)
	}

	return &Targets{provider: provider}, nil
}

// All returns an iterator over the current targets.
//
// The provider is called once each time a range loop over the iterator
// begins, never when All itself is called, so a single iterator can be
// ranged over any number of times and each pass sees fresh data.
//
// If the provider fails, the pass yields exactly one pair whose error is
// the provider's error, unchanged, and no targets. Breaking out of the loop
// early is supported.
//
// A record with an attribute of the wrong type is yielded together with an
// error wrapping [ErrMalformedRecord] that names the record's index and the
// offending paths; the pass then continues with the next record. Absent
// attributes are never errors.
func (t *Targets) All(ctx context.Context) iter.Seq2[Target, error] {
	return func(yield func(Target, error) bool) {
		if t == nil {
			yield(Target{}, errNilTargets)
			return
		}

		records, err := t.dataProvider().TargetData(ctx)
		if err != nil {
			yield(Target{}, err)
			return
		}

		for i, record := range records {
			target := NewTarget(record)
			if err := target.Validate(); err != nil {
				err = fmt.Errorf("record %d: %w", i, err)
				if !yield(target, err) {
					return
				}
				continue
			}
			if !yield(target, nil) {
				return
			}
		}
	}
}

// List performs one pass and returns its targets in provider order.
// Provider errors are returned unchanged. A malformed record fails the
// whole list with an error wrapping [ErrMalformedRecord].
func (t *Targets) List(ctx context.Context) ([]Target, error) {
	var targets []Target
	for target, err := range t.All(ctx) {
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// ByProductCode performs one pass and returns the first target whose
// product code equals code.
//
// Returns an error wrapping [ErrTargetNotFound] if no target matches, an
// error wrapping [ErrMalformedRecord] if a record up to and including the
// match is malformed, or the provider's error unchanged.
func (t *Targets) ByProductCode(ctx context.Context, code string) (Target, error) {
	return t.find(ctx, func(target Target) bool {
		return target.ProductCode() == code
	}, fmt.Sprintf("product code %q", code))
}

// ByBoardType performs one pass and returns the first target whose board
// type matches boardType, ignoring case.
//
// Returns an error wrapping [ErrTargetNotFound] if no target matches, an
// error wrapping [ErrMalformedRecord] if a record up to and including the
// match is malformed, or the provider's error unchanged.
func (t *Targets) ByBoardType(ctx context.Context, boardType string) (Target, error) {
	return t.find(ctx, func(target Target) bool {
		return strings.EqualFold(target.BoardType(), boardType)
	}, fmt.Sprintf("board type %q", boardType))
}

func (t *Targets) find(ctx context.Context, match func(Target) bool, what string) (Target, error) {
	for target, err := range t.All(ctx) {
		if err != nil {
			return Target{}, err
		}
		if match(target) {
			return target, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %s", ErrTargetNotFound, what)
}

// Close releases resources held by the provider, such as idle HTTP
// connections, if it has any. The collection remains usable afterwards.
func (t *Targets) Close() error {
	if t == nil {
		return nil
	}
	if closer, ok := t.dataProvider().(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// dataProvider returns the configured provider. The zero value builds the
// default online database on first use and keeps it, so Close can release
// its connections.
func (t *Targets) dataProvider() TargetDataProvider {
	if t.provider != nil {
		return t.provider
	}
	t.fallbackOnce.Do(func() {
		t.fallback = newOnlineDatabase(&databaseConfig{
			url:     zeroValueDatabaseURL,
			timeout: defaultDatabaseTimeout,
		})
	})
	return t.fallback
}
