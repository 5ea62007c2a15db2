// Package mbedtargets looks up information about the development boards
// ("targets") listed in the Mbed online board database.
//
// A [Targets] collection iterates over the boards supplied by a
// [TargetDataProvider]. Each [Target] wraps one raw database record and
// exposes its board type, platform name, product code, supported Mbed OS
// versions and Mbed Enabled badges. Records are read leniently: an absent
// attribute yields an empty string or empty list instead of an error.
//
// # Quick Start
//
// Look up a board by the product code reported by a connected device:
//
//	targets, err := mbedtargets.New()
//	if err != nil {
//	    return err
//	}
//	defer targets.Close()
//
//	target, err := targets.ByProductCode(ctx, "0240")
//	if errors.Is(err, mbedtargets.ErrTargetNotFound) {
//	    // unknown board
//	}
//	fmt.Println(target.BoardType()) // K64F
//
// # Data Sources
//
// By default the collection queries the online database at
// [DefaultDatabaseURL] on every pass. The token in the MBED_API_AUTH_TOKEN
// environment variable is sent when set. Other sources are chosen with
// options:
//
//	targets, err := mbedtargets.New(mbedtargets.WithOffline())              // compiled-in snapshot
//	targets, err := mbedtargets.New(mbedtargets.WithSnapshotFile(path))     // snapshot on disk
//	targets, err := mbedtargets.New(mbedtargets.WithProvider(myProvider))   // anything else
//	targets, err := mbedtargets.New(mbedtargets.WithDatabase(
//	    mbedtargets.WithDatabaseURL("https://mirror.example.com/targets"),
//	    mbedtargets.WithTimeout(30 * time.Second),
//	))
//
// # Architecture
//
// The library consists of several internal packages (under internal/):
//
//   - internal/database: HTTP client for the online board database
//   - internal/snapshot: Embedded and on-disk database snapshots
//   - internal/release: Release automation used by cmd/mbedrelease
//   - internal/server: HTTP lookup API behind "mbedtargets serve"
//   - internal/cli: Logger setup shared by the commands
//
// The config package loads YAML configuration for the mbedtargets command.
// The internal packages are not part of the public API and may change
// without notice.
package mbedtargets
