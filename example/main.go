package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/armmbed/mbedtargets"
)

const mockToken = "example-token"

func main() {
	// start mock database (see mock_server.go)
	go StartMockDatabase(":9999", mockToken)
	time.Sleep(100 * time.Millisecond)

	targets, err := mbedtargets.New(mbedtargets.WithDatabase(
		mbedtargets.WithDatabaseURL("http://localhost:9999/api/v4/targets/all"),
		mbedtargets.WithAuthToken(mockToken),
		mbedtargets.WithTimeout(5*time.Second),
	))
	if err != nil {
		slog.Error("failed to create targets", "error", err)
		os.Exit(1)
	}
	defer func() { _ = targets.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// every pass asks the database again
	fmt.Println("Boards known to the database:")
	for target, err := range targets.All(ctx) {
		if err != nil {
			slog.Error("failed to list targets", "error", err)
			os.Exit(1)
		}
		fmt.Printf("  %-6s %-22s %s\n", target.ProductCode(), target.BoardType(), strings.Join(target.MbedOSSupport(), ", "))
	}
	fmt.Println()

	// look up the board behind a connected device's unique ID
	uniqueID := "0240000032044e4500257009997b00386781000097969900"
	target, err := targets.ByProductCode(ctx, uniqueID[:4])
	if err != nil {
		slog.Error("lookup failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Device %s... is a %s (%s)\n", uniqueID[:8], target.PlatformName(), target.BoardType())

	if _, err := targets.ByBoardType(ctx, "NOT_A_BOARD"); errors.Is(err, mbedtargets.ErrTargetNotFound) {
		fmt.Println("NOT_A_BOARD is not in the database")
	}

	// the same lookups work without network access
	offline, err := mbedtargets.New(mbedtargets.WithOffline())
	if err != nil {
		slog.Error("failed to create offline targets", "error", err)
		os.Exit(1)
	}
	list, err := offline.List(ctx)
	if err != nil {
		slog.Error("failed to list offline targets", "error", err)
		os.Exit(1)
	}
	fmt.Printf("The offline snapshot holds %d boards\n", len(list))
}
