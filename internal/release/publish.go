package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/module"
)

// versionInfo is the proxy's answer to a .info request.
type versionInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

// publish asks the module proxy for the new version, which makes the proxy
// fetch the tag from the repository and list the version.
func publish(ctx context.Context, cfg Config) error {
	escapedPath, err := module.EscapePath(cfg.Module)
	if err != nil {
		return fmt.Errorf("invalid module path %q: %w", cfg.Module, err)
	}
	escapedVersion, err := module.EscapeVersion("v" + cfg.Version)
	if err != nil {
		return fmt.Errorf("invalid module version %q: %w", cfg.Version, err)
	}

	endpoint := strings.TrimSuffix(cfg.ProxyURL, "/") + "/" + escapedPath + "/@v/" + escapedVersion + ".info"
	requestID := uuid.NewString()
	cfg.Logger.Info("publishing to module proxy", "url", endpoint, "request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s: %s", ErrPublishFailed, resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	var info versionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrPublishFailed, err)
	}
	if info.Version != "v"+cfg.Version {
		return fmt.Errorf("%w: proxy answered with version %q", ErrPublishFailed, info.Version)
	}

	cfg.Logger.Info("module published", "module", cfg.Module, "version", info.Version, "time", info.Time)
	return nil
}
