package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ubuntu/decorate"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// EnvGitToken names the environment variable holding the GitHub token used
// to push release commits and tags.
const EnvGitToken = "GIT_TOKEN"

// DefaultProxyURL is the Go module proxy asked to publish new versions.
const DefaultProxyURL = "https://proxy.golang.org"

const (
	defaultGitUserName  = "mbedtargets release bot"
	defaultGitUserEmail = "mbedtargets-release@users.noreply.github.com"
)

var (
	// ErrUnknownMode is returned for release modes other than development,
	// beta and release.
	ErrUnknownMode = errors.New("unknown release mode")

	// ErrMissingCredentials is returned when GIT_TOKEN is not set.
	ErrMissingCredentials = errors.New("missing release credentials")

	// ErrInvalidVersion is returned for versions that are not canonical
	// semantic versions without a leading "v".
	ErrInvalidVersion = errors.New("invalid release version")

	// ErrPublishFailed is returned when the module proxy does not serve the
	// new version.
	ErrPublishFailed = errors.New("module proxy did not publish version")
)

// Mode is the kind of release to perform.
type Mode int

const (
	// Development only reports the version. Nothing is tagged or published.
	Development Mode = iota
	// Beta tags the current commit and publishes it.
	Beta
	// Release commits the changelog, then tags and publishes.
	Release
)

var modeNames = []string{"development", "beta", "release"}

// Modes returns the accepted release mode names, in [Mode] order.
func Modes() []string {
	return append([]string(nil), modeNames...)
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name, ignoring case, into a [Mode].
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return Development, fmt.Errorf("%w %q (expected one of %s)", ErrUnknownMode, s, strings.Join(modeNames, ", "))
}

// ValidateVersion checks that v is a canonical semantic version without the
// leading "v", such as "1.2.0" or "1.3.0-beta.1".
func ValidateVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: version is empty", ErrInvalidVersion)
	}
	if strings.HasPrefix(v, "v") {
		return fmt.Errorf("%w: %q must not start with \"v\"", ErrInvalidVersion, v)
	}
	if semver.Canonical("v"+v) != "v"+v {
		return fmt.Errorf("%w: %q is not a semantic version like 1.2.3", ErrInvalidVersion, v)
	}
	return nil
}

// ModulePath returns the module path declared by the go.mod file in dir.
func ModulePath(dir string) (string, error) {
	path := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	module := modfile.ModulePath(data)
	if module == "" {
		return "", fmt.Errorf("no module directive in %s", path)
	}
	return module, nil
}

// Config describes one release.
type Config struct {
	// Mode selects the release steps.
	Mode Mode

	// Version is the version being released, without the leading "v".
	Version string

	// Module is the Go module path published to the proxy.
	Module string

	// Repository is the GitHub repository as "owner/name". When set, the
	// origin remote is rewritten to authenticate with the token.
	Repository string

	// ChangelogPaths are staged for the release commit.
	// Defaults to CHANGELOG.md and the news directory.
	ChangelogPaths []string

	// GitUserName and GitUserEmail identify the release commit author.
	GitUserName  string
	GitUserEmail string

	// ProxyURL is the module proxy base URL. Defaults to [DefaultProxyURL].
	ProxyURL string

	// DryRun logs every git command instead of running it and skips the
	// proxy request.
	DryRun bool

	// Runner executes git. Defaults to an [ExecRunner] in the working directory.
	Runner Runner

	// HTTPClient talks to the module proxy. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if len(c.ChangelogPaths) == 0 {
		c.ChangelogPaths = []string{"CHANGELOG.md", "news"}
	}
	if c.GitUserName == "" {
		c.GitUserName = defaultGitUserName
	}
	if c.GitUserEmail == "" {
		c.GitUserEmail = defaultGitUserEmail
	}
	if c.ProxyURL == "" {
		c.ProxyURL = DefaultProxyURL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DryRun {
		c.Runner = DryRunner{Logger: c.Logger}
	}
	if c.Runner == nil {
		c.Runner = ExecRunner{}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Run performs the release described by cfg.
//
// Development releases only log the version. Beta and release modes need
// GIT_TOKEN; they configure git for GitHub, tag the current commit as
// v<version>, force-push the tag and ask the module proxy to fetch it.
// Release mode first commits the changelog paths, pushes and pulls.
func Run(ctx context.Context, cfg Config) (err error) {
	defer decorate.OnError(&err, "release %s failed", cfg.Version)

	if cfg.Mode < Development || cfg.Mode > Release {
		return fmt.Errorf("%w %s", ErrUnknownMode, cfg.Mode)
	}
	if err := ValidateVersion(cfg.Version); err != nil {
		return err
	}

	cfg = cfg.withDefaults()
	log := cfg.Logger

	log.Info("current version", "version", cfg.Version, "mode", cfg.Mode.String())
	if cfg.Mode == Development {
		return nil
	}

	token, err := checkCredentials()
	if err != nil {
		return err
	}
	if cfg.Module == "" {
		return errors.New("module path is required to publish")
	}

	g := &git{runner: cfg.Runner}
	if err := updateRepository(ctx, cfg, g, token); err != nil {
		return err
	}

	if cfg.DryRun {
		log.Info("dry run: skipping module proxy", "module", cfg.Module, "version", cfg.Version)
		return nil
	}
	return publish(ctx, cfg)
}

func checkCredentials() (string, error) {
	token := os.Getenv(EnvGitToken)
	if token == "" {
		return "", fmt.Errorf("%w: environment variable %s (GitHub token) is not set", ErrMissingCredentials, EnvGitToken)
	}
	return token, nil
}

// updateRepository commits (release mode only) and tags the release.
func updateRepository(ctx context.Context, cfg Config, g *git, token string) error {
	log := cfg.Logger

	if err := g.configureForGitHub(ctx, cfg.GitUserName, cfg.GitUserEmail, cfg.Repository, token); err != nil {
		return err
	}

	if cfg.Mode == Release {
		log.Info("committing release", "version", cfg.Version)
		if err := g.add(ctx, cfg.ChangelogPaths...); err != nil {
			return err
		}
		timestamp := cfg.Now().UTC().Format("2006-01-02 15:04")
		msg := fmt.Sprintf(":checkered_flag: :newspaper: releasing version %s @ %s\n[skip ci]", cfg.Version, timestamp)
		if err := g.commit(ctx, msg); err != nil {
			return err
		}
		if err := g.push(ctx); err != nil {
			return err
		}
		if err := g.pull(ctx); err != nil {
			return err
		}
	}

	tag := "v" + cfg.Version
	log.Info("tagging commit", "tag", tag)
	if err := g.createTag(ctx, tag, "release "+cfg.Version); err != nil {
		return err
	}
	return g.forcePushTag(ctx, tag)
}
