package release

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands as child processes in Dir, or the working
// directory when Dir is empty. Commands run with the C locale so their
// output does not depend on the user's language.
type ExecRunner struct {
	Dir string
}

// Run executes name with args. On failure the error carries the command's
// stderr, with credentials in URL arguments redacted.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = r.Dir
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Env = append(c.Env, os.Environ()...)
	c.Env = append(c.Env, "LANG=C", "LC_ALL=C")

	if err := c.Run(); err != nil {
		return stdout.String(), fmt.Errorf("%s %s: %w: %s",
			name, strings.Join(redactArgs(args), " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// DryRunner logs commands instead of running them.
type DryRunner struct {
	Logger *slog.Logger
}

// Run logs the command and returns no output.
func (r DryRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("dry run", "command", name, "args", redactArgs(args))
	return "", nil
}

// redactArgs hides URL passwords, such as the token in a remote URL.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = arg
		if u, err := url.Parse(arg); err == nil && u.User != nil {
			out[i] = u.Redacted()
		}
	}
	return out
}

// git issues the git commands of a release.
type git struct {
	runner Runner
}

func (g *git) run(ctx context.Context, args ...string) error {
	_, err := g.runner.Run(ctx, "git", args...)
	return err
}

// configureForGitHub sets the commit identity and, when a repository is
// given, points origin at it with token authentication.
func (g *git) configureForGitHub(ctx context.Context, name, email, repository, token string) error {
	if err := g.run(ctx, "config", "user.name", name); err != nil {
		return err
	}
	if err := g.run(ctx, "config", "user.email", email); err != nil {
		return err
	}
	if repository == "" {
		return nil
	}
	remote := fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", token, repository)
	return g.run(ctx, "remote", "set-url", "origin", remote)
}

func (g *git) add(ctx context.Context, paths ...string) error {
	return g.run(ctx, append([]string{"add", "--"}, paths...)...)
}

func (g *git) commit(ctx context.Context, message string) error {
	return g.run(ctx, "commit", "-m", message)
}

func (g *git) push(ctx context.Context) error {
	return g.run(ctx, "push")
}

func (g *git) pull(ctx context.Context) error {
	return g.run(ctx, "pull")
}

func (g *git) createTag(ctx context.Context, tag, message string) error {
	return g.run(ctx, "tag", "--force", "--annotate", tag, "-m", message)
}

func (g *git) forcePushTag(ctx context.Context, tag string) error {
	return g.run(ctx, "push", "--force", "origin", "refs/tags/"+tag)
}
