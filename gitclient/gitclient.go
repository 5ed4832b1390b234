package gitclient

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/stringutil"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
	version "github.com/hashicorp/go-version"
)

// Git runs the git CLI. Clone, Fetch and Checkout operate on a single
// repository directory; authentication is left entirely to git's own
// credential helpers and SSH agent.
type Git interface {
	Version() (*version.Version, error)
	Clone(repoURL, dir string, options []string) error
	Fetch(dir string) error
	Checkout(dir, revision string) error
}

type client struct {
	logger     log.Logger
	cmdFactory command.Factory
}

// New ...
func New(logger log.Logger, cmdFactory command.Factory) Git {
	return client{
		logger:     logger,
		cmdFactory: cmdFactory,
	}
}

func (c client) Version() (*version.Version, error) {
	cmd := c.cmdFactory.Create("git", []string{"--version"}, nil)

	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to run git --version: %w", err)
	}

	// "git version 2.39.5" or "git version 2.37.1 (Apple Git-137.1)"
	fields := strings.Fields(out)
	if len(fields) < 3 {
		return nil, fmt.Errorf("unexpected git --version output: %s", out)
	}

	ver, err := version.NewVersion(fields[2])
	if err != nil {
		return nil, fmt.Errorf("failed to parse git version (%s): %w", fields[2], err)
	}
	return ver, nil
}

func (c client) Clone(repoURL, dir string, options []string) error {
	args := append([]string{"clone"}, options...)
	args = append(args, repoURL, dir)
	return c.run("", args)
}

// Fetch updates every local branch and tag from origin. Mirrors are kept on
// a detached HEAD, so the forced heads refspec cannot collide with a checked
// out branch.
func (c client) Fetch(dir string) error {
	return c.run(dir, []string{"fetch", "origin", "--tags", "--prune", "+refs/heads/*:refs/heads/*"})
}

func (c client) Checkout(dir, revision string) error {
	return c.run(dir, []string{"checkout", "--detach", revision})
}

func (c client) run(dir string, args []string) error {
	var out bytes.Buffer
	cmd := c.cmdFactory.Create("git", args, &command.Opts{
		Stdout: &out,
		Stderr: &out,
		Dir:    dir,
	})

	c.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	if _, err := cmd.RunAndReturnExitCode(); err != nil {
		tail := stringutil.LastNLines(out.String(), 10)
		if tail != "" {
			return fmt.Errorf("git %s failed: %w\n%s", args[0], err, tail)
		}
		return fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return nil
}
