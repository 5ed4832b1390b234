package gitconfig

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
)

const (
	keyPrefix = "url."
	keySuffix = ".insteadof"
)

// ConfigWriteError means the global git configuration could not be read or
// written. Fatal for an install run: without the rewrite rules the mirrors
// have no effect.
type ConfigWriteError struct {
	Err error
}

func (e *ConfigWriteError) Error() string {
	return fmt.Sprintf("failed to update global git configuration: %s", e.Err)
}

func (e *ConfigWriteError) Unwrap() error {
	return e.Err
}

// Store is the narrow handle for url.*.insteadOf entries in the global git
// configuration. Keys are the rewrite targets (local mirror paths), values
// the remote URLs being substituted.
type Store interface {
	Entries() (map[string]string, error)
	Set(localPath, remoteURL string) error
	Unset(localPath string) error
}

type globalStore struct {
	logger     log.Logger
	cmdFactory command.Factory
}

// NewGlobalStore returns a Store backed by git config --global.
func NewGlobalStore(logger log.Logger, cmdFactory command.Factory) Store {
	return globalStore{
		logger:     logger,
		cmdFactory: cmdFactory,
	}
}

func (s globalStore) Entries() (map[string]string, error) {
	var out bytes.Buffer
	cmd := s.cmdFactory.Create("git", []string{"config", "--global", "--null", "--get-regexp", `^url\..*\.insteadof$`}, &command.Opts{
		Stdout: &out,
		Stderr: &out,
	})

	s.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	exitCode, err := cmd.RunAndReturnExitCode()
	if err != nil {
		// git config --get-regexp exits with 1 when nothing matches.
		if exitCode == 1 && strings.TrimSpace(out.String()) == "" {
			return map[string]string{}, nil
		}
		return nil, &ConfigWriteError{Err: fmt.Errorf("failed to read url rewrite entries: %w", err)}
	}

	return parseEntries(out.String()), nil
}

func (s globalStore) Set(localPath, remoteURL string) error {
	key := keyPrefix + localPath + keySuffix
	if err := s.run("config", "--global", "--replace-all", key, remoteURL); err != nil {
		return &ConfigWriteError{Err: err}
	}
	return nil
}

func (s globalStore) Unset(localPath string) error {
	key := keyPrefix + localPath + keySuffix
	var out bytes.Buffer
	cmd := s.cmdFactory.Create("git", []string{"config", "--global", "--unset-all", key}, &command.Opts{
		Stdout: &out,
		Stderr: &out,
	})

	s.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	exitCode, err := cmd.RunAndReturnExitCode()
	if err != nil {
		// Exit code 5 means the key did not exist, which is the desired
		// end state.
		if exitCode == 5 {
			return nil
		}
		return &ConfigWriteError{Err: fmt.Errorf("failed to unset %s: %w", key, err)}
	}
	return nil
}

func (s globalStore) run(args ...string) error {
	var out bytes.Buffer
	cmd := s.cmdFactory.Create("git", args, &command.Opts{
		Stdout: &out,
		Stderr: &out,
	})

	s.logger.Debugf("$ %s", cmd.PrintableCommandArgs())

	if _, err := cmd.RunAndReturnExitCode(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// parseEntries decodes git config --null --get-regexp output: NUL-terminated
// "url.<localPath>.insteadof\n<remoteURL>" records. The key is separated from
// the value by a newline instead of a space, so the local path may contain
// spaces. Git lowercases the section and variable name but preserves the
// subsection (the path), which may itself contain dots.
func parseEntries(out string) map[string]string {
	entries := map[string]string{}
	for _, record := range strings.Split(out, "\x00") {
		if record == "" {
			continue
		}

		key, value, found := strings.Cut(record, "\n")
		if !found {
			continue
		}
		if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(strings.ToLower(key), keySuffix) {
			continue
		}

		localPath := key[len(keyPrefix) : len(key)-len(keySuffix)]
		if localPath == "" {
			continue
		}
		entries[localPath] = value
	}
	return entries
}
