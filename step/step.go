package step

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/spm-tools/spm-git-swap/gitclient"
)

const (
	// url.<path>.insteadOf predates git 2.0 by years, but version parsing
	// of anything older is not worth supporting.
	minSupportedGitMajorVersion = 2

	defaultRepoDirName = "swifter-package-manager"
	checkoutsDirName   = "checkouts"
)

// Input is the environment-based configuration.
type Input struct {
	RepoDir         string `env:"REPO_DIR"`
	Verbose         bool   `env:"SPM_GIT_SWAP_VERBOSE"`
	UseSSHForGitHub bool   `env:"SPM_GIT_SWAP_SSH_GITHUB"`
	GitCloneOptions string `env:"SPM_GIT_SWAP_CLONE_OPTIONS"`
}

// Overrides are the CLI flag values; a non-zero override wins over the
// corresponding environment input.
type Overrides struct {
	RepoDir         string
	Verbose         bool
	UseSSHForGitHub bool
	GitCloneOptions string
}

// Config ...
type Config struct {
	SearchRoot string
	RepoDir    string
	// MirrorRoot is the checkouts directory under RepoDir, holding one
	// mirror per distinct repository URL.
	MirrorRoot string

	CloneOptions    []string
	UseSSHForGitHub bool
	Verbose         bool
}

// ConfigParser ...
type ConfigParser struct {
	inputParser  stepconf.InputParser
	logger       log.Logger
	pathModifier pathutil.PathModifier
	git          gitclient.Git
}

// NewConfigParser ...
func NewConfigParser(inputParser stepconf.InputParser, logger log.Logger, pathModifier pathutil.PathModifier, git gitclient.Git) ConfigParser {
	return ConfigParser{
		inputParser:  inputParser,
		logger:       logger,
		pathModifier: pathModifier,
		git:          git,
	}
}

// ProcessInstallConfig ...
func (p ConfigParser) ProcessInstallConfig(searchRoot string, overrides Overrides) (Config, error) {
	input, config, err := p.processConfig(overrides)
	if err != nil {
		return Config{}, err
	}

	// The version gate only matters for clone/fetch; wipe skips it.
	if err := p.checkGitVersion(); err != nil {
		return Config{}, err
	}

	cloneOptions, err := shellquote.Split(input.GitCloneOptions)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse clone options (%s): %w", input.GitCloneOptions, err)
	}
	config.CloneOptions = cloneOptions

	absRoot, err := p.pathModifier.AbsPath(searchRoot)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute search path: %w", err)
	}
	config.SearchRoot = absRoot

	return config, nil
}

// ProcessWipeConfig ...
func (p ConfigParser) ProcessWipeConfig(overrides Overrides) (Config, error) {
	_, config, err := p.processConfig(overrides)
	return config, err
}

func (p ConfigParser) checkGitVersion() error {
	gitVersion, err := p.git.Version()
	if err != nil {
		return fmt.Errorf("failed to determine git version: %w", err)
	}
	p.logger.Debugf("- git version: %s", gitVersion)

	if gitVersion.Segments()[0] < minSupportedGitMajorVersion {
		return fmt.Errorf("unsupported git version (%s), at least %d.0 is required", gitVersion, minSupportedGitMajorVersion)
	}
	return nil
}

func (p ConfigParser) processConfig(overrides Overrides) (Input, Config, error) {
	var input Input
	if err := p.inputParser.Parse(&input); err != nil {
		return Input{}, Config{}, fmt.Errorf("failed to parse inputs: %w", err)
	}

	if overrides.RepoDir != "" {
		input.RepoDir = overrides.RepoDir
	}
	if overrides.Verbose {
		input.Verbose = true
	}
	if overrides.UseSSHForGitHub {
		input.UseSSHForGitHub = true
	}
	if overrides.GitCloneOptions != "" {
		input.GitCloneOptions = overrides.GitCloneOptions
	}

	stepconf.Print(input)
	p.logger.Println()
	p.logger.EnableDebugLog(input.Verbose)

	repoDir := input.RepoDir
	if repoDir == "" {
		workingDir, err := os.Getwd()
		if err != nil {
			return Input{}, Config{}, fmt.Errorf("failed to determine working directory: %w", err)
		}
		repoDir = filepath.Join(workingDir, defaultRepoDirName)
		p.logger.Warnf("REPO_DIR not set, storing mirrors under %s", repoDir)
	}

	absRepoDir, err := p.pathModifier.AbsPath(repoDir)
	if err != nil {
		return Input{}, Config{}, fmt.Errorf("failed to get absolute mirror directory path: %w", err)
	}

	return input, Config{
		RepoDir:         absRepoDir,
		MirrorRoot:      filepath.Join(absRepoDir, checkoutsDirName),
		UseSSHForGitHub: input.UseSSHForGitHub,
		Verbose:         input.Verbose,
	}, nil
}
