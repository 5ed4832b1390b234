package main

import (
	"os"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/spf13/cobra"

	"github.com/spm-tools/spm-git-swap/gitclient"
	"github.com/spm-tools/spm-git-swap/gitconfig"
	"github.com/spm-tools/spm-git-swap/manifest"
	"github.com/spm-tools/spm-git-swap/mirror"
	"github.com/spm-tools/spm-git-swap/step"
)

func main() {
	logger := log.NewLogger()
	if err := newRootCommand(logger).Execute(); err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}
}

func newRootCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spm-git-swap",
		Short:         "Mirror Swift package dependencies locally and point git at the mirrors",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newInstallCommand(logger), newWipeCommand(logger))
	return cmd
}

func newInstallCommand(logger log.Logger) *cobra.Command {
	var overrides step.Overrides

	cmd := &cobra.Command{
		Use:   "install <path>",
		Short: "Mirror every dependency pinned by Package.resolved files under <path> and redirect git fetches to the mirrors",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInstall(logger, args[0], overrides)
		},
	}

	cmd.Flags().StringVar(&overrides.RepoDir, "repo-dir", "", "mirror storage directory (defaults to $REPO_DIR)")
	cmd.Flags().BoolVar(&overrides.Verbose, "verbose", false, "enable debug logging")
	cmd.Flags().BoolVar(&overrides.UseSSHForGitHub, "ssh-github", false, "clone https://github.com/... URLs over SSH")
	cmd.Flags().StringVar(&overrides.GitCloneOptions, "clone-options", "", "extra options passed to git clone")

	return cmd
}

func newWipeCommand(logger log.Logger) *cobra.Command {
	var (
		overrides      step.Overrides
		clearRedirects bool
	)

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every local mirror",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWipe(logger, overrides, clearRedirects)
		},
	}

	cmd.Flags().StringVar(&overrides.RepoDir, "repo-dir", "", "mirror storage directory (defaults to $REPO_DIR)")
	cmd.Flags().BoolVar(&overrides.Verbose, "verbose", false, "enable debug logging")
	cmd.Flags().BoolVar(&clearRedirects, "clear-redirects", false, "also remove the tool-managed url rewrite rules from the global git configuration")

	return cmd
}

func runInstall(logger log.Logger, searchRoot string, overrides step.Overrides) error {
	envRepository := env.NewRepository()
	cmdFactory := command.NewFactory(envRepository)
	git := gitclient.New(logger, cmdFactory)

	configParser := step.NewConfigParser(stepconf.NewInputParser(envRepository), logger, pathutil.NewPathModifier(), git)
	config, err := configParser.ProcessInstallConfig(searchRoot, overrides)
	if err != nil {
		return err
	}

	store := mirror.NewStore(config.MirrorRoot, git, logger, mirror.Opts{
		ConvertGitHubToSSH: config.UseSSHForGitHub,
		CloneOptions:       config.CloneOptions,
	})
	mapper := gitconfig.NewMapper(gitconfig.NewGlobalStore(logger, cmdFactory), logger, config.MirrorRoot)
	runner := step.NewInstallRunner(logger, manifest.NewLocator(logger), manifest.NewParser(logger), fileutil.NewFileManager(), store, mapper)

	result, runErr := runner.Run(config)
	exportErr := runner.Export(result)
	if runErr != nil {
		return runErr
	}
	return exportErr
}

func runWipe(logger log.Logger, overrides step.Overrides, clearRedirects bool) error {
	envRepository := env.NewRepository()
	cmdFactory := command.NewFactory(envRepository)
	git := gitclient.New(logger, cmdFactory)

	configParser := step.NewConfigParser(stepconf.NewInputParser(envRepository), logger, pathutil.NewPathModifier(), git)
	config, err := configParser.ProcessWipeConfig(overrides)
	if err != nil {
		return err
	}

	store := mirror.NewStore(config.MirrorRoot, git, logger, mirror.Opts{})
	mapper := gitconfig.NewMapper(gitconfig.NewGlobalStore(logger, cmdFactory), logger, config.MirrorRoot)

	return step.NewWipeRunner(logger, store, mapper).Run(clearRedirects)
}
