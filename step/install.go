package step

import (
	"fmt"
	"io"

	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/spm-tools/spm-git-swap/gitconfig"
	"github.com/spm-tools/spm-git-swap/manifest"
	"github.com/spm-tools/spm-git-swap/mirror"
)

// Failure is one manifest or repository the run could not process.
type Failure struct {
	Subject string
	Err     error
}

// Result ...
type Result struct {
	Manifests []string
	Mirrored  []mirror.Entry
	Failures  []Failure
}

// InstallRunner drives one install run: locate manifests, parse them, sync
// every mirror, then apply the rewrite rules in one step at the end.
type InstallRunner struct {
	logger      log.Logger
	locator     manifest.Locator
	parser      manifest.Parser
	fileManager fileutil.FileManager
	store       mirror.Store
	mapper      gitconfig.Mapper
}

// NewInstallRunner ...
func NewInstallRunner(logger log.Logger, locator manifest.Locator, parser manifest.Parser, fileManager fileutil.FileManager, store mirror.Store, mapper gitconfig.Mapper) InstallRunner {
	return InstallRunner{
		logger:      logger,
		locator:     locator,
		parser:      parser,
		fileManager: fileManager,
		store:       store,
		mapper:      mapper,
	}
}

// Run returns a non-nil error only for fatal conditions: an unusable search
// root or a global git config failure. Unreadable manifests and failing
// mirrors are collected into the result and processing continues with the
// remaining items.
func (r InstallRunner) Run(config Config) (Result, error) {
	var result Result

	r.logger.Infof("Locating %s files under %s", manifest.FileName, config.SearchRoot)
	manifests, err := r.locator.Locate(config.SearchRoot)
	if err != nil {
		return result, err
	}
	result.Manifests = manifests

	if len(manifests) == 0 {
		r.logger.Warnf("No %s found under %s, nothing to mirror", manifest.FileName, config.SearchRoot)
		return result, nil
	}
	r.logger.Printf("Found %d manifest(s)", len(manifests))
	r.logger.Println()

	r.logger.Infof("Parsing manifests")
	dependencies := r.collectDependencies(manifests, &result)
	r.logger.Printf("%d distinct repositories to mirror", len(dependencies))
	r.logger.Println()

	r.logger.Infof("Syncing mirrors")
	var rules []gitconfig.Rule
	for _, dependency := range dependencies {
		// Drop any rule still pointing at this mirror before touching it,
		// so no fetch is redirected to a mirror mid-rebuild.
		if err := r.mapper.Remove(r.store.PathFor(dependency.RepositoryURL)); err != nil {
			return result, err
		}

		entry, err := r.store.Sync(dependency)
		if err != nil {
			r.logger.Errorf("%s", err)
			result.Failures = append(result.Failures, Failure{Subject: dependency.RepositoryURL, Err: err})
			continue
		}

		r.logger.Donef("%s %s at revision %s", entry.State, entry.RepositoryURL, entry.Revision)
		result.Mirrored = append(result.Mirrored, entry)
		rules = append(rules, gitconfig.Rule{RemoteURL: entry.RepositoryURL, LocalPath: entry.LocalPath})
	}
	r.logger.Println()

	// Rules are applied as the final step, once all syncs have settled and
	// only for repositories that were actually mirrored.
	r.logger.Infof("Applying git rewrite rules")
	if err := r.mapper.Apply(rules); err != nil {
		return result, err
	}

	return result, nil
}

// Export prints the run summary and returns a non-nil error when any
// per-item failure occurred, so callers can map it to the exit code.
func (r InstallRunner) Export(result Result) error {
	r.logger.Println()
	r.logger.Infof("Run summary")
	r.logger.Printf("Manifests processed: %d", len(result.Manifests))
	r.logger.Donef("Mirrored and redirected: %d repositories", len(result.Mirrored))
	for _, entry := range result.Mirrored {
		r.logger.Printf("- %s => %s", entry.RepositoryURL, entry.LocalPath)
	}

	if len(result.Failures) == 0 {
		return nil
	}

	r.logger.Errorf("Failed: %d item(s)", len(result.Failures))
	for _, failure := range result.Failures {
		r.logger.Errorf("- %s: %s", failure.Subject, failure.Err)
	}
	r.logger.Printf(colorstring.Magenta(`Fix the failures above and re-run install: repositories already mirrored
are only fetched again. A broken mirror tree can be reset with wipe.`))

	return fmt.Errorf("failed to mirror %d item(s)", len(result.Failures))
}

// collectDependencies flattens all manifests into dependencies with distinct
// repository URLs, in first-seen order. When the same repository is pinned
// by multiple manifests, the revision parsed last wins.
func (r InstallRunner) collectDependencies(manifests []string, result *Result) []manifest.Dependency {
	index := map[string]int{}
	var dependencies []manifest.Dependency

	for _, pth := range manifests {
		data, err := r.readFile(pth)
		if err != nil {
			r.logger.Errorf("Failed to read %s: %s", pth, err)
			result.Failures = append(result.Failures, Failure{Subject: pth, Err: err})
			continue
		}

		parsed, err := r.parser.Parse(data)
		if err != nil {
			r.logger.Errorf("Failed to parse %s: %s", pth, err)
			result.Failures = append(result.Failures, Failure{Subject: pth, Err: err})
			continue
		}

		r.logger.Printf("%s: %d pinned dependencies", pth, len(parsed))
		for _, dependency := range parsed {
			if i, ok := index[dependency.RepositoryURL]; ok {
				dependencies[i] = dependency
				continue
			}
			index[dependency.RepositoryURL] = len(dependencies)
			dependencies = append(dependencies, dependency)
		}
	}

	return dependencies
}

func (r InstallRunner) readFile(pth string) ([]byte, error) {
	file, err := r.fileManager.Open(pth)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			r.logger.Warnf("Failed to close %s: %s", pth, err)
		}
	}()

	return io.ReadAll(file)
}
