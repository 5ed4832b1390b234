package mirror

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"

	"github.com/spm-tools/spm-git-swap/gitclient"
	"github.com/spm-tools/spm-git-swap/manifest"
)

const (
	fetchRetries   = 2
	fetchRetryWait = 3 * time.Second

	githubHTTPSPrefix = "https://github.com/"
	githubSSHPrefix   = "git@github.com:"
)

// State describes what Sync did to a mirror.
type State int

const (
	// Absent means no mirror exists for the URL.
	Absent State = iota
	// Cloned means the mirror was created by this sync.
	Cloned
	// Fetched means an existing mirror was updated.
	Fetched
)

func (s State) String() string {
	switch s {
	case Cloned:
		return "cloned"
	case Fetched:
		return "fetched"
	default:
		return "absent"
	}
}

// Entry is one synced local mirror.
type Entry struct {
	RepositoryURL string
	LocalPath     string
	State         State
	Revision      string
}

// CloneError means the initial clone of one repository failed. Non-fatal for
// the run: other mirrors are still synced.
type CloneError struct {
	RepositoryURL string
	Err           error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("failed to clone %s: %s", e.RepositoryURL, e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// FetchError means updating an existing mirror, or checking out the pinned
// revision, failed. Non-fatal for the run.
type FetchError struct {
	RepositoryURL string
	Err           error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to update mirror of %s: %s", e.RepositoryURL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Store owns the local mirror directory tree: one subdirectory per distinct
// repository URL.
type Store interface {
	// PathFor is a pure function of the repository URL: the same URL maps
	// to the same path across runs and processes, and distinct URLs never
	// collide.
	PathFor(repoURL string) string
	Sync(dep manifest.Dependency) (Entry, error)
	RemoveAll() error
	Root() string
}

// Opts ...
type Opts struct {
	// ConvertGitHubToSSH rewrites https://github.com/... clone URLs to the
	// git@github.com:... form, for hosts where only SSH is authenticated.
	ConvertGitHubToSSH bool
	// CloneOptions are extra arguments passed to git clone.
	CloneOptions []string
}

type store struct {
	root        string
	git         gitclient.Git
	logger      log.Logger
	pathChecker pathutil.PathChecker
	fileManager fileutil.FileManager
	opts        Opts
	fetchWait   time.Duration
}

// NewStore ...
func NewStore(root string, git gitclient.Git, logger log.Logger, opts Opts) Store {
	return store{
		root:        root,
		git:         git,
		logger:      logger,
		pathChecker: pathutil.NewPathChecker(),
		fileManager: fileutil.NewFileManager(),
		opts:        opts,
		fetchWait:   fetchRetryWait,
	}
}

func (s store) Root() string {
	return s.root
}

func (s store) PathFor(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	digest := hex.EncodeToString(sum[:])[:12]

	base := strings.TrimSuffix(path.Base(strings.TrimSuffix(repoURL, "/")), ".git")
	base = sanitizeDirName(base)

	return filepath.Join(s.root, base+"-"+digest)
}

// Sync converges the local mirror of dep to the remote's latest state and
// the pinned revision, regardless of prior state: clone when the mirror is
// absent, fetch when it already exists. Safe to invoke repeatedly.
func (s store) Sync(dep manifest.Dependency) (Entry, error) {
	pth := s.PathFor(dep.RepositoryURL)

	exists, err := s.pathChecker.IsPathExists(filepath.Join(pth, ".git"))
	if err != nil {
		return Entry{}, &FetchError{RepositoryURL: dep.RepositoryURL, Err: err}
	}

	state := Cloned
	if exists {
		state = Fetched
		s.logger.Printf("%s already mirrored at %s, fetching", dep.Name, pth)

		if err := s.fetchWithRetry(pth); err != nil {
			return Entry{}, &FetchError{RepositoryURL: dep.RepositoryURL, Err: err}
		}
	} else {
		if err := s.clone(dep, pth); err != nil {
			return Entry{}, &CloneError{RepositoryURL: dep.RepositoryURL, Err: err}
		}
	}

	if dep.Revision != "" {
		if err := s.git.Checkout(pth, dep.Revision); err != nil {
			return Entry{}, &FetchError{
				RepositoryURL: dep.RepositoryURL,
				Err:           fmt.Errorf("pinned revision %s is not available: %w", dep.Revision, err),
			}
		}
	}

	return Entry{
		RepositoryURL: dep.RepositoryURL,
		LocalPath:     pth,
		State:         state,
		Revision:      dep.Revision,
	}, nil
}

func (s store) RemoveAll() error {
	s.logger.Printf("Removing mirror directory: %s", s.root)
	return s.fileManager.RemoveAll(s.root)
}

func (s store) clone(dep manifest.Dependency, pth string) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}

	cloneURL := dep.RepositoryURL
	if s.opts.ConvertGitHubToSSH && strings.HasPrefix(cloneURL, githubHTTPSPrefix) {
		cloneURL = githubSSHPrefix + strings.TrimPrefix(cloneURL, githubHTTPSPrefix)
		s.logger.Printf("Cloning %s over SSH: %s", dep.RepositoryURL, cloneURL)
	}

	s.logger.Printf("Cloning %s into %s", cloneURL, pth)

	if err := s.git.Clone(cloneURL, pth, s.opts.CloneOptions); err != nil {
		// A failed clone can leave a partially populated directory behind,
		// which the next run would mistake for an existing mirror.
		if exists, checkErr := s.pathChecker.IsPathExists(pth); checkErr == nil && exists {
			if removeErr := s.fileManager.RemoveAll(pth); removeErr != nil {
				s.logger.Errorf("Failed to remove %s after the failed clone: %s. Remove it manually or run wipe.", pth, removeErr)
			}
		}
		return err
	}
	return nil
}

func (s store) fetchWithRetry(pth string) error {
	return retry.Times(fetchRetries).Wait(s.fetchWait).Try(func(attempt uint) error {
		if attempt > 0 {
			s.logger.Warnf("Retrying fetch in %s (attempt %d)", pth, attempt+1)
		}
		return s.git.Fetch(pth)
	})
}

func sanitizeDirName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, name)

	mapped = strings.Trim(mapped, "-.")
	if mapped == "" {
		return "repo"
	}
	return mapped
}
