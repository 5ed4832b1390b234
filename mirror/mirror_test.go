package mirror

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spm-tools/spm-git-swap/gitclient/mocks"
	"github.com/spm-tools/spm-git-swap/manifest"
)

func Test_GivenSameURL_WhenPathForCalledRepeatedly_ThenPathIsStable(t *testing.T) {
	// Given
	first := createStore(t, nil, Opts{})
	second := createStore(t, nil, Opts{})
	second.root = first.root

	// When
	pathA := first.PathFor("https://example.com/alpha.git")
	pathB := second.PathFor("https://example.com/alpha.git")

	// Then
	assert.Equal(t, pathA, pathB)
	assert.True(t, strings.HasPrefix(pathA, first.root))
}

func Test_GivenDistinctURLs_WhenPathFor_ThenPathsNeverCollide(t *testing.T) {
	// Given
	store := createStore(t, nil, Opts{})
	urls := []string{
		"https://example.com/alpha.git",
		"https://example.com/Alpha.git",
		"https://example.com/forks/alpha.git",
		"https://other.example.com/alpha.git",
		"git@github.com:owner/alpha.git",
		"https://example.com/alpha",
	}

	// When
	seen := map[string]string{}
	for _, url := range urls {
		pth := store.PathFor(url)

		// Then
		previous, exists := seen[pth]
		require.False(t, exists, "%s and %s map to the same path %s", previous, url, pth)
		seen[pth] = url
	}
}

func Test_GivenHostileURL_WhenPathFor_ThenDirectoryNameIsFilesystemSafe(t *testing.T) {
	// Given
	store := createStore(t, nil, Opts{})

	// When
	pth := store.PathFor("https://example.com/weird name?/../pkg%20.git")

	// Then
	dir := filepath.Base(pth)
	assert.Regexp(t, `^[A-Za-z0-9._-]+$`, dir)
	assert.Equal(t, store.root, filepath.Dir(pth))
}

func Test_GivenNoMirror_WhenSync_ThenClonesAndChecksOutRevision(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{})

	dep := manifest.Dependency{
		Name:          "Alpha",
		RepositoryURL: "https://example.com/alpha.git",
		Revision:      "abc123",
	}
	pth := store.PathFor(dep.RepositoryURL)

	git.On("Clone", dep.RepositoryURL, pth, []string(nil)).Return(nil)
	git.On("Checkout", pth, "abc123").Return(nil)

	// When
	entry, err := store.Sync(dep)

	// Then
	require.NoError(t, err)
	assert.Equal(t, Entry{
		RepositoryURL: dep.RepositoryURL,
		LocalPath:     pth,
		State:         Cloned,
		Revision:      "abc123",
	}, entry)
}

func Test_GivenExistingMirror_WhenSync_ThenFetchesInsteadOfCloning(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{})

	dep := manifest.Dependency{RepositoryURL: "https://example.com/alpha.git", Revision: "def456"}
	pth := store.PathFor(dep.RepositoryURL)
	require.NoError(t, os.MkdirAll(filepath.Join(pth, ".git"), 0o755))

	git.On("Fetch", pth).Return(nil)
	git.On("Checkout", pth, "def456").Return(nil)

	// When
	entry, err := store.Sync(dep)

	// Then
	require.NoError(t, err)
	assert.Equal(t, Fetched, entry.State)
	git.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything)
}

func Test_GivenCloneFails_WhenSync_ThenPartialDirectoryIsRemoved(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{})

	dep := manifest.Dependency{RepositoryURL: "https://example.com/alpha.git", Revision: "abc123"}
	pth := store.PathFor(dep.RepositoryURL)

	git.On("Clone", dep.RepositoryURL, pth, []string(nil)).
		Run(func(_ mock.Arguments) {
			// Simulate git leaving a half-written clone behind.
			require.NoError(t, os.MkdirAll(pth, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(pth, "partial"), []byte("x"), 0o600))
		}).
		Return(errors.New("remote unreachable"))

	// When
	_, err := store.Sync(dep)

	// Then
	var cloneErr *CloneError
	require.ErrorAs(t, err, &cloneErr)
	assert.Equal(t, dep.RepositoryURL, cloneErr.RepositoryURL)

	_, statErr := os.Stat(pth)
	assert.True(t, os.IsNotExist(statErr), "partial clone directory should have been removed")
}

func Test_GivenFetchKeepsFailing_WhenSync_ThenFailsWithFetchError(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{})

	dep := manifest.Dependency{RepositoryURL: "https://example.com/alpha.git"}
	pth := store.PathFor(dep.RepositoryURL)
	require.NoError(t, os.MkdirAll(filepath.Join(pth, ".git"), 0o755))

	git.On("Fetch", pth).Return(errors.New("remote unreachable"))

	// When
	_, err := store.Sync(dep)

	// Then
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func Test_GivenPinnedRevisionMissing_WhenSync_ThenFailsWithFetchError(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{})

	dep := manifest.Dependency{RepositoryURL: "https://example.com/alpha.git", Revision: "missing"}
	pth := store.PathFor(dep.RepositoryURL)
	require.NoError(t, os.MkdirAll(filepath.Join(pth, ".git"), 0o755))

	git.On("Fetch", pth).Return(nil)
	git.On("Checkout", pth, "missing").Return(errors.New("unknown revision"))

	// When
	_, err := store.Sync(dep)

	// Then
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, fetchErr.Error(), "missing")
}

func Test_GivenGitHubHTTPSURL_WhenSyncWithSSHConversion_ThenClonesOverSSH(t *testing.T) {
	// Given
	git := mocks.NewGit(t)
	store := createStore(t, git, Opts{ConvertGitHubToSSH: true})

	dep := manifest.Dependency{RepositoryURL: "https://github.com/owner/alpha.git", Revision: "abc123"}
	pth := store.PathFor(dep.RepositoryURL)

	git.On("Clone", "git@github.com:owner/alpha.git", pth, []string(nil)).Return(nil)
	git.On("Checkout", pth, "abc123").Return(nil)

	// When
	entry, err := store.Sync(dep)

	// Then
	require.NoError(t, err)
	// The rewrite rule must keep matching the declared URL, not the SSH one.
	assert.Equal(t, "https://github.com/owner/alpha.git", entry.RepositoryURL)
}

func Test_GivenMirrors_WhenRemoveAll_ThenMirrorRootIsGone(t *testing.T) {
	// Given
	store := createStore(t, nil, Opts{})
	pth := store.PathFor("https://example.com/alpha.git")
	require.NoError(t, os.MkdirAll(filepath.Join(pth, ".git"), 0o755))

	// When
	err := store.RemoveAll()

	// Then
	require.NoError(t, err)
	_, statErr := os.Stat(store.root)
	assert.True(t, os.IsNotExist(statErr))
}

func createStore(t *testing.T, git *mocks.Git, opts Opts) store {
	t.Helper()

	return store{
		root:        filepath.Join(t.TempDir(), "checkouts"),
		git:         git,
		logger:      log.NewLogger(),
		pathChecker: pathutil.NewPathChecker(),
		fileManager: fileutil.NewFileManager(),
		opts:        opts,
		fetchWait:   0,
	}
}
