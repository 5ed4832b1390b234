package gitconfig

import (
	"sort"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Rule instructs git to substitute LocalPath whenever RemoteURL is requested.
type Rule struct {
	RemoteURL string
	LocalPath string
}

// Mapper maintains the tool-managed url rewrite rules in the global git
// configuration. A rule is tool-managed when its rewrite target is under the
// mirror root; rules authored by the user are never touched.
type Mapper interface {
	Apply(rules []Rule) error
	Remove(localPath string) error
	ClearAll() error
}

type mapper struct {
	store      Store
	logger     log.Logger
	mirrorRoot string
}

// NewMapper ...
func NewMapper(store Store, logger log.Logger, mirrorRoot string) Mapper {
	return mapper{
		store:      store,
		logger:     logger,
		mirrorRoot: mirrorRoot,
	}
}

// Apply merges rules into the global configuration, keeping at most one
// active rule per remote URL: a tool-managed rule for the same remote but a
// different local path is removed before the new rule is written.
func (m mapper) Apply(rules []Rule) error {
	if len(rules) == 0 {
		return nil
	}

	entries, err := m.store.Entries()
	if err != nil {
		return err
	}

	for _, rule := range rules {
		for _, localPath := range sortedKeys(entries) {
			if entries[localPath] != rule.RemoteURL {
				continue
			}
			if localPath == rule.LocalPath || !m.managed(localPath) {
				continue
			}

			m.logger.Debugf("Replacing stale rewrite rule for %s (%s)", rule.RemoteURL, localPath)
			if err := m.store.Unset(localPath); err != nil {
				return err
			}
			delete(entries, localPath)
		}

		m.logger.Printf("Rewriting %s to %s", rule.RemoteURL, rule.LocalPath)
		if err := m.store.Set(rule.LocalPath, rule.RemoteURL); err != nil {
			return err
		}
		entries[rule.LocalPath] = rule.RemoteURL
	}

	return nil
}

// Remove deletes the rule rewriting to localPath, if one exists.
func (m mapper) Remove(localPath string) error {
	return m.store.Unset(localPath)
}

// ClearAll removes every tool-managed rewrite rule.
func (m mapper) ClearAll() error {
	entries, err := m.store.Entries()
	if err != nil {
		return err
	}

	removed := 0
	for _, localPath := range sortedKeys(entries) {
		if !m.managed(localPath) {
			continue
		}
		if err := m.store.Unset(localPath); err != nil {
			return err
		}
		removed++
	}

	m.logger.Printf("Removed %d rewrite rule(s)", removed)
	return nil
}

func (m mapper) managed(localPath string) bool {
	if m.mirrorRoot == "" {
		return false
	}
	return localPath == m.mirrorRoot || strings.HasPrefix(localPath, m.mirrorRoot+"/")
}

func sortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
