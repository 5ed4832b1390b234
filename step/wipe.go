package step

import (
	"github.com/bitrise-io/go-utils/v2/log"

	"github.com/spm-tools/spm-git-swap/gitconfig"
	"github.com/spm-tools/spm-git-swap/mirror"
)

// WipeRunner deletes the local mirror tree. The global git rewrite rules are
// left in place unless clearRedirects is set: a later install rewrites them
// anyway, and removing them without a reason would slow the next run down.
type WipeRunner struct {
	logger log.Logger
	store  mirror.Store
	mapper gitconfig.Mapper
}

// NewWipeRunner ...
func NewWipeRunner(logger log.Logger, store mirror.Store, mapper gitconfig.Mapper) WipeRunner {
	return WipeRunner{
		logger: logger,
		store:  store,
		mapper: mapper,
	}
}

// Run ...
func (r WipeRunner) Run(clearRedirects bool) error {
	r.logger.Infof("Wiping mirrors")
	if err := r.store.RemoveAll(); err != nil {
		return err
	}
	r.logger.Donef("Mirror directory removed")

	if clearRedirects {
		r.logger.Infof("Clearing git rewrite rules")
		return r.mapper.ClearAll()
	}

	r.logger.Warnf("Global git rewrite rules were left in place: re-run install to point them at fresh mirrors, or pass --clear-redirects to remove them.")
	return nil
}
