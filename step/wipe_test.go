package step_test

import (
	"errors"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/require"

	configmocks "github.com/spm-tools/spm-git-swap/gitconfig/mocks"
	mirrormocks "github.com/spm-tools/spm-git-swap/mirror/mocks"
	"github.com/spm-tools/spm-git-swap/step"
)

func Test_GivenMirrors_WhenWipe_ThenMirrorDirectoryIsRemovedAndRulesKept(t *testing.T) {
	// Given
	store := mirrormocks.NewStore(t)
	mapper := configmocks.NewMapper(t)
	runner := step.NewWipeRunner(log.NewLogger(), store, mapper)

	store.On("RemoveAll").Return(nil)

	// When
	err := runner.Run(false)

	// Then
	require.NoError(t, err)
	mapper.AssertNotCalled(t, "ClearAll")
}

func Test_GivenClearRedirects_WhenWipe_ThenManagedRulesAreRemovedToo(t *testing.T) {
	// Given
	store := mirrormocks.NewStore(t)
	mapper := configmocks.NewMapper(t)
	runner := step.NewWipeRunner(log.NewLogger(), store, mapper)

	store.On("RemoveAll").Return(nil)
	mapper.On("ClearAll").Return(nil)

	// When
	err := runner.Run(true)

	// Then
	require.NoError(t, err)
}

func Test_GivenMirrorRemovalFails_WhenWipe_ThenRulesAreNotTouched(t *testing.T) {
	// Given
	store := mirrormocks.NewStore(t)
	mapper := configmocks.NewMapper(t)
	runner := step.NewWipeRunner(log.NewLogger(), store, mapper)

	store.On("RemoveAll").Return(errors.New("permission denied"))

	// When
	err := runner.Run(true)

	// Then
	require.Error(t, err)
	mapper.AssertNotCalled(t, "ClearAll")
}
