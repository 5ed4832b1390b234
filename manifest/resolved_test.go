package manifest

import (
	"errors"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const version2Manifest = `{
  "pins" : [
    {
      "identity" : "alamofire",
      "kind" : "remoteSourceControl",
      "location" : "https://github.com/Alamofire/Alamofire.git",
      "state" : {
        "revision" : "f82c23a8a7ef8dc1a49a8bfc6a96883e79121864",
        "version" : "5.6.4"
      }
    },
    {
      "identity" : "swift-log",
      "kind" : "remoteSourceControl",
      "location" : "https://github.com/apple/swift-log.git",
      "state" : {
        "revision" : "32e8d724467f8fe623624570367e3d50c5638e46",
        "version" : "1.5.2"
      }
    }
  ],
  "version" : 2
}`

const version1Manifest = `{
  "object": {
    "pins": [
      {
        "package": "Nimble",
        "repositoryURL": "https://github.com/Quick/Nimble.git",
        "state": {
          "branch": null,
          "revision": "af1730dde4e6a0d207b07a17ac3c92a5e9a4b51f",
          "version": "9.2.1"
        }
      }
    ]
  },
  "version": 1
}`

func Test_GivenVersion2Manifest_WhenParsed_ThenReturnsPinsInDeclarationOrder(t *testing.T) {
	// Given
	parser := NewParser(log.NewLogger())

	// When
	deps, err := parser.Parse([]byte(version2Manifest))

	// Then
	require.NoError(t, err)
	require.Equal(t, []Dependency{
		{
			Name:          "alamofire",
			RepositoryURL: "https://github.com/Alamofire/Alamofire.git",
			Revision:      "f82c23a8a7ef8dc1a49a8bfc6a96883e79121864",
			Version:       "5.6.4",
		},
		{
			Name:          "swift-log",
			RepositoryURL: "https://github.com/apple/swift-log.git",
			Revision:      "32e8d724467f8fe623624570367e3d50c5638e46",
			Version:       "1.5.2",
		},
	}, deps)
}

func Test_GivenVersion1Manifest_WhenParsed_ThenMapsLegacyFields(t *testing.T) {
	// Given
	parser := NewParser(log.NewLogger())

	// When
	deps, err := parser.Parse([]byte(version1Manifest))

	// Then
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "Nimble", deps[0].Name)
	assert.Equal(t, "https://github.com/Quick/Nimble.git", deps[0].RepositoryURL)
	assert.Equal(t, "af1730dde4e6a0d207b07a17ac3c92a5e9a4b51f", deps[0].Revision)
}

func Test_GivenVersion3Manifest_WhenParsed_ThenDecodedWithVersion2Schema(t *testing.T) {
	// Given
	manifest := `{
  "originHash" : "d5f4bbe9e5e56c4318fb31d2b2e06afef3b5da29cd645c60ee8136ed2e212d26",
  "pins" : [
    {
      "identity" : "swift-argument-parser",
      "kind" : "remoteSourceControl",
      "location" : "https://github.com/apple/swift-argument-parser",
      "state" : {
        "revision" : "8f4d2753f0e4778c76d5f05ad16c74f707390531",
        "version" : "1.2.3"
      }
    }
  ],
  "version" : 3
}`
	parser := NewParser(log.NewLogger())

	// When
	deps, err := parser.Parse([]byte(manifest))

	// Then
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "https://github.com/apple/swift-argument-parser", deps[0].RepositoryURL)
}

func Test_GivenNonRemotePins_WhenParsed_ThenSkipsThem(t *testing.T) {
	// Given
	manifest := `{
  "pins" : [
    {
      "identity" : "localkit",
      "kind" : "localSourceControl",
      "location" : "/Users/dev/localkit",
      "state" : { "revision" : "0000000000000000000000000000000000000000" }
    },
    {
      "identity" : "binarylib",
      "kind" : "binaryTarget",
      "location" : "https://example.com/binarylib.zip",
      "state" : { "revision" : "1111111111111111111111111111111111111111" }
    },
    {
      "identity" : "realdep",
      "kind" : "remoteSourceControl",
      "location" : "https://example.com/realdep.git",
      "state" : { "revision" : "2222222222222222222222222222222222222222" }
    }
  ],
  "version" : 2
}`
	parser := NewParser(log.NewLogger())

	// When
	deps, err := parser.Parse([]byte(manifest))

	// Then
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "realdep", deps[0].Name)
}

func Test_GivenUnknownExtraFields_WhenParsed_ThenIgnored(t *testing.T) {
	// Given
	manifest := `{
  "pins" : [
    {
      "identity" : "dep",
      "kind" : "remoteSourceControl",
      "location" : "https://example.com/dep.git",
      "futureField" : {"nested": true},
      "state" : { "revision" : "abc123", "signature" : "unused" }
    }
  ],
  "version" : 2,
  "trailer" : "ignored"
}`
	parser := NewParser(log.NewLogger())

	// When
	deps, err := parser.Parse([]byte(manifest))

	// Then
	require.NoError(t, err)
	require.Len(t, deps, 1)
}

func Test_GivenUnknownFormatVersion_WhenParsed_ThenFailsWithUnsupportedVersionError(t *testing.T) {
	// Given
	parser := NewParser(log.NewLogger())

	// When
	_, err := parser.Parse([]byte(`{"pins": [], "version": 9}`))

	// Then
	var unsupportedErr *UnsupportedVersionError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Equal(t, 9, unsupportedErr.Version)
}

func Test_GivenStructurallyInvalidManifests_WhenParsed_ThenFailWithMalformedManifestError(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name:     "not JSON at all",
			manifest: `pins: []`,
		},
		{
			name:     "missing version field",
			manifest: `{"pins": []}`,
		},
		{
			name:     "wrong pin list type",
			manifest: `{"pins": "none", "version": 2}`,
		},
		{
			name:     "pin without location",
			manifest: `{"pins": [{"identity": "x", "kind": "remoteSourceControl", "state": {"revision": "abc"}}], "version": 2}`,
		},
		{
			name:     "pin without revision",
			manifest: `{"pins": [{"identity": "x", "kind": "remoteSourceControl", "location": "https://example.com/x.git", "state": {}}], "version": 2}`,
		},
		{
			name:     "version 1 pin without repositoryURL",
			manifest: `{"object": {"pins": [{"package": "x", "state": {"revision": "abc"}}]}, "version": 1}`,
		},
	}

	parser := NewParser(log.NewLogger())

	for _, test := range tests {
		t.Log(test.name)

		_, err := parser.Parse([]byte(test.manifest))

		var malformedErr *MalformedManifestError
		require.True(t, errors.As(err, &malformedErr), "expected MalformedManifestError, got: %v", err)
	}
}
