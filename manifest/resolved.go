package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/bitrise-io/go-utils/v2/log"
)

// FileName is the lock file name Swift Package Manager writes next to a
// package or inside an Xcode project/workspace.
const FileName = "Package.resolved"

const kindRemoteSourceControl = "remoteSourceControl"

// Dependency is one pinned package entry extracted from a Package.resolved
// file. Only remote source control pins are represented; local and binary
// pins have no repository to mirror.
type Dependency struct {
	Name          string
	RepositoryURL string
	Revision      string
	// Version is the resolved semantic version, when the pin carries one.
	// Informational only.
	Version string
}

// MalformedManifestError is returned when a Package.resolved file violates
// the structural format: not JSON, missing required fields or wrong value
// types.
type MalformedManifestError struct {
	Reason string
	Err    error
}

func (e *MalformedManifestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed manifest: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed manifest: %s", e.Reason)
}

func (e *MalformedManifestError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError is returned when the manifest declares a format
// version this parser does not understand.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported Package.resolved format version: %d (supported: 1, 2, 3)", e.Version)
}

// Parser decodes the contents of one Package.resolved file into an ordered
// list of dependencies.
type Parser interface {
	Parse(data []byte) ([]Dependency, error)
}

type parser struct {
	logger log.Logger
}

// NewParser ...
func NewParser(logger log.Logger) Parser {
	return parser{logger: logger}
}

// Version 1 (Swift 5.0-5.5):
//
//	{"object": {"pins": [{"package": ..., "repositoryURL": ..., "state": {...}}]}, "version": 1}
//
// Version 2 (Swift 5.6+) flattens the pin list and adds a kind field:
//
//	{"pins": [{"identity": ..., "kind": ..., "location": ..., "state": {...}}], "version": 2}
//
// Version 3 (Swift 5.9+) only adds an originHash next to the pin list, the
// pin schema is unchanged, so it is decoded as version 2.
type resolvedV1 struct {
	Object struct {
		Pins []pinV1 `json:"pins"`
	} `json:"object"`
}

type pinV1 struct {
	Package       string   `json:"package"`
	RepositoryURL string   `json:"repositoryURL"`
	State         pinState `json:"state"`
}

type resolvedV2 struct {
	Pins []pinV2 `json:"pins"`
}

type pinV2 struct {
	Identity string   `json:"identity"`
	Kind     string   `json:"kind"`
	Location string   `json:"location"`
	State    pinState `json:"state"`
}

type pinState struct {
	Branch   string `json:"branch"`
	Revision string `json:"revision"`
	Version  string `json:"version"`
}

func (p parser) Parse(data []byte) ([]Dependency, error) {
	var probe struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &MalformedManifestError{Reason: "not a valid JSON document", Err: err}
	}
	if probe.Version == nil {
		return nil, &MalformedManifestError{Reason: "missing format version field"}
	}

	switch *probe.Version {
	case 1:
		return p.parseV1(data)
	case 2, 3:
		return p.parseV2(data)
	default:
		return nil, &UnsupportedVersionError{Version: *probe.Version}
	}
}

func (p parser) parseV1(data []byte) ([]Dependency, error) {
	var resolved resolvedV1
	if err := json.Unmarshal(data, &resolved); err != nil {
		return nil, &MalformedManifestError{Reason: "invalid version 1 structure", Err: err}
	}

	var deps []Dependency
	for i, pin := range resolved.Object.Pins {
		if pin.RepositoryURL == "" {
			return nil, &MalformedManifestError{Reason: fmt.Sprintf("pin #%d has no repositoryURL", i+1)}
		}
		if pin.State.Revision == "" {
			return nil, &MalformedManifestError{Reason: fmt.Sprintf("pin %s has no pinned revision", pin.RepositoryURL)}
		}

		deps = append(deps, Dependency{
			Name:          pin.Package,
			RepositoryURL: pin.RepositoryURL,
			Revision:      pin.State.Revision,
			Version:       pin.State.Version,
		})
	}

	return deps, nil
}

func (p parser) parseV2(data []byte) ([]Dependency, error) {
	var resolved resolvedV2
	if err := json.Unmarshal(data, &resolved); err != nil {
		return nil, &MalformedManifestError{Reason: "invalid version 2 structure", Err: err}
	}

	var deps []Dependency
	for i, pin := range resolved.Pins {
		if pin.Kind != kindRemoteSourceControl {
			p.logger.Debugf("Skipping pin %s (%s): not remote source control", pin.Identity, pin.Kind)
			continue
		}

		if pin.Location == "" {
			return nil, &MalformedManifestError{Reason: fmt.Sprintf("pin #%d has no location", i+1)}
		}
		if pin.State.Revision == "" {
			return nil, &MalformedManifestError{Reason: fmt.Sprintf("pin %s has no pinned revision", pin.Identity)}
		}

		deps = append(deps, Dependency{
			Name:          pin.Identity,
			RepositoryURL: pin.Location,
			Revision:      pin.State.Revision,
			Version:       pin.State.Version,
		})
	}

	return deps, nil
}
