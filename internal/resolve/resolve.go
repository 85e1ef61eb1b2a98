// Package resolve decides which pyright release a run uses.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dotcommander/pyright-action/internal/schema"
	"github.com/dotcommander/pyright-action/internal/types"
)

// Version spec sentinels.
const (
	Latest           = "latest"
	LatestRelease    = "latest-release"
	LatestPrerelease = "latest-prerelease"
)

// DefaultPylanceURL is where Pylance publishes one manifest per release.
const DefaultPylanceURL = "https://raw.githubusercontent.com/microsoft/pylance-release/main/releases"

// Getter fetches a document body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Resolver turns the version inputs into a version spec for the registry lookup.
type Resolver struct {
	Fetch      Getter
	Schema     *schema.Validator
	PylanceURL string
	// Info receives the informational line emitted for a Pylance lookup.
	Info func(msg string)
}

// pylanceRelease is the part of the Pylance manifest we consume.
type pylanceRelease struct {
	PyrightVersion string `json:"pyrightVersion"`
}

// Parse validates raw as a semantic version. Surrounding whitespace and a
// leading "=" or "v" are accepted.
func Parse(raw string) (*semver.Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "=")
	s = strings.TrimPrefix(s, "v")
	v, err := semver.StrictNewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidVersion, raw)
	}
	return v, nil
}

// Normalize returns the canonical form of a semantic version string.
func Normalize(raw string) (string, error) {
	v, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Resolve returns the version spec to look up: the normalized versionSpec if
// given, else the pyright version pinned by the Pylance release, else "latest".
func (r *Resolver) Resolve(ctx context.Context, versionSpec, pylanceVersion string) (string, error) {
	versionSpec = strings.TrimSpace(versionSpec)
	if versionSpec != "" {
		return Normalize(versionSpec)
	}

	pylanceVersion = strings.TrimSpace(pylanceVersion)
	if pylanceVersion != "" {
		if pylanceVersion != LatestRelease && pylanceVersion != LatestPrerelease {
			if _, err := Parse(pylanceVersion); err != nil {
				return "", fmt.Errorf("pylance-version: %w", err)
			}
		}
		return r.fromPylance(ctx, pylanceVersion)
	}

	return Latest, nil
}

func (r *Resolver) fromPylance(ctx context.Context, pylanceVersion string) (string, error) {
	base := r.PylanceURL
	if base == "" {
		base = DefaultPylanceURL
	}
	url := strings.TrimSuffix(base, "/") + "/" + pylanceVersion + ".json"

	body, err := r.Fetch.Get(ctx, url)
	if err != nil {
		return "", err
	}

	if r.Schema != nil {
		if err := r.Schema.Validate(schema.PylanceRelease, url, body); err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrManifestParse, err)
		}
	}

	var release pylanceRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrManifestParse, url, err)
	}
	if release.PyrightVersion == "" {
		return "", fmt.Errorf("%w: %s: missing pyrightVersion", types.ErrManifestParse, url)
	}

	if r.Info != nil {
		r.Info(fmt.Sprintf("Pylance %s uses pyright %s", pylanceVersion, release.PyrightVersion))
	}

	return release.PyrightVersion, nil
}
