// Package registry looks pyright up in the npm registry and keeps unpacked
// releases in a tool cache.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/dotcommander/pyright-action/internal/logger"
	"github.com/dotcommander/pyright-action/internal/resolve"
	"github.com/dotcommander/pyright-action/internal/schema"
	"github.com/dotcommander/pyright-action/internal/types"
)

// DefaultRegistryURL is the public npm registry.
const DefaultRegistryURL = "https://registry.npmjs.org"

// ToolName is the npm package and tool cache name.
const ToolName = "pyright"

// Fetcher retrieves documents and tarballs.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// PackageInfo is the registry document for one release.
type PackageInfo struct {
	Version string `json:"version"`
	Dist    struct {
		Tarball string `json:"tarball"`
	} `json:"dist"`
}

// Provider resolves a version spec to a runnable entry point.
type Provider struct {
	RegistryURL string
	CacheDir    string
	Arch        string
	Fetch       Fetcher
	Schema      *schema.Validator
	Logger      *slog.Logger
}

// Lookup fetches the registry document for spec ("latest" or a version) and
// returns it with its parsed version.
func (p *Provider) Lookup(ctx context.Context, spec string) (*PackageInfo, *semver.Version, error) {
	base := p.RegistryURL
	if base == "" {
		base = DefaultRegistryURL
	}
	url := strings.TrimSuffix(base, "/") + "/" + ToolName + "/" + spec

	body, err := p.Fetch.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	if p.Schema != nil {
		if err := p.Schema.Validate(schema.Package, url, body); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", types.ErrManifestParse, err)
		}
	}

	var info PackageInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", types.ErrManifestParse, url, err)
	}
	if info.Dist.Tarball == "" {
		return nil, nil, fmt.Errorf("%w: %s: missing dist.tarball", types.ErrManifestParse, url)
	}

	version, err := resolve.Parse(info.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("registry %s: %w", url, err)
	}

	logger.Or(p.Logger).Debug("registry lookup", "spec", spec, "version", version.String(), "tarball", info.Dist.Tarball)

	return &info, version, nil
}
