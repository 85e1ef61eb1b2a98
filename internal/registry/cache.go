package registry

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/gzip"

	"github.com/dotcommander/pyright-action/internal/logger"
	"github.com/dotcommander/pyright-action/internal/types"
)

// EntryPoint is the script inside an unpacked release.
const EntryPoint = "package/index.js"

// DefaultCacheDir returns the runner tool cache, or a directory under the
// user cache dir when not running on a runner.
func DefaultCacheDir() string {
	if dir := os.Getenv("RUNNER_TOOL_CACHE"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pyright-action")
	}
	return filepath.Join(os.TempDir(), "pyright-action")
}

func (p *Provider) cacheDir() string {
	if p.CacheDir != "" {
		return p.CacheDir
	}
	return DefaultCacheDir()
}

func (p *Provider) arch() string {
	if p.Arch != "" {
		return p.Arch
	}
	return runtime.GOARCH
}

// Path returns the entry point for info, downloading and unpacking the
// tarball when the release is not cached yet.
func (p *Provider) Path(ctx context.Context, info *PackageInfo) (string, error) {
	log := logger.Or(p.Logger)

	if entry, ok := p.find(info.Version); ok {
		log.Debug("using cached pyright", "version", info.Version, "path", entry)
		return entry, nil
	}

	log.Debug("downloading pyright", "version", info.Version, "tarball", info.Dist.Tarball)

	dir, err := p.download(ctx, info)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(EntryPoint)), nil
}

// find looks for a completed cache entry for version.
func (p *Provider) find(version string) (string, bool) {
	root := p.cacheDir()
	// Only entries with a completion marker count
	marker := filepath.Join(root, ToolName, version, p.arch()+".complete")
	if _, err := os.Stat(marker); err != nil {
		return "", false
	}

	pattern := ToolName + "/" + version + "/" + p.arch() + "/" + EntryPoint
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return filepath.Join(root, filepath.FromSlash(matches[0])), true
}

func (p *Provider) download(ctx context.Context, info *PackageInfo) (string, error) {
	toolDir := filepath.Join(p.cacheDir(), ToolName)
	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return "", fmt.Errorf("error creating cache directory: %w", err)
	}

	body, err := p.Fetch.Open(ctx, info.Dist.Tarball)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.MkdirTemp(toolDir, ".download-")
	if err != nil {
		return "", fmt.Errorf("error creating download directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := extractTarGz(body, tmp); err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrUpstreamFetch, info.Dist.Tarball, err)
	}

	if _, err := os.Stat(filepath.Join(tmp, filepath.FromSlash(EntryPoint))); err != nil {
		return "", fmt.Errorf("%w: %s: archive has no %s", types.ErrUpstreamFetch, info.Dist.Tarball, EntryPoint)
	}

	versionDir := filepath.Join(toolDir, info.Version)
	dest := filepath.Join(versionDir, p.arch())
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return "", fmt.Errorf("error creating cache directory: %w", err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("error clearing stale cache entry: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return "", fmt.Errorf("error moving release into cache: %w", err)
	}
	if err := os.WriteFile(filepath.Join(versionDir, p.arch()+".complete"), nil, 0644); err != nil {
		return "", fmt.Errorf("error marking cache entry complete: %w", err)
	}

	return dest, nil
}

// extractTarGz unpacks a gzipped tarball into dest, rejecting entries that
// would land outside it.
func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("error opening gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading archive: %w", err)
		}

		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		rel, err := filepath.Rel(dest, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()|0600); err != nil {
				return err
			}
		default:
			// npm tarballs only carry files and directories
		}
	}
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the cached versions, oldest first.
func (p *Provider) List() ([]*semver.Version, error) {
	root := p.cacheDir()
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), ToolName+"/*/*.complete")
	if err != nil {
		return nil, fmt.Errorf("error scanning cache: %w", err)
	}

	seen := make(map[string]bool)
	var versions []*semver.Version
	for _, match := range matches {
		parts := strings.Split(match, "/")
		if len(parts) != 3 || seen[parts[1]] {
			continue
		}
		v, err := semver.StrictNewVersion(parts[1])
		if err != nil {
			continue
		}
		seen[parts[1]] = true
		versions = append(versions, v)
	}

	sort.Sort(semver.Collection(versions))
	return versions, nil
}
