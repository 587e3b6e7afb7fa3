// Package updater checks GitHub releases for newer versions of
// habit-tracker and replaces the running binary in place.
//
// Release archives follow GoReleaser's default naming:
// habit-tracker_<version>_<os>_<arch>.tar.gz (.zip on Windows).
package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	githubRepo = "HendryAvila/habit-tracker"
	releaseURL = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	binaryName = "habit-tracker"

	checkTimeout = 10 * time.Second
	// maxArchiveSize caps how much of a release archive is read into memory.
	maxArchiveSize = 100 << 20
)

// ErrUpToDate is returned by Apply when no newer release exists.
var ErrUpToDate = errors.New("already at latest version")

// ReleaseInfo holds the relevant fields from a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a GitHub release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Result describes the outcome of a version check.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Updater talks to the GitHub Releases API.
type Updater struct {
	endpoint   string
	client     *http.Client
	logger     *zap.Logger
	executable func() (string, error)
}

// Option configures an Updater.
type Option func(*Updater)

// WithEndpoint overrides the latest-release API URL.
func WithEndpoint(url string) Option {
	return func(u *Updater) { u.endpoint = url }
}

// WithHTTPClient sets the client used for API calls and downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Updater) {
		if c != nil {
			u.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(u *Updater) {
		if l != nil {
			u.logger = l
		}
	}
}

// New returns an Updater for the public habit-tracker releases.
func New(opts ...Option) *Updater {
	u := &Updater{
		endpoint:   releaseURL,
		client:     &http.Client{Timeout: checkTimeout},
		logger:     zap.NewNop(),
		executable: os.Executable,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With(zap.String("mod", "updater"))
	return u
}

// Check compares currentVersion with the latest release. It is best
// effort: network or API failures yield a result with UpdateAvailable
// false and are only logged.
func (u *Updater) Check(ctx context.Context, currentVersion string) *Result {
	result := &Result{CurrentVersion: normalizeVersion(currentVersion)}

	release, err := u.latest(ctx, currentVersion)
	if err != nil {
		u.logger.Debug("version check failed", zap.Error(err))
		return result
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// Apply downloads the release archive for this OS/arch and atomically
// replaces the running executable. It returns ErrUpToDate when there is
// nothing newer.
func (u *Updater) Apply(ctx context.Context, currentVersion string) (*Result, error) {
	release, err := u.latest(ctx, currentVersion)
	if err != nil {
		return nil, err
	}

	result := &Result{
		CurrentVersion: normalizeVersion(currentVersion),
		LatestVersion:  normalizeVersion(release.TagName),
		ReleaseURL:     release.HTMLURL,
	}
	if !isNewer(result.CurrentVersion, result.LatestVersion) {
		return result, fmt.Errorf("%w (%s)", ErrUpToDate, currentVersion)
	}
	result.UpdateAvailable = true

	assetName := buildAssetName(result.LatestVersion)
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return result, fmt.Errorf("no release asset found for %s/%s (looking for %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	archive, err := u.download(ctx, downloadURL)
	if err != nil {
		return result, err
	}

	binary, err := extractBinary(archive, assetName)
	if err != nil {
		return result, fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := u.executable()
	if err != nil {
		return result, fmt.Errorf("finding current executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return result, fmt.Errorf("resolving symlinks: %w", err)
	}

	if err := replaceBinary(execPath, binary); err != nil {
		return result, err
	}
	u.logger.Info("binary replaced", zap.String("path", execPath), zap.String("version", result.LatestVersion))
	return result, nil
}

func (u *Updater) latest(ctx context.Context, currentVersion string) (*ReleaseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", binaryName+"/"+currentVersion)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &release, nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if len(data) > maxArchiveSize {
		return nil, fmt.Errorf("release archive exceeds %d bytes", maxArchiveSize)
	}
	return data, nil
}

// replaceBinary writes the new binary next to execPath and renames it
// over the old one. Windows cannot overwrite a running executable, so the
// old one is moved to .old first.
func replaceBinary(execPath string, binary []byte) error {
	tmpPath := execPath + ".new"
	if err := os.WriteFile(tmpPath, binary, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := execPath + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(execPath, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up current binary: %w", err)
		}
	}

	if err := os.Rename(tmpPath, execPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// extractBinary returns the habit-tracker executable from a .tar.gz or
// .zip archive, chosen by the asset name.
func extractBinary(archive []byte, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		return extractFromZip(archive)
	}
	return extractFromTarGz(bytes.NewReader(archive))
}

func isBinary(name string) bool {
	base := filepath.Base(name)
	return base == binaryName || base == binaryName+".exe"
}

func extractFromTarGz(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isBinary(header.Name) {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("reading binary from tar: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s binary not found in archive", binaryName)
}

func extractFromZip(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isBinary(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s in zip: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading binary from zip: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s binary not found in archive", binaryName)
}

// buildAssetName constructs the expected archive filename for the
// current OS and architecture.
func buildAssetName(version string) string {
	ext := "tar.gz"
	if runtime.GOOS == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", binaryName, version, runtime.GOOS, runtime.GOARCH, ext)
}

// normalizeVersion strips one leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher major.minor.patch than
// current. Missing parts count as 0; "dev" builds never update.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	c := versionParts(current)
	l := versionParts(latest)
	for i := range c {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func versionParts(v string) [3]int {
	var out [3]int
	for i, p := range strings.SplitN(v, ".", 3) {
		out[i] = leadingInt(p)
	}
	return out
}

// leadingInt parses the leading digits of s ("3rc1" is 3).
func leadingInt(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
