package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/livyctl/livyctl/internal/ui"
)

const (
	releasesAPI = "https://api.github.com/repos/livyctl/livyctl/releases/latest"

	// Only check once per day
	cacheDuration = 24 * time.Hour
)

// cacheEntry stores the cached version check result
type cacheEntry struct {
	LatestVersion string    `json:"latestVersion"`
	CheckedAt     time.Time `json:"checkedAt"`
}

type githubRelease struct {
	TagName string `json:"tag_name"` // e.g., "v1.2.0"
}

// Checker looks up the latest release and caches the answer on disk.
type Checker struct {
	URL        string
	CachePath  string
	HTTPClient *http.Client
	Current    string
	now        func() time.Time
}

// NewChecker returns a Checker for the running binary, caching next to the
// user config.
func NewChecker() *Checker {
	cachePath := ""
	if home, err := os.UserHomeDir(); err == nil {
		cachePath = filepath.Join(home, ".config", "livy", "version_cache.json")
	}
	return &Checker{
		URL:        releasesAPI,
		CachePath:  cachePath,
		HTTPClient: &http.Client{Timeout: 3 * time.Second},
		Current:    Version,
		now:        time.Now,
	}
}

// Check returns the latest version and whether it is newer than the running
// one. Lookup failures are swallowed: an update hint never fails a command.
func (c *Checker) Check(ctx context.Context) (string, bool, error) {
	if c.Current == "dev" {
		return "", false, nil
	}

	latest, ok := c.cached()
	if !ok {
		var err error
		latest, err = c.fetch(ctx)
		if err != nil {
			slog.Debug("Version check failed", "error", err)
			return "", false, nil
		}
		c.store(latest)
	}

	return compareVersions(c.Current, latest)
}

func compareVersions(currentVersion, latestVersion string) (string, bool, error) {
	current, err := version.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid current version: %w", err)
	}

	latest, err := version.NewVersion(strings.TrimPrefix(latestVersion, "v"))
	if err != nil {
		return latestVersion, false, fmt.Errorf("invalid latest version: %w", err)
	}

	return latestVersion, latest.GreaterThan(current), nil
}

func (c *Checker) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	// GitHub API requires a User-Agent
	req.Header.Set("User-Agent", "livyctl/"+c.Current)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var release githubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", fmt.Errorf("release has no tag")
	}
	return release.TagName, nil
}

func (c *Checker) cached() (string, bool) {
	if c.CachePath == "" {
		return "", false
	}

	data, err := os.ReadFile(c.CachePath)
	if err != nil {
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.now().Sub(entry.CheckedAt) > cacheDuration {
		return "", false
	}
	return entry.LatestVersion, true
}

func (c *Checker) store(latestVersion string) {
	if c.CachePath == "" {
		return
	}

	data, err := json.Marshal(cacheEntry{LatestVersion: latestVersion, CheckedAt: c.now()})
	if err != nil {
		return
	}

	//nolint:errcheck,gosec // Best effort cache write, error not actionable
	os.MkdirAll(filepath.Dir(c.CachePath), 0o755)
	//nolint:errcheck,gosec // Best effort cache write, error not actionable
	os.WriteFile(c.CachePath, data, 0o644)
}

// PrintUpdateNotification prints an update notice to w when one is available
func PrintUpdateNotification(ctx context.Context, w io.Writer, skipVersionCheck bool) {
	if skipVersionCheck {
		return
	}

	latestVersion, updateAvailable, err := NewChecker().Check(ctx)
	if err != nil || !updateAvailable {
		return
	}

	body := fmt.Sprintf("A new version of livy is available: %s (you have %s)\n"+
		"Download: https://github.com/livyctl/livyctl/releases/latest\n"+
		"To disable these notifications: livy config set root.skip_version_check true",
		latestVersion, Version)
	fmt.Fprint(w, "\n"+ui.RenderPanel("Update available", body, ui.WarningStyle)+"\n")
}
