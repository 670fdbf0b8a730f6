// Package version reports the build version and checks GitHub for a newer
// release.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Current is the build version, overridden with -ldflags at release time
var Current = "0.1.0"

const (
	// ReleasesURL is the latest-release endpoint for tabkeys
	ReleasesURL  = "https://api.github.com/repos/studiowebux/tabkeys/releases/latest"
	checkTimeout = 5 * time.Second
)

// Release is the part of a GitHub release the checker reads
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Update is the outcome of a check
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Checker queries a releases endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker creates a checker against ReleasesURL
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check compares the latest published release against current
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tabkeys/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Update{}, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return Update{
		Available: latest != "" && Compare(latest, strings.TrimPrefix(current, "v")) > 0,
		Latest:    latest,
		URL:       release.HTMLURL,
	}, nil
}

// Compare orders two dotted versions numerically. Pre-release and build
// suffixes are ignored and missing parts count as zero.
func Compare(a, b string) int {
	pa, pb := parse(a), parse(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		x, y := part(pa, i), part(pb, i)
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return 0
}

func part(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// parse splits "1.2.3-rc1" into [1 2 3]; unparsable parts are skipped
func parse(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	var out []int
	for _, s := range strings.Split(v, ".") {
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
