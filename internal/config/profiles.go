package config

import (
	"fmt"
	"sort"
	"strings"

	"updatescout/internal/domain"
)

// Recognized version identifiers.
const (
	VersionWindows10 = "Windows10"
	VersionWindows8  = "Windows8"
	VersionWindows7  = "Windows7"
)

const (
	defaultSearchURL         = "https://www.catalog.update.microsoft.com/Search.aspx"
	defaultDownloadDialogURL = "https://www.catalog.update.microsoft.com/DownloadDialog.aspx"

	// Support-content assets listing the update history per version family.
	windows10Endpoint = "https://support.microsoft.com/app/content/api/content/asset/en-us/4000816"
	windows8Endpoint  = "https://support.microsoft.com/app/content/api/content/asset/en-us/4010477"
	windows7Endpoint  = "https://support.microsoft.com/app/content/api/content/asset/en-us/4009472"

	defaultWindows10Build = "16299"
)

// windows10Builds enumerates the OS builds the Windows 10 history asset covers.
var windows10Builds = map[string]struct{}{
	"17763": {},
	"17134": {},
	"16299": {},
	"15063": {},
	"14393": {},
	"10586": {},
	"10240": {},
}

func resolveVersion(q QueryConfig) (domain.VersionProfile, error) {
	switch q.Version {
	case VersionWindows10:
		build := q.Build
		if build == "" {
			build = defaultWindows10Build
		}
		if _, ok := windows10Builds[build]; !ok {
			return domain.VersionProfile{}, fmt.Errorf("unknown Windows 10 build %q (expected one of %s)", build, knownBuilds())
		}
		return domain.VersionProfile{
			Version:            VersionWindows10,
			Build:              build,
			StartEndpointURL:   windows10Endpoint,
			ArticleFilterLabel: build,
			SearchPattern:      "Cumulative.*x64",
		}, nil

	case VersionWindows8:
		if q.Build != "" {
			return domain.VersionProfile{}, fmt.Errorf("build selection is only valid for %s", VersionWindows10)
		}
		return domain.VersionProfile{
			Version:            VersionWindows8,
			StartEndpointURL:   windows8Endpoint,
			ArticleFilterLabel: "Monthly Quality Rollup",
			SearchPattern:      "Security Monthly Quality Rollup.*x64",
		}, nil

	case VersionWindows7:
		if q.Build != "" {
			return domain.VersionProfile{}, fmt.Errorf("build selection is only valid for %s", VersionWindows10)
		}
		return domain.VersionProfile{
			Version:            VersionWindows7,
			StartEndpointURL:   windows7Endpoint,
			ArticleFilterLabel: "Monthly Quality Rollup",
			SearchPattern:      "Security Monthly Quality Rollup.*x64",
		}, nil

	default:
		return domain.VersionProfile{}, fmt.Errorf("unknown version %q (expected %s, %s, or %s)",
			q.Version, VersionWindows10, VersionWindows8, VersionWindows7)
	}
}

// Versions lists the recognized version identifiers.
func Versions() []string {
	return []string{VersionWindows10, VersionWindows8, VersionWindows7}
}

func knownBuilds() string {
	builds := make([]string, 0, len(windows10Builds))
	for b := range windows10Builds {
		builds = append(builds, b)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(builds)))
	return strings.Join(builds, ", ")
}
