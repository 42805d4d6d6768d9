package config

// SiteConfig holds site-specific configuration for a single target site.
// This mirrors the per-site controls of the browser dashboard: the
// allowlist and the protections toggle.
type SiteConfig struct {
	// Allowlist lists tracker domains whose requests load unblocked on
	// this site. Entries are registrable domains (e.g., "acme-analytics.net").
	Allowlist []string `yaml:"allowlist,omitempty"`

	// ProtectionsDisabled turns tracker blocking off for this site.
	// Trackers are still detected and reported.
	ProtectionsDisabled bool `yaml:"protectionsDisabled,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .trackerscope configuration file.
type File struct {
	// Sites maps site domains to their site-specific configurations.
	// Keys should be the domain without the protocol (e.g., "news.example").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific site domain.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if len(siteConfig.Allowlist) > 0 {
			result.Allowlist = siteConfig.Allowlist
		}
		if siteConfig.ProtectionsDisabled {
			result.ProtectionsDisabled = true
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
	}

	return result
}
