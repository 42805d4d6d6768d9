package detector

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/nao1215/trackerscope/internal/model"
	"github.com/nao1215/trackerscope/internal/trackerdata"
)

// Detector matches page resources against the tracker dataset and
// produces the tracking events the dashboard aggregates.
type Detector struct {
	// dataset resolves resource hosts to owning entities.
	dataset *trackerdata.Dataset

	// allowlist holds registrable tracker domains the user has allowed
	// for this site; matched trackers on the list are loaded, not
	// blocked.
	allowlist map[string]bool

	// protectionsDisabled disables blocking entirely for this site.
	// Trackers are still detected and attributed so the dashboard can
	// show what would have been blocked.
	protectionsDisabled bool

	// logger is used for structured detection logging.
	logger *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithAllowlist sets the per-site user allowlist of tracker domains.
func WithAllowlist(domains []string) DetectorOption {
	return func(d *Detector) {
		for _, domain := range domains {
			d.allowlist[registrableDomain(strings.ToLower(domain))] = true
		}
	}
}

// WithProtectionsDisabled disables blocking for the site while keeping
// detection active.
func WithProtectionsDisabled(disabled bool) DetectorOption {
	return func(d *Detector) {
		d.protectionsDisabled = disabled
	}
}

// WithDetectorLogger sets a custom logger.
func WithDetectorLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector over the given dataset.
func NewDetector(dataset *trackerdata.Dataset, opts ...DetectorOption) *Detector {
	d := &Detector{
		dataset:   dataset,
		allowlist: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Events produces one tracking event per resource. First-party
// resources and third parties with no dataset match yield nil-entity
// events; the dashboard excludes those from the aggregate but the full
// list is kept on the snapshot.
func (d *Detector) Events(pageDomain string, resources []Resource) []model.TrackingEvent {
	pageSite := registrableDomain(strings.ToLower(pageDomain))

	events := make([]model.TrackingEvent, 0, len(resources))
	for _, res := range resources {
		events = append(events, d.eventFor(pageSite, res))
	}
	return events
}

// eventFor classifies a single resource.
func (d *Detector) eventFor(pageSite string, res Resource) model.TrackingEvent {
	host := resourceHost(res.URL)

	if host == "" || registrableDomain(host) == pageSite {
		return model.TrackingEvent{
			URL:    res.URL,
			Reason: model.ReasonFirstParty,
		}
	}

	match := d.dataset.FindEntity(host)
	if match == nil {
		return model.TrackingEvent{
			URL:    res.URL,
			Reason: model.ReasonNoMatch,
		}
	}

	blocked, reason := d.decide(host, match)
	d.logger.Debug("tracker detected",
		"url", res.URL,
		"entity", match.Entity.DisplayName,
		"blocked", blocked,
		"reason", reason,
	)

	return model.TrackingEvent{
		URL:        res.URL,
		Entity:     match.Entity,
		Blocked:    blocked,
		Reason:     reason,
		Categories: match.Categories,
	}
}

// decide applies site policy to a dataset match.
func (d *Detector) decide(host string, match *trackerdata.Match) (bool, string) {
	switch {
	case d.protectionsDisabled:
		return false, model.ReasonProtectionsDisabled
	case d.allowlist[registrableDomain(host)]:
		return false, model.ReasonAllowlisted
	case match.Action == trackerdata.ActionBlock:
		return true, model.ReasonMatchedDataset
	default:
		return false, model.ReasonMatchedDataset
	}
}

// Snapshot assembles the site snapshot for a fetched page and its
// resources: the input the dashboard view model consumes.
func (d *Detector) Snapshot(page *Page, resources []Resource) *model.SiteSnapshot {
	snapshot := model.NewSiteSnapshot(page.URL)
	snapshot.HTTPSUpgraded = page.HTTPSUpgraded
	snapshot.Certificate = page.Certificate
	snapshot.Events = d.Events(snapshot.Domain, resources)

	// The site itself may be operated by a known tracker network.
	if match := d.dataset.FindEntity(snapshot.Domain); match != nil {
		snapshot.Entity = match.Entity
	}
	return snapshot
}

// resourceHost extracts the lowercased host from a resource URL.
func resourceHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// registrableDomain reduces a host to its registrable domain
// (e.g., "a.b.example.co.uk" -> "example.co.uk") so that first-party
// checks and allowlist entries compare sites, not hosts. Falls back to
// the host itself for names the public suffix list cannot split
// (localhost, bare TLDs, IP addresses).
func registrableDomain(host string) string {
	domain, err := publicsuffix.Domain(host)
	if err != nil || domain == "" {
		return host
	}
	return domain
}
