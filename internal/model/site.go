package model

import (
	"crypto/x509"
	"net/url"
	"strings"
	"time"
)

// SiteSnapshot is the page being summarized. A snapshot arrives whenever
// the user navigates; the dashboard recomputes its view from scratch on
// every new snapshot and discards the previous result.
//
// Design decision: the snapshot is treated as immutable after
// construction. The dashboard never writes to it, which is what makes
// the single-threaded recompute model safe without locking.
type SiteSnapshot struct {
	// URL is the full page URL as loaded.
	URL string `json:"url"`

	// Domain is the host portion of URL, used as the first-party domain.
	Domain string `json:"domain"`

	// HTTPSUpgraded is true if the page was requested over HTTP and
	// upgraded to HTTPS before loading.
	HTTPSUpgraded bool `json:"https_upgraded"`

	// Certificate holds display information for the site's TLS
	// certificate. Nil when the page was served over plain HTTP.
	Certificate *CertInfo `json:"certificate,omitempty"`

	// Entity is the organization that owns the site itself, when the
	// site belongs to a known tracker network (e.g., visiting
	// google.com). Nil for sites with no known parent entity.
	Entity *Entity `json:"entity,omitempty"`

	// Events is the full list of resource-load attempts observed while
	// the page loaded.
	Events []TrackingEvent `json:"events,omitempty"`
}

// NewSiteSnapshot creates a snapshot for the given page URL.
// The first-party domain is derived from the URL host; an unparseable
// URL degrades to an empty domain rather than failing, matching the
// dashboard's absence-is-not-an-error policy.
func NewSiteSnapshot(pageURL string) *SiteSnapshot {
	s := &SiteSnapshot{URL: pageURL}
	if u, err := url.Parse(pageURL); err == nil {
		s.Domain = strings.ToLower(u.Hostname())
	}
	return s
}

// CertInfo contains serializable TLS certificate information for display.
// We extract this from x509.Certificate because that type doesn't
// serialize well.
type CertInfo struct {
	// Subject is the certificate subject.
	Subject string `json:"subject"`

	// Issuer is the certificate issuer.
	Issuer string `json:"issuer"`

	// CommonName is the certificate's common name.
	CommonName string `json:"common_name,omitempty"`

	// NotBefore is when the certificate becomes valid.
	NotBefore time.Time `json:"not_before"`

	// NotAfter is when the certificate expires.
	NotAfter time.Time `json:"not_after"`

	// SANs contains Subject Alternative Names.
	SANs []string `json:"sans,omitempty"` //nolint:tagliatelle // SANs is standard acronym
}

// NewCertInfo extracts display information from an x509 certificate.
// Returns nil for a nil certificate.
func NewCertInfo(cert *x509.Certificate) *CertInfo {
	if cert == nil {
		return nil
	}
	return &CertInfo{
		Subject:    cert.Subject.String(),
		Issuer:     cert.Issuer.String(),
		CommonName: cert.Subject.CommonName,
		NotBefore:  cert.NotBefore,
		NotAfter:   cert.NotAfter,
		SANs:       cert.DNSNames,
	}
}
