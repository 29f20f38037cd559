package attribution

import (
	"regexp"
	"strings"
)

// SiteDetector recognizes customers who reached the company through its
// website.
type SiteDetector struct {
	patterns []*regexp.Regexp
	keywords []string
}

// NewSiteDetector creates a detector. A non-empty brand adds brand/site
// correlation phrases and URL fragments, and makes the brand a website tag
// keyword.
func NewSiteDetector(brand string) *SiteDetector {
	d := &SiteDetector{
		patterns: sitePatterns,
		keywords: siteTagKeywords,
	}

	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return d
	}

	b := regexp.QuoteMeta(brand)
	d.patterns = append(compile(
		b+`.*site`,
		`site.*`+b,
		b+`\.com`,
		`www\.`+b,
	), sitePatterns...)
	d.keywords = append([]string{brand}, siteTagKeywords...)
	return d
}

// Detect reports whether the body or any tag marks a site-origin customer.
func (d *SiteDetector) Detect(body string, tags []string) bool {
	if text := strings.ToLower(body); text != "" && matchAny(d.patterns, text) {
		return true
	}
	for _, tag := range tags {
		tag = strings.ToLower(tag)
		for _, kw := range d.keywords {
			if strings.Contains(tag, kw) {
				return true
			}
		}
	}
	return false
}
