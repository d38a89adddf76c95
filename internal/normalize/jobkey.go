package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"hireassist-engine/internal/domain"
)

// JobKey returns the stable identity of a job within its source. ATS jobs
// use the provider id; everything else hashes company, title and the URL's
// host and path, so tracking parameters and markup changes do not matter.
func JobKey(source, id, company, title, rawURL string) string {
	if domain.IsATSSource(source) && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}

	company = strings.ToLower(strings.TrimSpace(company))
	title = strings.ToLower(strings.TrimSpace(title))
	composite := company + "|" + title + "|" + urlHostPath(rawURL)

	sum := sha1.Sum([]byte(composite))
	return hex.EncodeToString(sum[:])
}

func urlHostPath(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	return strings.TrimRight(strings.ToLower(u.Host+u.Path), "/")
}
