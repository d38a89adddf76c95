package discover

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var legalSuffixRe = regexp.MustCompile(`(?i)(^|[^\pL\pN])(b\.?v\.?|n\.?v\.?|v\.?o\.?f\.?|holding|group|nederlands?|international|europe|gmbh|ltd\.?|inc\.?|llc|s\.?a\.?|s\.?r\.?l\.?)($|[^\pL\pN])`)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9\s-]`)

// FoldAccents maps "Café Société" to "Cafe Societe".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeName strips legal-form and holding suffixes so "Acme Group B.V."
// and "Acme" compare equal.
func NormalizeName(name string) string {
	out := FoldAccents(name)
	// twice: adjacent suffixes share the separator the regexp consumes
	out = legalSuffixRe.ReplaceAllString(out, "$1$3")
	out = legalSuffixRe.ReplaceAllString(out, "$1$3")
	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, out)
	return strings.Join(strings.Fields(out), " ")
}

// matchForm lowercases and keeps only [a-z0-9 ].
func matchForm(s string) string {
	s = strings.ToLower(FoldAccents(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// socialDomains are never a company's own website.
var socialDomains = []string{
	"facebook.com", "fb.com", "linkedin.com", "twitter.com", "x.com",
	"instagram.com", "youtube.com", "wikipedia.org", "wikidata.org",
	"github.com", "google.com", "indeed.com", "glassdoor.com", "tiktok.com",
}

// WebsiteDomain reduces a website to a bare host, or "" for empty, social
// media and malformed values.
func WebsiteDomain(website string) string {
	raw := strings.ToLower(strings.TrimSpace(website))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	d := strings.TrimPrefix(u.Hostname(), "www.")
	for _, s := range socialDomains {
		if d == s || strings.HasSuffix(d, "."+s) {
			return ""
		}
	}
	if !strings.Contains(d, ".") || len(d) < 4 {
		return ""
	}
	return d
}

// DomainBase is the label left of the public suffix: "careers.acme.co.uk"
// gives "acme".
func DomainBase(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil {
		domain = etld1
	}
	return strings.SplitN(domain, ".", 2)[0]
}

// GenerateTokens guesses board tokens for a company, most specific first.
func GenerateTokens(name, domain string) []string {
	var tokens []string
	seen := map[string]bool{}
	add := func(t string) {
		if len(t) < 2 || seen[t] {
			return
		}
		seen[t] = true
		tokens = append(tokens, t)
	}

	base := DomainBase(domain)
	add(base)
	add(strings.ReplaceAll(base, "-", ""))

	slug := strings.TrimSpace(nonSlugRe.ReplaceAllString(strings.ToLower(NormalizeName(name)), ""))
	slug = strings.Join(strings.Fields(slug), " ")
	add(strings.ReplaceAll(slug, " ", ""))
	add(strings.ReplaceAll(slug, " ", "-"))
	if f := strings.Fields(slug); len(f) > 0 {
		add(f[0])
	}

	// SmartRecruiters identifiers are often the PascalCase first word.
	if f := strings.Fields(FoldAccents(name)); len(f) > 0 && isAlpha(f[0]) {
		add(f[0])
	}

	for _, t := range append([]string(nil), tokens...) {
		if len(t) > 2 {
			add(t + "hq")
			add(t + "-nl")
		}
	}
	return tokens
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
