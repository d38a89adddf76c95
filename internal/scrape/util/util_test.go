package util

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalURL(t *testing.T) {
	got := CanonicalURL("HTTPS://Example.COM/jobs/42?utm_source=x&b=2&a=1#apply")
	assert.Equal(t, "https://example.com/jobs/42?a=1&b=2", got)
}

func TestResolve(t *testing.T) {
	base := "https://acme.example/careers/"
	assert.Equal(t, "https://acme.example/careers/backend-engineer", Resolve(base, "backend-engineer"))
	assert.Equal(t, "https://acme.example/jobs/1", Resolve(base, "/jobs/1"))
	assert.Equal(t, "", Resolve(base, "mailto:hr@acme.example"))
	assert.Equal(t, "", Resolve(base, "#top"))
}

func TestHost(t *testing.T) {
	assert.Equal(t, "acme.nl", Host("https://www.ACME.nl/over-ons"))
	assert.Equal(t, "acme.nl", Host("acme.nl"))
	assert.True(t, HostMatches("boards.greenhouse.io", "greenhouse.io"))
	assert.False(t, HostMatches("notgreenhouse.io", "greenhouse.io"))
}

func TestNormalizeLocationDedupes(t *testing.T) {
	assert.Equal(t, "Amsterdam, Netherlands", NormalizeLocation("Location: Amsterdam,  amsterdam , Netherlands"))
}

func TestFindLocation(t *testing.T) {
	html := `<li><a href="/jobs/1">Engineer</a><span class="location">Utrecht, NL</span></li>
<li id="b"><p>Standplaats: Eindhoven | Fulltime</p></li>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, "Utrecht, NL", FindLocation(doc.Find("li").First()))
	assert.Equal(t, "Eindhoven", FindLocation(doc.Find("#b")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "a b", Truncate("a\nb", 10))
}

func TestHostLimiterNilAndCancelled(t *testing.T) {
	var hl *HostLimiter
	assert.NoError(t, hl.WaitURL(context.Background(), "https://api.lever.co"))

	lim := NewHostLimiter(0.001, 1)
	require.NoError(t, lim.WaitURL(context.Background(), "https://api.lever.co/x"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, lim.WaitURL(ctx, "https://api.lever.co/y"))
}
