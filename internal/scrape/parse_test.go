package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const careersURL = "https://acme.example/careers"

func TestParseHTMLPrefersJSONLD(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[
  {"@type":"Organization","name":"Acme"},
  {"@type":["JobPosting","Thing"],"title":"Site Reliability Engineer","url":"https://acme.example/jobs/sre",
   "jobLocation":[{"@type":"Place","address":{"addressLocality":"Amsterdam","addressCountry":{"name":"Netherlands"}}},{"address":"Remote"}]}
]}</script>
<script type="application/ld+json">[{"@type":"JobPosting","name":"Office Manager"}]</script>
<script type="application/ld+json">{not json</script>
</head><body>
<a href="/careers/jobs/backend-engineer-42">Backend Engineer</a>
</body></html>`

	jobs := ParseHTML(page, careersURL)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Site Reliability Engineer", jobs[0].Title)
	assert.Equal(t, "Amsterdam, Netherlands | Remote", jobs[0].LocationRaw)
	assert.Equal(t, "https://acme.example/jobs/sre", jobs[0].ApplyURL)
	assert.Equal(t, "Office Manager", jobs[1].Title)
	assert.Equal(t, careersURL, jobs[1].ApplyURL)
}

func TestParseAnchors(t *testing.T) {
	page := `<html><body>
<nav><a href="/careers/jobs/navigation-engineer-1">Navigation Engineer</a></nav>
<ul>
  <li><a href="/careers/jobs/backend-engineer-42"><h3>Backend Engineer</h3><span>Amsterdam</span></a></li>
  <li><a href="/careers/jobs/data-analyst-7">Data Analyst Apply now</a></li>
  <li><a href="/careers/jobs/blog-post">Read the latest from our team</a></li>
  <li><a href="/jobs/5-min-read-our-culture-1">Our culture 5 min read</a></li>
  <li><a href="https://other.example/jobs/external-role-99">External Engineer</a></li>
  <li><a href="/careers/blog/jobs/some-post-1">Something about hiring</a></li>
  <li><a href="/careers/jobs/backend-engineer-43">Backend Engineer</a></li>
</ul>
<div class="card"><h4>Product Designer</h4><p>Rotterdam</p><a href="/careers/jobs/product-designer-9"><i class="icon"></i></a></div>
</body></html>`

	jobs := ParseHTML(page, careersURL)
	require.Len(t, jobs, 3)

	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Equal(t, "https://acme.example/careers/jobs/backend-engineer-42", jobs[0].ApplyURL)
	assert.Equal(t, "Data Analyst", jobs[1].Title)
	assert.Equal(t, "Product Designer", jobs[2].Title)
	assert.Equal(t, "Rotterdam", jobs[2].LocationRaw)
}

func TestParseAnchorsCardLocation(t *testing.T) {
	page := `<html><body><ul>
  <li class="opening"><a href="/careers/jobs/site-reliability-engineer-3">Site Reliability Engineer</a><span class="location">Utrecht, NL</span></li>
  <li><a href="/careers/jobs/support-engineer-4">Support Engineer</a><p>Standplaats: Eindhoven</p></li>
</ul></body></html>`

	jobs := ParseHTML(page, careersURL)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Utrecht, NL", jobs[0].LocationRaw)
	assert.Equal(t, "Eindhoven", jobs[1].LocationRaw)
}

func TestLooksLikeJobPath(t *testing.T) {
	cases := map[string]bool{
		"/careers":                                 false,
		"/jobs/4242":                               true,
		"/en/jobs/engineer":                        false,
		"/jobs/senior-backend-engineer-amsterdam":  true,
		"/careers/jobs/backend-engineer":           true,
		"/jobs/team/123":                           false,
		"/careers/life-at-acme/jobs-and-stories-2": false,
		"/careers/jobs/view-all-jobs-here-x":       true,
		"/jobs/see-all-jobs":                       false,
	}
	for path, want := range cases {
		assert.Equal(t, want, looksLikeJobPath(path), path)
	}
}

func TestJoinedTextSkipsScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="x">One<script>var a=1</script><span>Two</span></div>`))
	require.NoError(t, err)
	assert.Equal(t, "One | Two", joinedText(doc.Find("#x"), " | "))
}
