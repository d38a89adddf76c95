package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"

	"hireassist-engine/internal/ai"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/scrape/util"
)

const minAIText = 100

const aiSystemPrompt = "You extract job openings from career page text and answer with JSON only."

const aiPromptTemplate = `Extract ALL job openings from this career page text. For each job, return a JSON object with:
- "title": job title
- "location": location (city, country) or "" if unknown
- "url": full URL to the job posting, or "" if not available

Return ONLY a JSON array. If there are no jobs, return [].
Do NOT include open applications, blog posts, or team pages.

Page URL: %s

Page text:
%s`

var (
	strippedTags = "script, style, nav, header, footer, noscript, svg"
	sanitizer    = bluemonday.UGCPolicy()
	mdConverter  = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	openApplications = toSet("open application", "open sollicitatie")
)

// AIExtractor asks a text-generation model to list the jobs on a page no
// parser understood.
type AIExtractor struct {
	llm      ai.Completer
	maxChars int
}

func NewAIExtractor(llm ai.Completer, maxChars int) *AIExtractor {
	if maxChars <= 0 {
		maxChars = 15000
	}
	return &AIExtractor{llm: llm, maxChars: maxChars}
}

// Extract returns nil without error when no model is configured or the
// page has too little text to be worth a request.
func (x *AIExtractor) Extract(ctx context.Context, html, pageURL string) ([]domain.ScrapedJob, error) {
	if x == nil || x.llm == nil {
		return nil, nil
	}
	text := PageText(html, pageURL, x.maxChars)
	if len([]rune(strings.TrimSpace(text))) < minAIText {
		return nil, nil
	}

	content, err := x.llm.Complete(ctx, aiSystemPrompt, fmt.Sprintf(aiPromptTemplate, pageURL, text))
	if eris.Is(err, ai.ErrNoAPIKey) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ai extract")
	}
	return parseAIJobs(content, pageURL)
}

// PageText reduces a page to the markdown of its body with chrome, scripts
// and markup that carries no listing removed. Links stay absolute.
func PageText(html, pageURL string, maxChars int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(strippedTags).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	inner, err := root.Html()
	if err != nil {
		return ""
	}

	clean := sanitizer.Sanitize(inner)
	text, err := mdConverter.ConvertString(clean, converter.WithDomain(pageURL))
	if err != nil {
		text = root.Text()
	}
	text = strings.TrimSpace(text)

	if r := []rune(text); maxChars > 0 && len(r) > maxChars {
		text = string(r[:maxChars])
	}
	return text
}

type aiJob struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// parseAIJobs reads the JSON array between the first '[' and the last ']'
// of a model reply.
func parseAIJobs(content, pageURL string) ([]domain.ScrapedJob, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, nil
	}

	var raw []aiJob
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "decode ai jobs")
	}

	var out []domain.ScrapedJob
	for _, j := range raw {
		title := util.CleanText(j.Title)
		if title == "" || openApplications[strings.ToLower(title)] {
			continue
		}
		apply := strings.TrimSpace(j.URL)
		if apply != "" && !strings.HasPrefix(apply, "http") {
			apply = util.Resolve(pageURL, apply)
		}
		out = append(out, domain.ScrapedJob{
			Title:       title,
			LocationRaw: util.NormalizeLocation(j.Location),
			ApplyURL:    util.FirstNonEmpty(apply, pageURL),
		})
	}
	return out, nil
}
