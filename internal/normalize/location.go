package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locations splits free-text job locations into city and country for one
// target country.
type Locations struct {
	Country  string
	keywords []string
	cities   map[string]bool
}

var nlCities = []string{
	"amsterdam", "rotterdam", "utrecht", "eindhoven", "den haag", "the hague",
	"groningen", "tilburg", "almere", "breda", "nijmegen", "enschede",
	"haarlem", "arnhem", "delft", "maastricht", "apeldoorn", "leiden",
	"zwolle", "deventer", "helmond", "alkmaar", "zaandam", "amersfoort",
	"hilversum", "dordrecht", "zoetermeer", "leeuwarden", "emmen",
	"venlo", "schiedam", "purmerend", "gouda", "hoofddorp", "amstelveen",
	"'s-hertogenbosch", "den bosch", "schiphol", "diemen", "hengelo", "almelo",
	"heerlen", "sittard", "roermond", "lelystad", "assen", "middelburg",
	"vlissingen", "veenendaal", "zeist", "nieuwegein", "houten", "woerden",
	"rijswijk", "capelle aan den ijssel", "veldhoven", "oss", "roosendaal",
	"wageningen", "ede", "leidschendam", "voorburg", "vlaardingen", "barendrecht",
}

// ede is a real city but also a common substring; only exact city matches use it.
var substringUnsafe = map[string]bool{"ede": true, "oss": true}

type countryKeywords struct {
	name     string
	keywords []string
}

var countryNames = []countryKeywords{
	{"Netherlands", []string{"netherlands", "nederland", " nl", "(nl", "nl)"}},
	{"Belgium", []string{"belgium", "belgië", "belgie", "belgique"}},
	{"Germany", []string{"germany", "deutschland"}},
	{"United Kingdom", []string{"united kingdom", "england", "london", ", uk"}},
	{"France", []string{"france", "paris"}},
	{"Spain", []string{"spain", "españa", "madrid", "barcelona"}},
	{"Ireland", []string{"ireland", "dublin"}},
	{"Poland", []string{"poland", "polska", "warsaw"}},
	{"Portugal", []string{"portugal", "lisbon"}},
	{"United States", []string{"united states", "usa", ", us"}},
}

var junkCities = map[string]bool{
	"hybrid": true, "remote": true, "in-office": true, "all offices": true,
	"n/a": true, "na": true, "distributed": true, "hybrid; in-office": true,
	"distributed; hybrid": true, "united states": true, "us-rem": true,
	"us-remote": true, "netherlands": true, "nederland": true, "multiple locations": true,
}

var cityAliases = map[string]string{
	"den bosch":               "'s-Hertogenbosch",
	"s-hertogenbosch":         "'s-Hertogenbosch",
	"'s-hertogenbosch":        "'s-Hertogenbosch",
	"'s- hertogenbosch":       "'s-Hertogenbosch",
	"’s-hertogenbosch":        "'s-Hertogenbosch",
	"the hague":               "Den Haag",
	"den hague":               "Den Haag",
	"capelle a/d ijssel":      "Capelle aan den IJssel",
	"capelle aan den ijssel":  "Capelle aan den IJssel",
	"rijswijk (zh)":           "Rijswijk",
	"rijswijk (zh.)":          "Rijswijk",
	"'t harde":                "'t Harde",
}

var (
	parenRe     = regexp.MustCompile(`\s*\(.*?\)`)
	qualifierRe = regexp.MustCompile(`(?i)\s+(?:HQ|Office|Campus|Area|Region|Center|Centre)$`)
)

func NewLocations(country string) *Locations {
	l := &Locations{Country: country, cities: map[string]bool{}}
	for _, c := range countryNames {
		if c.name == country {
			l.keywords = c.keywords
		}
	}
	if l.keywords == nil && country != "" {
		l.keywords = []string{strings.ToLower(country)}
	}
	if country == "Netherlands" {
		for _, c := range nlCities {
			l.cities[c] = true
		}
	}
	return l
}

var defaultLocations = NewLocations("Netherlands")

// SplitLocation splits raw against the default target country.
func SplitLocation(raw string) (city, country string) {
	return defaultLocations.Split(raw)
}

// Split returns (city, country). Either may be empty.
func (l *Locations) Split(raw string) (city, country string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	text := strings.ToLower(raw)
	padded := " " + text

	country = l.detectCountry(padded)

	switch {
	case strings.Contains(raw, ","):
		city = strings.TrimSpace(strings.SplitN(raw, ",", 2)[0])
	case strings.Contains(raw, " - "):
		parts := strings.Split(raw, " - ")
		city = strings.TrimSpace(parts[len(parts)-1])
	default:
		city = raw
	}
	if strings.Contains(text, "remote") {
		city = ""
	}
	return l.normalizeCity(city), country
}

func (l *Locations) detectCountry(padded string) string {
	for _, kw := range l.keywords {
		if strings.Contains(padded, kw) {
			return l.Country
		}
	}
	for _, c := range nlCities {
		if !l.cities[c] || substringUnsafe[c] {
			continue
		}
		if strings.Contains(padded, c) {
			return l.Country
		}
	}
	for _, c := range countryNames {
		if c.name == l.Country {
			continue
		}
		for _, kw := range c.keywords {
			if strings.Contains(padded, kw) {
				return c.name
			}
		}
	}
	return ""
}

func (l *Locations) normalizeCity(city string) string {
	city = strings.TrimSpace(city)
	if city == "" || junkCities[strings.ToLower(city)] {
		return ""
	}
	city = strings.TrimSpace(parenRe.ReplaceAllString(city, ""))
	city = strings.TrimSpace(qualifierRe.ReplaceAllString(city, ""))
	if strings.HasPrefix(city, "US >") || strings.HasPrefix(city, "US-") {
		return ""
	}
	if city == "" {
		return ""
	}
	for _, sep := range []string{";", "|", "/"} {
		if !strings.Contains(city, sep) {
			continue
		}
		if sep == "/" && strings.Contains(strings.ToLower(city), " a/d ") {
			continue
		}
		city = strings.TrimSpace(strings.Split(city, sep)[0])
	}
	city = strings.TrimRight(city, ";.,")
	if city == "" {
		return ""
	}
	cl := strings.ToLower(city)
	if a, ok := cityAliases[cl]; ok {
		return a
	}
	if junkCities[cl] {
		return ""
	}
	if l.cities[cl] {
		return cases.Title(language.Dutch).String(cl)
	}
	return city
}
