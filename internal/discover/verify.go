package discover

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Hit is a board that answered for a guessed token.
type Hit struct {
	Source    string
	Token     string
	JobCount  int
	BoardName string // "" when the vendor exposes none
}

// Subject is what a hit is verified against.
type Subject struct {
	Name   string
	Domain string
}

// Verifier decides whether a hit belongs to the subject. Tokens shorter than
// MinTokenLen collide easily across unrelated companies.
type Verifier struct {
	Strict      bool
	MinTokenLen int
}

// commonFirstWords make poor evidence on their own when a token is short.
var commonFirstWords = map[string]bool{
	"the": true, "de": true, "het": true, "van": true, "een": true,
	"bureau": true, "groep": true, "team": true, "smart": true, "data": true,
	"first": true, "best": true, "euro": true, "dutch": true, "holland": true,
	"nord": true, "north": true, "west": true, "east": true, "south": true,
	"zuid": true, "oost": true, "noord": true, "city": true, "home": true,
}

func (v Verifier) Verify(h Hit, s Subject) (bool, string) {
	name := matchForm(s.Name)
	token := matchForm(h.Token)
	base := matchForm(DomainBase(s.Domain))
	slug := strings.ReplaceAll(name, " ", "")
	firstWord := ""
	if f := strings.Fields(name); len(f) > 0 {
		firstWord = f[0]
	}

	if v.Strict && utf8.RuneCountInString(h.Token) < v.MinTokenLen {
		switch {
		case token == base, token == slug:
		case token == firstWord && strongFirstWord(firstWord):
		case token == firstWord && h.BoardName != "":
			// weak first word: the board name check below decides
		default:
			return false, fmt.Sprintf("short_token_%dch", utf8.RuneCountInString(h.Token))
		}
	}

	if h.BoardName != "" {
		board := matchForm(h.BoardName)
		if namesMatch(name, board, base) {
			return true, "board_name_match"
		}
		if v.Strict {
			return false, "board_mismatch:" + truncate(h.BoardName, 40)
		}
	}
	if base != "" && (token == base || strings.HasPrefix(base, token) || strings.HasPrefix(token, base)) {
		return true, "domain_match"
	}
	if slug != "" && (token == slug || strings.HasPrefix(slug, token)) {
		return true, "name_match"
	}
	if !v.Strict {
		return true, "non_strict"
	}
	return false, "no_match"
}

func strongFirstWord(w string) bool {
	return utf8.RuneCountInString(w) >= 4 && !commonFirstWords[w]
}

// namesMatch is a fuzzy same-company check on match-form names.
func namesMatch(name, board, base string) bool {
	if name == "" || board == "" {
		return false
	}
	// slugs such as Lever's "acmerobotics" carry no spaces
	ns, bs := strings.ReplaceAll(name, " ", ""), strings.ReplaceAll(board, " ", "")
	if strings.Contains(bs, ns) || strings.Contains(ns, bs) {
		return true
	}
	if b := strings.ReplaceAll(base, "-", ""); b != "" && strings.Contains(bs, b) {
		return true
	}
	words := map[string]bool{}
	for _, w := range strings.Fields(name) {
		if len(w) >= 4 {
			words[w] = true
		}
	}
	for _, w := range strings.Fields(board) {
		if len(w) >= 4 && words[w] {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
