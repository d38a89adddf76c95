package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Acme", NormalizeName("Acme Group B.V."))
	assert.Equal(t, "Philips", NormalizeName("Philips Nederland N.V."))
	assert.Equal(t, "Muller-Bau", NormalizeName("Müller-Bau GmbH"))
	assert.Equal(t, "Cafe Noir", NormalizeName("Café Noir Ltd."))
}

func TestGenerateTokens(t *testing.T) {
	got := GenerateTokens("Acme Software B.V.", "acme-software.nl")
	assert.Equal(t, []string{
		"acme-software", "acmesoftware", "acme", "Acme",
		"acme-softwarehq", "acme-software-nl",
		"acmesoftwarehq", "acmesoftware-nl",
		"acmehq", "acme-nl",
		"Acmehq", "Acme-nl",
	}, got)
}

func TestGenerateTokensFoldsAccents(t *testing.T) {
	got := GenerateTokens("Café Noir Studio", "cafenoir.nl")
	assert.Contains(t, got, "cafenoirstudio")
	assert.Contains(t, got, "cafe-noir-studio")
	assert.Contains(t, got, "Cafe")
	for _, tok := range got {
		assert.GreaterOrEqual(t, len(tok), 2)
	}
}

func TestWebsiteDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.Acme.nl/about": "acme.nl",
		"acme.nl":                   "acme.nl",
		"http://shop.acme.nl:8080":  "shop.acme.nl",
		"facebook.com/acme":         "",
		"https://m.facebook.com/x":  "",
		"localhost":                 "",
		"":                          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, WebsiteDomain(in), in)
	}
}

func TestDomainBase(t *testing.T) {
	assert.Equal(t, "acme", DomainBase("careers.acme.co.uk"))
	assert.Equal(t, "acme", DomainBase("acme.nl"))
	assert.Equal(t, "acme-robotics", DomainBase("acme-robotics.nl"))
	assert.Equal(t, "", DomainBase(""))
}
