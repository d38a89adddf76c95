package discover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/normalize"
)

type fakeVendor struct {
	source string
	boards map[string][]string // token -> job locations
	names  map[string]string
	calls  int
}

func (f *fakeVendor) Source() string { return f.source }

func (f *fakeVendor) ListJobs(_ context.Context, token string) ([]ingest.Payload, error) {
	f.calls++
	locs, ok := f.boards[token]
	if !ok {
		return nil, ats.ErrNotFound
	}
	out := make([]ingest.Payload, 0, len(locs))
	for _, l := range locs {
		p := ingest.LeverPosting{Text: "Job"}
		p.Categories.Location = l
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeVendor) BoardName(_ context.Context, token string) (string, error) {
	return f.names[token], nil
}

func newTestProber(vendors ...ats.Vendor) *Prober {
	return NewProber(ats.NewRegistry(vendors...), Verifier{Strict: true, MinTokenLen: 5}, 0, normalize.NewLocations("Netherlands"))
}

func TestProbePicksLargestVerifiedHit(t *testing.T) {
	gh := &fakeVendor{
		source: "greenhouse",
		boards: map[string][]string{"acme": {"Austin", "Austin", "Boston", "Denver", "Miami", "Reno", "Tulsa", "Omaha", "Provo", "Boise"}},
		names:  map[string]string{"acme": "Zenith Holdings"},
	}
	lv := &fakeVendor{
		source: "lever",
		boards: map[string][]string{"acmerobotics": {"Amsterdam", "Delft", "Berlin, Germany"}},
		names:  map[string]string{"acmerobotics": "acmerobotics"},
	}

	out, err := newTestProber(gh, lv).Probe(context.Background(), Subject{Name: "Acme Robotics", Domain: "acme-robotics.nl"})
	require.NoError(t, err)
	assert.True(t, out.Found())
	assert.True(t, out.Verified)
	assert.Equal(t, "lever", out.Source)
	assert.Equal(t, "acmerobotics", out.Token)
	assert.Equal(t, 3, out.JobCount)
	assert.Equal(t, "board_name_match", out.Reason)
	assert.Equal(t, ConfidenceHigh, out.Confidence)

	tokens := GenerateTokens("Acme Robotics", "acme-robotics.nl")
	assert.Equal(t, len(tokens), gh.calls)
}

func TestProbeReturnsLargestRejectedHit(t *testing.T) {
	gh := &fakeVendor{
		source: "greenhouse",
		boards: map[string][]string{"globex": {"Paris"}},
		names:  map[string]string{"globex": "Globex Paris SAS"},
	}
	out, err := newTestProber(gh).Probe(context.Background(), Subject{Name: "Globe Experts", Domain: "globe-experts.nl"})
	require.NoError(t, err)
	assert.False(t, out.Found())

	gh.boards["globe-experts"] = []string{"Lyon", "Nice"}
	gh.names["globe-experts"] = "Globex Paris SAS"
	out, err = newTestProber(gh).Probe(context.Background(), Subject{Name: "Globe Experts", Domain: "globe-experts.nl"})
	require.NoError(t, err)
	assert.True(t, out.Found())
	assert.False(t, out.Verified)
	assert.Equal(t, "board_mismatch:Globex Paris SAS", out.Reason)
	assert.Empty(t, out.Confidence)
}

func TestProbeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewProber(ats.NewRegistry(&fakeVendor{source: "lever"}), Verifier{}, 10, normalize.NewLocations("Netherlands"))
	_, err := p.Probe(ctx, Subject{Name: "Acme", Domain: "acme.nl"})
	assert.ErrorIs(t, err, context.Canceled)
}
