package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
categories:
  - name: Music
    subcategories:
      - name: Spotify
        plans:
          - name: Spotify Family
            price: 750
          - name: Spotify Duo
            price: 450
  - name: Video
    subcategories:
      - name: Netflix
        plans:
          - name: Netflix Premium
            price: 1200
`

func TestParseAndLookup(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"Music", "Video"}, c.CategoryNames())

	subs, ok := c.SubcategoryNames("Music")
	require.True(t, ok)
	assert.Equal(t, []string{"Spotify"}, subs)

	plan, ok := c.FindPlan("Music", "Spotify", "Spotify Family")
	require.True(t, ok)
	assert.Equal(t, int64(750), plan.Price)
}

func TestLookupMissesAreExact(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	_, ok := c.FindPlan("Music", "Spotify", "spotify family")
	assert.False(t, ok, "plan lookup must be exact-match")

	_, ok = c.SubcategoryNames("music")
	assert.False(t, ok)

	_, ok = c.Plans("Video", "Spotify")
	assert.False(t, ok)
}

func TestParseRejectsEmptyAndInvalid(t *testing.T) {
	cases := map[string]string{
		"no categories": `categories: []`,
		"empty plans": `
categories:
  - name: Music
    subcategories:
      - name: Spotify
        plans: []
`,
		"zero price": `
categories:
  - name: Music
    subcategories:
      - name: Spotify
        plans:
          - name: Free Tier
            price: 0
`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}
