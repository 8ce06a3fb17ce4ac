package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Història de l'Art":          "historia de la art",
		"Disseny i Comunicació":      "disseny comunicacio",
		"  Taller   d'Il·lustració ": "taller de illustracio",
		"Projectes: Espai, Objecte!": "projectes espai objecte",
		"Imatge i so":                "imatge so",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("", ""))
	assert.Equal(t, 100, Similarity("abc", "abc"))
	// One substitution over ten letters.
	assert.Equal(t, 90, Similarity("tipografia", "tipografie"))
	assert.Equal(t, 0, Similarity("abc", "xyz"))
}

func TestSignificantParts(t *testing.T) {
	assert.True(t, SignificantParts("projectes de disseny grafic", "disseny grafic avancat projectes"))
	assert.False(t, SignificantParts("fotografia", "escultura"))
	// Short words never count.
	assert.False(t, SignificantParts("art i so", "art i so"))
}

func TestCompare(t *testing.T) {
	m, ok := Compare("Història de l'Art", "historia de la art")
	require.True(t, ok)
	assert.Equal(t, MatchExact, m.Type)
	assert.Equal(t, 100, m.Similarity)

	m, ok = Compare("Tipografia", "Tipografie")
	require.True(t, ok)
	assert.Equal(t, MatchHigh, m.Type)

	m, ok = Compare("Fotografia 1", "Fotografia 2")
	require.True(t, ok)
	assert.Equal(t, MatchHigh, m.Type)

	m, ok = Compare("Projectes de Disseny Gràfic", "Disseny Gràfic: Projectes Avançats")
	require.True(t, ok)
	assert.Equal(t, MatchMedium, m.Type)
	assert.GreaterOrEqual(t, m.Similarity, 70)

	// 78% similar: medium, not partial.
	m, ok = Compare("Modelatge", "Modelat")
	require.True(t, ok)
	assert.Equal(t, MatchMedium, m.Type)
	assert.Equal(t, 78, m.Similarity)

	// 68% similar but sharing every significant word: raised to 70.
	m, ok = Compare("Dibuix tècnic", "Dibuix tècnics avan")
	require.True(t, ok)
	assert.Equal(t, MatchMedium, m.Type)
	assert.Equal(t, 70, m.Similarity)

	// 67% similar without shared words stays partial.
	m, ok = Compare("Animació", "Aplicació")
	require.True(t, ok)
	assert.Equal(t, MatchPartial, m.Type)
	assert.Equal(t, 67, m.Similarity)

	_, ok = Compare("Escultura", "Animació 3D")
	assert.False(t, ok)

	_, ok = Compare("", "Escultura")
	assert.False(t, ok)
}

func TestMatchTypeAtLeast(t *testing.T) {
	assert.True(t, MatchExact.AtLeast(MatchHigh))
	pairs := Pairs([]Item{{Label: "Modelatge"}, {Label: "Modelat"}}, ParseMatchType(""))
	assert.Len(t, pairs, 1)
	assert.True(t, MatchMedium.AtLeast(MatchMedium))
	assert.False(t, MatchPartial.AtLeast(MatchMedium))
	assert.Equal(t, MatchMedium, ParseMatchType("bogus"))
	assert.Equal(t, MatchHigh, ParseMatchType(" HIGH "))
}

func TestPairs(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Code: "A1", Label: "Tipografia"},
		{ID: uuid.New(), Code: "A2", Label: "Escultura"},
		{ID: uuid.New(), Code: "A3", Label: "tipografia"},
		{ID: uuid.New(), Code: "A4", Label: "Tipografie"},
	}

	pairs := Pairs(items, MatchHigh)
	require.Len(t, pairs, 3)
	assert.Equal(t, MatchExact, pairs[0].Type)
	assert.Equal(t, "A1", pairs[0].A.Code)
	assert.Equal(t, "A3", pairs[0].B.Code)
	for _, p := range pairs {
		assert.NotEqual(t, "A2", p.A.Code)
		assert.NotEqual(t, "A2", p.B.Code)
	}
}

func TestBest(t *testing.T) {
	items := []Item{
		{ID: uuid.New(), Label: "Anna Puig Soler"},
		{ID: uuid.New(), Label: "Anna Puig Sole"},
		{ID: uuid.New(), Label: "Jordi Vidal"},
	}

	res := Best("anna puig soler", items)
	require.NotNil(t, res.Item)
	assert.Equal(t, items[0].ID, res.Item.ID)
	assert.Equal(t, MatchExact, res.Match.Type)

	res = Best("Marta Serra", items)
	assert.Nil(t, res.Item)
	assert.Nil(t, res.Match)
}
