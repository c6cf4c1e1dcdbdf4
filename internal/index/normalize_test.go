package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "Terror Nocturno",
			want:  "terror nocturno",
		},
		{
			name:  "folds diacritics",
			input: "La Última Frontera",
			want:  "la ultima frontera",
		},
		{
			name:  "underscores become spaces",
			input: "Terror_Nocturno",
			want:  "terror nocturno",
		},
		{
			name:  "hyphens become spaces",
			input: "Eco-Rojo",
			want:  "eco rojo",
		},
		{
			name:  "punctuation dropped",
			input: "¿El Regreso?: ¡Parte 2!",
			want:  "el regreso parte 2",
		},
		{
			name:  "whitespace collapsed",
			input: "  La   Última    Frontera  ",
			want:  "la ultima frontera",
		},
		{
			name:  "mixed separators",
			input: "La_Última-Frontera",
			want:  "la ultima frontera",
		},
		{
			name:  "ntilde preserved as n",
			input: "El Sueño",
			want:  "el sueno",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "?!...",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleKey(tt.input))
		})
	}
}

func TestTitleKey_CatalogAndFileFormsAgree(t *testing.T) {
	// Catalog values and document file stems must normalize identically
	assert.Equal(t, TitleKey("La Última Frontera"), TitleKey("La_Ultima_Frontera"))
	assert.Equal(t, TitleKey("TERROR NOCTURNO"), TitleKey("terror_nocturno"))
}
