package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "buchhalter mit sap", Normalize("  Buchhalter \t mit  SAP "))
	assert.Equal(t, "titel\nbeschreibung", Normalize("Titel \n\n  Beschreibung"))
	assert.Equal(t, "", Normalize("   "))
}

func TestNormalize_FoldsUmlauts(t *testing.T) {
	assert.Equal(t, "kaufmaennische leiterin", Normalize("Kaufmännische Leiterin"))
	assert.Equal(t, "schweisser", Normalize("SCHWEIßER"))
	assert.Equal(t, NormalizePhrase("Führung von Mitarbeitern"), NormalizePhrase("Fuehrung von Mitarbeitern"))
}

func TestContains_TransliteratedText(t *testing.T) {
	text := NewText("Fuehrung von Mitarbeitern, Erstellung der Jahresabschluesse")
	assert.True(t, text.Contains("führung von mitarbeitern"))
	assert.True(t, text.Contains("erstellung der jahresabschlüsse"))
	assert.True(t, NewText("Führung von Mitarbeitern").Contains("fuehrung von mitarbeitern"))
	assert.Equal(t, []string{"Prüfung"}, NewText("Pruefung der Belege").Matches([]string{"Prüfung", "Zahlung"}))
}

func TestContains_WordBoundary(t *testing.T) {
	text := NewText("Buchhalter mit SAP-Kenntnissen gesucht")

	tests := []struct {
		phrase string
		want   bool
	}{
		{"sap", true},
		{"SAP", true},
		{"buchhalter", true},
		{"halter", false},
		{"kenntnis", false},
		{"sap-kenntnissen", true},
		{"datev", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Contains(tt.phrase))
		})
	}
}

func TestContains_UnicodeBoundaries(t *testing.T) {
	text := NewText("Prüfung der Lohn- und Gehaltsabrechnung; Kreditorenbuchhaltung")

	assert.True(t, text.Contains("lohn- und gehaltsabrechnung"))
	assert.True(t, text.Contains("Kreditorenbuchhaltung"))
	assert.False(t, text.Contains("kreditoren"))
	assert.False(t, text.Contains("fung"))
}

func TestContains_SymbolEdges(t *testing.T) {
	text := NewText("Erfahrung mit C++ und C#")
	assert.True(t, text.Contains("c++"))
	assert.True(t, text.Contains("c#"))
}

func TestContains_PhraseSpansLineBreak(t *testing.T) {
	text := NewText("Erstellung des\nJahresabschlusses")
	assert.False(t, text.Contains("erstellung des jahresabschlusses"))
	assert.True(t, NewText("Erstellung   des Jahresabschlusses").Contains("erstellung des jahresabschlusses"))
}

func TestCount(t *testing.T) {
	text := NewText("Kreditoren, Kreditoren und nochmals kreditoren; kreditorenbuchhaltung")
	assert.Equal(t, 3, text.Count("kreditoren"))
	assert.Equal(t, 0, NewText("").Count("kreditoren"))
}

func TestMatches_DeduplicatesInOrder(t *testing.T) {
	text := NewText("SAP und DATEV, sap")
	assert.Equal(t, []string{"DATEV", "SAP"}, text.Matches([]string{"DATEV", "SAP", "sap", "Excel"}))
	assert.Empty(t, text.Matches(nil))
}

func TestCountAll(t *testing.T) {
	text := NewText("Eingangsrechnungen prüfen, Kreditorenbuchhaltung, Eingangsrechnungen buchen")
	assert.Equal(t, 3, text.CountAll([]string{"eingangsrechnungen", "kreditorenbuchhaltung", "Eingangsrechnungen"}))
}

func TestStripFrom(t *testing.T) {
	text := NewText("Erstellung von Bilanzen. Mitwirkung bei der Erstellung des Jahresabschlusses; Kontierung")

	out, removed := text.StripFrom([]string{"mitwirkung bei"})
	assert.Equal(t, "erstellung von bilanzen. ; kontierung", out.String())
	assert.Equal(t, []string{"mitwirkung bei der erstellung des jahresabschlusses"}, removed)
}

func TestStripClauses(t *testing.T) {
	text := NewText("Abgeschlossene Ausbildung, Weiterbildung zum Bilanzbuchhalter wünschenswert, SAP")

	out, removed := text.StripClauses([]string{"wünschenswert"})
	assert.False(t, out.Contains("bilanzbuchhalter"))
	assert.True(t, out.Contains("sap"))
	assert.Len(t, removed, 1)
}

func TestStrip_NoMarkers(t *testing.T) {
	text := NewText("Kontierung")
	out, removed := text.StripFrom(nil)
	assert.Equal(t, text, out)
	assert.Nil(t, removed)
}
