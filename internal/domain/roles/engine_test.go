package roles

import (
	"testing"

	"hotlist/internal/vocabulary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return NewEngine(vocabulary.Default().Roles)
}

func TestRuleOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"leadership", "statement", "bookkeeping", "ledger_split", "payroll", "tax_clerk"},
		newEngine().RuleNames())
}

func TestClassifyCandidate_NoHistory(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{})
	assert.Empty(t, got.Roles)
	assert.Nil(t, got.PrimaryRole)
	assert.False(t, got.IsLeadership)
	assert.Equal(t, NoHistoryReasoning, got.Reasoning)
}

func TestClassifyCandidate_LeadershipGate(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Teamleiterin Finanzbuchhaltung",
		History: []Position{
			{Title: "Teamleiterin Finanzbuchhaltung", Description: "Kontierung, Lohnabrechnung, Erstellung des Jahresabschlusses"},
		},
		Education: []string{"Geprüfte Bilanzbuchhalterin"},
	})

	assert.True(t, got.IsLeadership)
	assert.Empty(t, got.Roles)
	assert.Nil(t, got.PrimaryRole)
	assert.Equal(t, "Teamleiterin Finanzbuchhaltung", got.Reasoning)
}

func TestClassifyCandidate_LeadershipInDescription(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{Title: "Buchhalter", Description: "Disziplinarische Führung von vier Mitarbeitern"}},
	})
	assert.True(t, got.IsLeadership)
	assert.Equal(t, "disziplinarische führung", got.Reasoning)
}

func TestClassifyCandidate_TransliteratedUmlauts(t *testing.T) {
	leader := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Kaufmaennischer Leiter",
		History: []Position{
			{Title: "Kaufmaennischer Leiter", Description: "Fuehrung von Mitarbeitern, Erstellung der Jahresabschluesse"},
		},
	})
	assert.True(t, leader.IsLeadership)
	assert.Empty(t, leader.Roles)
	assert.Equal(t, "Kaufmaennischer Leiter", leader.Reasoning)

	preparer := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Buchhalterin",
		History:      []Position{{Title: "Buchhalterin", Description: "Erstellung der Jahresabschluesse"}},
		Education:    []string{"Gepruefte Bilanzbuchhalterin"},
	})
	assert.Equal(t, []Role{RoleCertifiedAccountant}, preparer.Roles)
}

func TestClassifyCandidate_HistoricalLeadershipIgnored(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Finanzbuchhalterin",
		History: []Position{
			{Title: "Finanzbuchhalterin", Description: "Kontierung, Kontenabstimmung"},
			{Title: "Teamleiter Buchhaltung", Description: "Personalverantwortung für fünf Mitarbeiter"},
		},
	})

	assert.False(t, got.IsLeadership)
	assert.Equal(t, []Role{RoleGeneralAccountant}, got.Roles)
}

func TestClassifyCandidate_HistoryBeyondWindowIgnored(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Sachbearbeiterin",
		History: []Position{
			{Title: "Sachbearbeiterin", Description: "Empfang"},
			{Title: "Sachbearbeiterin", Description: "Post"},
			{Title: "Lohnbuchhalterin", Description: "Lohnabrechnung"},
		},
	})
	assert.Empty(t, got.Roles)
	assert.Equal(t, NoMatchReasoning, got.Reasoning)
	assert.Zero(t, got.Confidence)
}

func TestClassifyCandidate_CertifiedStatementCreation(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Bilanzbuchhalterin",
		History: []Position{
			{Title: "Bilanzbuchhalterin", Description: "Eigenständige Erstellung des Jahresabschlusses nach HGB"},
		},
	})

	require.NotNil(t, got.PrimaryRole)
	assert.Equal(t, RoleCertifiedAccountant, *got.PrimaryRole)
	assert.Equal(t, []Role{RoleCertifiedAccountant}, got.Roles)
}

func TestClassifyCandidate_StatementCreationWithoutCertification(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Buchhalter",
		History:      []Position{{Title: "Buchhalter", Description: "Erstellung von Jahresabschlüssen"}},
	})
	assert.Equal(t, []Role{RoleGeneralAccountant}, got.Roles)
}

func TestClassifyCandidate_AssistedStatementIsNotCertifiedWork(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Buchhalterin",
		History: []Position{
			{Title: "Buchhalterin", Description: "Mitwirkung bei der Erstellung des Jahresabschlusses"},
		},
		ContinuingEducation: []string{"Geprüfte Bilanzbuchhalterin (IHK)"},
	})

	assert.Equal(t, []Role{RoleGeneralAccountant}, got.Roles)
	assert.NotContains(t, got.Roles, RoleCertifiedAccountant)
	assert.Contains(t, got.Reasoning, "assisted statement work")
}

func TestClassifyCandidate_PayablesSpecialist(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Sachbearbeiterin",
		History: []Position{
			{Title: "Sachbearbeiterin", Description: "Kreditorenbuchhaltung, Prüfung der Eingangsrechnungen, Zahlungsverkehr"},
		},
	})
	assert.Equal(t, []Role{RolePayables}, got.Roles)
}

func TestClassifyCandidate_ReceivablesSpecialist(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{Title: "Sachbearbeiter", Description: "Debitorenbuchhaltung und Mahnwesen"}},
	})
	assert.Equal(t, []Role{RoleReceivables}, got.Roles)
}

func TestClassifyCandidate_SinglePayablesHitIsNotEnough(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{Title: "Assistenz", Description: "Zahlungsverkehr"}},
	})
	assert.Empty(t, got.Roles)
}

func TestClassifyCandidate_BothLedgersMeansGeneralist(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{Title: "Sachbearbeiter", Description: "Kreditoren- und Debitorenbuchhaltung"}},
	})
	assert.Equal(t, []Role{RoleGeneralAccountant, RolePayables, RoleReceivables}, got.Roles)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestClassifyCandidate_Payroll(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{Title: "Sachbearbeiterin", Description: "Lohn- und Gehaltsabrechnung für 200 Mitarbeiter"}},
	})
	assert.Equal(t, []Role{RolePayroll}, got.Roles)
}

func TestClassifyCandidate_TaxClerkAlwaysPaired(t *testing.T) {
	e := newEngine()

	plain := e.ClassifyCandidate(Profile{
		CurrentTitle: "Steuerfachangestellte",
		History:      []Position{{Title: "Steuerfachangestellte", Description: "Mandantenbetreuung"}},
	})
	assert.Equal(t, []Role{RoleTaxClerk, RoleGeneralAccountant}, plain.Roles)

	certified := e.ClassifyCandidate(Profile{
		CurrentTitle: "Sachbearbeiter",
		History:      []Position{{Title: "Sachbearbeiter", Description: "Mandantenbetreuung"}},
		Education:    []string{"Ausbildung zum Steuerfachangestellten", "Geprüfter Bilanzbuchhalter"},
	})
	assert.Equal(t, []Role{RoleTaxClerk, RoleCertifiedAccountant}, certified.Roles)

	withBookkeeping := e.ClassifyCandidate(Profile{
		CurrentTitle: "Buchhalterin",
		History:      []Position{{Title: "Buchhalterin", Description: "Kontierung"}},
		Education:    []string{"Ausbildung zur Steuerfachangestellten"},
	})
	assert.Equal(t, []Role{RoleGeneralAccountant, RoleTaxClerk}, withBookkeeping.Roles)
	require.NotNil(t, withBookkeeping.PrimaryRole)
	assert.Equal(t, RoleGeneralAccountant, *withBookkeeping.PrimaryRole)
}

func TestClassifyCandidate_ConfidenceCapsAtOne(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		History: []Position{{
			Title:       "Finanzbuchhalter",
			Description: "Kontierung, Kontenabstimmung, laufende Buchhaltung, Umsatzsteuervoranmeldung, Monatsabschluss, Lohnabrechnung",
		}},
	})
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, []Role{RoleGeneralAccountant, RolePayroll}, got.Roles)
	assert.Equal(t, []string{"FINANZBUCHHALTER", "LOHNBUCHHALTER"}, got.Strings())
}

func TestClassifyPosting_NiceToHaveCertificationDoesNotCount(t *testing.T) {
	got := newEngine().ClassifyPosting(Posting{
		Title:       "Finanzbuchhalter (m/w/d)",
		Description: "Erstellung von Jahresabschlüssen. Weiterbildung zum Bilanzbuchhalter wünschenswert.",
	})
	assert.Equal(t, []Role{RoleGeneralAccountant}, got.Roles)
}

func TestClassifyPosting_TitleNamesCertifiedRole(t *testing.T) {
	got := newEngine().ClassifyPosting(Posting{
		Title:       "Bilanzbuchhalter (m/w/d)",
		Description: "Erstellung von Jahresabschlüssen. Weiterbildung zum Bilanzbuchhalter wünschenswert.",
	})
	assert.Equal(t, []Role{RoleCertifiedAccountant}, got.Roles)
}

func TestClassifyPosting_RequiredCertification(t *testing.T) {
	got := newEngine().ClassifyPosting(Posting{
		Title:       "Buchhaltung (m/w/d)",
		Description: "Abgeschlossene Weiterbildung zum Bilanzbuchhalter. Erstellung von Jahresabschlüssen.",
	})
	assert.Equal(t, []Role{RoleCertifiedAccountant}, got.Roles)
}

func TestClassifyPosting_ReportingLineIsNotLeadership(t *testing.T) {
	tests := []struct {
		name    string
		posting Posting
		want    []Role
	}{
		{
			name: "reports to head of finance",
			posting: Posting{
				Title:       "Finanzbuchhalter (m/w/d)",
				Description: "Kontierung und Kontenabstimmung. Sie berichten direkt an den Head of Finance.",
			},
			want: []Role{RoleGeneralAccountant},
		},
		{
			name: "reporting line to cfo",
			posting: Posting{
				Title:       "Lohnbuchhalter (m/w/d)",
				Description: "Lohn- und Gehaltsabrechnung für 300 Mitarbeiter. Berichtslinie an den CFO.",
			},
			want: []Role{RolePayroll},
		},
		{
			name: "english reporting line",
			posting: Posting{
				Title:       "Accountant",
				Description: "General ledger and account reconciliation; reports to the Director of Finance",
			},
			want: []Role{RoleGeneralAccountant},
		},
	}
	e := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ClassifyPosting(tt.posting)
			assert.False(t, got.IsLeadership)
			assert.Equal(t, tt.want, got.Roles)
		})
	}
}

func TestClassifyPosting_LeadershipTitleOrDuties(t *testing.T) {
	e := newEngine()

	byTitle := e.ClassifyPosting(Posting{
		Title:       "Teamleiter Buchhaltung (m/w/d)",
		Description: "Kontierung und Monatsabschluss.",
	})
	assert.True(t, byTitle.IsLeadership)
	assert.Empty(t, byTitle.Roles)
	assert.Equal(t, "Teamleiter Buchhaltung (m/w/d)", byTitle.Reasoning)

	byDuties := e.ClassifyPosting(Posting{
		Title:       "Buchhalter (m/w/d)",
		Description: "Disziplinarische Führung von drei Mitarbeitern. Sie berichten an den CFO.",
	})
	assert.True(t, byDuties.IsLeadership)
}

func TestClassifyCandidate_ReportingLineIsNotLeadership(t *testing.T) {
	got := newEngine().ClassifyCandidate(Profile{
		CurrentTitle: "Finanzbuchhalterin",
		History: []Position{
			{Title: "Finanzbuchhalterin", Description: "Kontierung, Kontenabstimmung; berichtet an den Head of Accounting"},
		},
	})
	assert.False(t, got.IsLeadership)
	assert.Equal(t, []Role{RoleGeneralAccountant}, got.Roles)
}

func TestClassifyPosting_Empty(t *testing.T) {
	got := newEngine().ClassifyPosting(Posting{})
	assert.Empty(t, got.Roles)
	assert.Equal(t, NoHistoryReasoning, got.Reasoning)
}
