package roles

import (
	"fmt"
	"strings"

	"hotlist/internal/domain/textmatch"
	"hotlist/internal/vocabulary"
)

type rule struct {
	name  string
	apply func(v vocabulary.RoleVocabulary, ev *evaluation)
}

// defaultRules is evaluated top to bottom. The leadership gate stops the
// evaluation; every other rule only adds roles.
func defaultRules() []rule {
	return []rule{
		{name: "leadership", apply: leadershipGate},
		{name: "statement", apply: statementCreation},
		{name: "bookkeeping", apply: bookkeeping},
		{name: "ledger_split", apply: ledgerSplit},
		{name: "payroll", apply: payroll},
		{name: "tax_clerk", apply: taxClerk},
	}
}

func leadershipGate(v vocabulary.RoleVocabulary, ev *evaluation) {
	hits := ev.leadershipTitles.Matches(v.LeadershipTitles)
	hits = append(hits, ev.leadershipActivity.Matches(v.LeadershipActivities)...)
	if len(hits) == 0 {
		return
	}
	ev.isLeadership = true
	ev.stop = true
	ev.hits += len(hits)

	label := ev.label
	if label == "" {
		label = hits[0]
	}
	ev.notes = append(ev.notes, label)
}

// statementCreation separates independent financial statement work from
// assisted work. Assisted clauses are cut before the positive phrases are
// tested and are remembered for the bookkeeping rule.
func statementCreation(v vocabulary.RoleVocabulary, ev *evaluation) {
	cleaned, removed := ev.activity.StripFrom(v.AssistMarkers)
	for _, frag := range removed {
		if textmatch.NewText(frag).ContainsAny(v.StatementCreation) {
			ev.assisted = append(ev.assisted, frag)
		}
	}

	phrases := cleaned.Matches(v.StatementCreation)
	if len(phrases) == 0 {
		return
	}
	ev.hits += len(phrases)

	if ev.certified() {
		ev.hits += len(ev.certifications)
		ev.emit(fmt.Sprintf("%s: statement creation (%s) with certification (%s)",
			RoleCertifiedAccountant, strings.Join(phrases, ", "), ev.certifications[0]), RoleCertifiedAccountant)
		return
	}
	ev.emit(fmt.Sprintf("%s: statement creation (%s) without certification",
		RoleGeneralAccountant, strings.Join(phrases, ", ")), RoleGeneralAccountant)
}

func bookkeeping(v vocabulary.RoleVocabulary, ev *evaluation) {
	kws := ev.activity.Matches(v.Bookkeeping)
	if len(kws) == 0 && len(ev.assisted) == 0 {
		return
	}
	ev.hits += len(kws) + len(ev.assisted)

	var reasons []string
	if len(kws) > 0 {
		reasons = append(reasons, "bookkeeping ("+strings.Join(kws, ", ")+")")
	}
	if len(ev.assisted) > 0 {
		reasons = append(reasons, "assisted statement work")
	}
	ev.emit(fmt.Sprintf("%s: %s", RoleGeneralAccountant, strings.Join(reasons, " + ")), RoleGeneralAccountant)
}

// ledgerSplit assigns the payables or receivables specialist only for
// sustained one-sided evidence. Evidence on both sides means a generalist.
func ledgerSplit(v vocabulary.RoleVocabulary, ev *evaluation) {
	payables := ev.activity.CountAll(v.Payables)
	receivables := ev.activity.CountAll(v.Receivables)

	switch {
	case payables >= 1 && receivables >= 1:
		ev.hits += payables + receivables
		ev.emit(fmt.Sprintf("%s+%s+%s: payables (%d) and receivables (%d)",
			RoleGeneralAccountant, RolePayables, RoleReceivables, payables, receivables),
			RoleGeneralAccountant, RolePayables, RoleReceivables)
	case payables >= 2 && receivables == 0:
		ev.hits += payables
		ev.emit(fmt.Sprintf("%s: payables (%d)", RolePayables, payables), RolePayables)
	case receivables >= 2 && payables == 0:
		ev.hits += receivables
		ev.emit(fmt.Sprintf("%s: receivables (%d)", RoleReceivables, receivables), RoleReceivables)
	}
}

func payroll(v vocabulary.RoleVocabulary, ev *evaluation) {
	kws := ev.activity.Matches(v.Payroll)
	if len(kws) == 0 {
		return
	}
	ev.hits += len(kws)
	ev.emit(fmt.Sprintf("%s: payroll (%s)", RolePayroll, strings.Join(kws, ", ")), RolePayroll)
}

// taxClerk never stands alone: it is paired with the certified or the
// general accountant role.
func taxClerk(v vocabulary.RoleVocabulary, ev *evaluation) {
	kws := ev.qualification.Matches(v.TaxClerk)
	kws = append(kws, ev.titles.Matches(v.TaxClerk)...)
	if len(kws) == 0 {
		return
	}
	ev.hits += len(kws)

	pair := RoleGeneralAccountant
	if ev.certified() {
		pair = RoleCertifiedAccountant
	}
	ev.emit(fmt.Sprintf("%s: qualification (%s) paired with %s", RoleTaxClerk, kws[0], pair), RoleTaxClerk, pair)
}
