// Package roles assigns accounting role labels to candidate profiles and job
// postings with an ordered list of keyword rules. It is the default
// classifier; an external model may override its output but never replaces
// it.
package roles

import (
	"math"
	"strings"

	"hotlist/internal/domain/textmatch"
	"hotlist/internal/vocabulary"
)

type Role string

const (
	RoleCertifiedAccountant Role = "BILANZBUCHHALTER"
	RoleGeneralAccountant   Role = "FINANZBUCHHALTER"
	RolePayables            Role = "KREDITORENBUCHHALTER"
	RoleReceivables         Role = "DEBITORENBUCHHALTER"
	RolePayroll             Role = "LOHNBUCHHALTER"
	RoleTaxClerk            Role = "STEUERFACHANGESTELLTER"
)

const (
	// HistoryWindow is how many work-history entries feed the activity text.
	HistoryWindow = 2

	NoHistoryReasoning = "no work history"
	NoMatchReasoning   = "no role keywords matched"

	hitsForFullConfidence = 5
)

type Position struct {
	Title       string
	Description string
}

// Profile is the candidate input. History is ordered most recent first.
type Profile struct {
	CurrentTitle        string
	History             []Position
	Education           []string
	ContinuingEducation []string
	HeldTitles          []string
}

type Posting struct {
	Title       string
	Description string
}

type Result struct {
	Roles        []Role
	PrimaryRole  *Role
	IsLeadership bool
	Confidence   float64
	Reasoning    string
	Hits         int
}

// Strings returns the role identifiers for persistence.
func (r Result) Strings() []string {
	out := make([]string, 0, len(r.Roles))
	for _, role := range r.Roles {
		out = append(out, string(role))
	}
	return out
}

type Engine struct {
	vocab vocabulary.RoleVocabulary
	rules []rule
}

func NewEngine(v vocabulary.RoleVocabulary) *Engine {
	return &Engine{vocab: v, rules: defaultRules()}
}

// ClassifyCandidate reads the current title plus the most recent
// HistoryWindow positions, current first.
func (e *Engine) ClassifyCandidate(p Profile) Result {
	activityParts := []string{p.CurrentTitle}
	leadershipParts := []string{p.CurrentTitle}
	for i, pos := range p.History {
		if i >= HistoryWindow {
			break
		}
		activityParts = append(activityParts, pos.Title, pos.Description)
		if i == 0 {
			leadershipParts = append(leadershipParts, pos.Title, pos.Description)
		}
	}

	activity := textmatch.NewText(activityParts...)
	if activity.Empty() {
		return Result{Roles: []Role{}, Reasoning: NoHistoryReasoning}
	}

	qualificationParts := append(append([]string{}, p.Education...), p.ContinuingEducation...)
	qualification := textmatch.NewText(qualificationParts...)
	titles := textmatch.NewText(append([]string{p.CurrentTitle}, p.HeldTitles...)...)

	leadership, _ := textmatch.NewText(leadershipParts...).StripClauses(e.vocab.ReportingLines)
	ev := &evaluation{
		label:              strings.TrimSpace(p.CurrentTitle),
		activity:           activity,
		leadershipTitles:   leadership,
		leadershipActivity: leadership,
		qualification:      qualification,
		titles:             titles,
	}
	ev.certifications = append(qualification.Matches(e.vocab.Certification), titles.Matches(e.vocab.Certification)...)
	return e.evaluate(ev)
}

// ClassifyPosting applies the same rules to a job posting. A certification
// mentioned only as nice-to-have or trainable does not count unless the
// posting title itself names the certified role. Leadership titles are read
// from the posting title only, and reporting-line clauses in the
// description are ignored by the leadership gate.
func (e *Engine) ClassifyPosting(p Posting) Result {
	activity := textmatch.NewText(p.Title, p.Description)
	if activity.Empty() {
		return Result{Roles: []Role{}, Reasoning: NoHistoryReasoning}
	}

	title := textmatch.NewText(p.Title)
	desc := textmatch.NewText(p.Description)
	required, _ := desc.StripClauses(e.vocab.NiceToHave)

	duties, _ := desc.StripClauses(e.vocab.ReportingLines)
	ev := &evaluation{
		label:              strings.TrimSpace(p.Title),
		activity:           activity,
		leadershipTitles:   title,
		leadershipActivity: duties,
		qualification:      desc,
		titles:             title,
	}
	ev.certifications = append(title.Matches(e.vocab.Certification), required.Matches(e.vocab.Certification)...)
	return e.evaluate(ev)
}

// RuleNames lists the rules in evaluation order.
func (e *Engine) RuleNames() []string {
	out := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, r.name)
	}
	return out
}

func (e *Engine) evaluate(ev *evaluation) Result {
	for _, r := range e.rules {
		r.apply(e.vocab, ev)
		if ev.stop {
			break
		}
	}
	return ev.result()
}

type evaluation struct {
	label              string
	activity           textmatch.Text
	leadershipTitles   textmatch.Text
	leadershipActivity textmatch.Text
	qualification      textmatch.Text
	titles             textmatch.Text
	certifications     []string

	// assisted statement fragments found by the statement rule
	assisted []string

	roles        []Role
	hits         int
	notes        []string
	isLeadership bool
	stop         bool
}

func (ev *evaluation) certified() bool {
	return len(ev.certifications) > 0
}

func (ev *evaluation) emit(note string, roles ...Role) {
	ev.roles = append(ev.roles, roles...)
	ev.notes = append(ev.notes, note)
}

func (ev *evaluation) result() Result {
	confidence := math.Min(1, float64(ev.hits)/hitsForFullConfidence)

	if ev.isLeadership {
		return Result{
			Roles:        []Role{},
			IsLeadership: true,
			Confidence:   confidence,
			Reasoning:    strings.Join(ev.notes, "; "),
			Hits:         ev.hits,
		}
	}

	roles := dedupe(ev.roles)
	res := Result{
		Roles:      roles,
		Confidence: confidence,
		Hits:       ev.hits,
		Reasoning:  strings.Join(ev.notes, "; "),
	}
	if len(roles) > 0 {
		primary := roles[0]
		res.PrimaryRole = &primary
	} else {
		res.Confidence = 0
		res.Reasoning = NoMatchReasoning
	}
	return res
}

func dedupe(in []Role) []Role {
	out := make([]Role, 0, len(in))
	seen := make(map[Role]struct{}, len(in))
	for _, r := range in {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
