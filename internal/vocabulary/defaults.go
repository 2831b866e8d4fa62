package vocabulary

// Default returns the built-in German accounting and trades vocabulary.
// Every call returns fresh slices and maps.
func Default() Vocabulary {
	return Vocabulary{
		Categories: CategoryVocabulary{
			Finance: []string{
				"buchhaltung", "buchhalter", "buchhalterin",
				"finanzbuchhaltung", "finanzbuchhalter", "finanzbuchhalterin",
				"bilanzbuchhalter", "bilanzbuchhalterin", "bilanzierung",
				"lohnbuchhaltung", "lohnbuchhalter", "lohnbuchhalterin", "lohnabrechnung",
				"kreditorenbuchhaltung", "debitorenbuchhaltung",
				"jahresabschluss", "jahresabschlüsse", "monatsabschluss",
				"rechnungswesen", "controlling", "controller",
				"steuerfachangestellte", "steuerfachangestellter", "steuerberatung",
				"datev", "umsatzsteuer",
				"accounting", "accountant", "bookkeeping", "payroll", "finance",
			},
			Engineering: []string{
				"elektriker", "elektronikerin", "elektroniker", "elektrotechnik",
				"mechatroniker", "mechatronikerin", "mechaniker",
				"industriemechaniker", "anlagenmechaniker",
				"techniker", "technikerin", "ingenieur", "ingenieurin",
				"schlosser", "schweißer", "instandhaltung", "maschinenbau",
				"shk", "cnc", "sps",
				"engineer", "engineering", "technician", "maintenance",
			},
		},
		Geography: Geography{
			PostalPrefixLength: 2,
			PostalCities: map[string]string{
				"01": "Dresden",
				"04": "Leipzig",
				"10": "Berlin",
				"12": "Berlin",
				"13": "Berlin",
				"14": "Potsdam",
				"20": "Hamburg",
				"21": "Hamburg",
				"22": "Hamburg",
				"28": "Bremen",
				"30": "Hannover",
				"40": "Düsseldorf",
				"44": "Dortmund",
				"45": "Essen",
				"50": "Köln",
				"51": "Köln",
				"53": "Bonn",
				"60": "Frankfurt am Main",
				"65": "Wiesbaden",
				"68": "Mannheim",
				"70": "Stuttgart",
				"76": "Karlsruhe",
				"80": "München",
				"81": "München",
				"86": "Augsburg",
				"90": "Nürnberg",
				"99": "Erfurt",
			},
			CityAliases: map[string]string{
				"frankfurt":        "Frankfurt am Main",
				"frankfurt/main":   "Frankfurt am Main",
				"frankfurt a.m.":   "Frankfurt am Main",
				"frankfurt a. m.":  "Frankfurt am Main",
				"frankfurt (main)": "Frankfurt am Main",
				"muenchen":         "München",
				"munich":           "München",
				"koeln":            "Köln",
				"cologne":          "Köln",
				"duesseldorf":      "Düsseldorf",
				"nuernberg":        "Nürnberg",
				"nuremberg":        "Nürnberg",
				"hanover":          "Hannover",
				"berlin-mitte":     "Berlin",
				"hamburg-altona":   "Hamburg",
			},
		},
		Titles: []TitleRule{
			{Keyword: "bilanzbuchhalter", Title: "Bilanzbuchhalter"},
			{Keyword: "lohnbuchhalter", Title: "Lohnbuchhalter"},
			{Keyword: "gehaltsbuchhalter", Title: "Lohnbuchhalter"},
			{Keyword: "kreditorenbuchhalter", Title: "Kreditorenbuchhalter"},
			{Keyword: "debitorenbuchhalter", Title: "Debitorenbuchhalter"},
			{Keyword: "finanzbuchhalter", Title: "Finanzbuchhalter"},
			{Keyword: "lohnbuchhaltung", Title: "Lohnbuchhalter"},
			{Keyword: "kreditorenbuchhaltung", Title: "Kreditorenbuchhalter"},
			{Keyword: "debitorenbuchhaltung", Title: "Debitorenbuchhalter"},
			{Keyword: "finanzbuchhaltung", Title: "Finanzbuchhalter"},
			{Keyword: "steuerfachangestellte", Title: "Steuerfachangestellter"},
			{Keyword: "controller", Title: "Controller"},
			{Keyword: "buchhalter", Title: "Buchhalter"},
			{Keyword: "buchhaltung", Title: "Buchhalter"},
			{Keyword: "industriemechaniker", Title: "Industriemechaniker"},
			{Keyword: "anlagenmechaniker", Title: "Anlagenmechaniker"},
			{Keyword: "mechatroniker", Title: "Mechatroniker"},
			{Keyword: "mechaniker", Title: "Mechaniker"},
			{Keyword: "elektroniker", Title: "Elektroniker"},
			{Keyword: "elektriker", Title: "Elektriker"},
			{Keyword: "techniker", Title: "Techniker"},
			{Keyword: "ingenieur", Title: "Ingenieur"},
		},
		Roles: RoleVocabulary{
			LeadershipTitles: []string{
				"teamleiter", "teamleiterin", "teamleitung",
				"abteilungsleiter", "abteilungsleiterin",
				"leiter rechnungswesen", "leiterin rechnungswesen",
				"leiter buchhaltung", "leiterin buchhaltung",
				"leiter finanzbuchhaltung", "leiterin finanzbuchhaltung",
				"kaufmännischer leiter", "kaufmännische leiterin",
				"finanzleiter", "finanzleiterin", "head of", "cfo",
				"geschäftsführer", "geschäftsführerin", "director",
			},
			LeadershipActivities: []string{
				"disziplinarische führung", "disziplinarische verantwortung",
				"personalverantwortung", "führung von mitarbeitern",
				"führung eines teams", "leitung des teams", "leitung der abteilung",
				"led a team", "managed a team", "people management",
			},
			StatementCreation: []string{
				"erstellung von jahresabschlüssen", "erstellung des jahresabschlusses",
				"erstellung der jahresabschlüsse", "jahresabschlusserstellung",
				"eigenständige erstellung des jahresabschlusses",
				"erstellung von bilanzen", "erstellung der bilanz",
				"prepared financial statements", "preparation of financial statements",
			},
			AssistMarkers: []string{
				"mitwirkung bei", "mitwirkung an", "unterstützung bei",
				"vorbereitung der", "vorbereitung des", "vorbereitende",
				"zuarbeit", "zuarbeiten", "assisted with", "assisting with",
				"prepared for", "support in", "supported the",
			},
			Certification: []string{
				"bilanzbuchhalter", "bilanzbuchhalterin",
				"geprüfter bilanzbuchhalter", "geprüfte bilanzbuchhalterin",
				"bilanzbuchhalter ihk", "certified public accountant",
			},
			Bookkeeping: []string{
				"kontenabstimmung", "abstimmung der konten", "kontenklärung",
				"laufende buchhaltung", "laufende buchungen", "kontierung",
				"buchung von geschäftsvorfällen", "umsatzsteuervoranmeldung",
				"umsatzsteuervoranmeldungen", "steuererklärungen", "finanzbuchhaltung",
				"monatsabschluss", "monatsabschlüsse",
				"ledger reconciliation", "account reconciliation", "general ledger", "tax filings",
			},
			Payables: []string{
				"kreditorenbuchhaltung", "kreditoren", "kreditorenbuchhalter",
				"eingangsrechnungen", "rechnungsprüfung", "zahlungsverkehr", "zahlungsläufe",
				"accounts payable", "invoice processing", "vendor payments",
			},
			Receivables: []string{
				"debitorenbuchhaltung", "debitoren", "debitorenbuchhalter",
				"ausgangsrechnungen", "mahnwesen", "forderungsmanagement",
				"accounts receivable", "dunning", "collections",
			},
			Payroll: []string{
				"lohnbuchhaltung", "lohnabrechnung", "lohnabrechnungen",
				"lohn- und gehaltsabrechnung", "gehaltsabrechnung", "entgeltabrechnung",
				"lohnbuchhalter", "lohnbuchhalterin", "payroll",
			},
			TaxClerk: []string{
				"steuerfachangestellte", "steuerfachangestellter",
				"ausbildung zur steuerfachangestellten", "ausbildung zum steuerfachangestellten",
				"tax clerk",
			},
			NiceToHave: []string{
				"wünschenswert", "von vorteil", "idealerweise", "gerne auch",
				"bereitschaft zur weiterbildung", "bereitschaft zur fortbildung",
				"nice to have", "willingness to train", "is a plus", "optional",
			},
			ReportingLines: []string{
				"berichten", "berichtest", "berichtet", "berichtslinie",
				"unterstellt", "in direkter linie an",
				"reports to", "reporting to", "reporting line",
			},
		},
	}
}
