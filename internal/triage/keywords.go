package triage

// EmergencyKeywords is the controlled vocabulary of phrases whose presence
// in a symptom description mandates an emergency classification. Matching
// is case-insensitive substring containment against the lowercased
// description; matches are collected in list order. The list must stay
// plain lowercase phrases — no regexes, no fuzzy matching.
//
// Substring matching deliberately over-triages (e.g. "no chest pain"
// still matches "chest pain"). Erring toward emergency is intentional.
var EmergencyKeywords = []string{
	// cardiac
	"chest pain",
	"chest tightness",
	"crushing chest",
	"heart attack",
	"pain spreading to arm",
	"pain radiating to jaw",
	"irregular heartbeat",

	// respiratory
	"can't breathe",
	"cannot breathe",
	"difficulty breathing",
	"shortness of breath",
	"not breathing",
	"stopped breathing",
	"gasping for air",
	"choking",
	"turning blue",

	// neurological
	"stroke",
	"face drooping",
	"slurred speech",
	"sudden numbness",
	"sudden weakness on one side",
	"seizure",
	"convulsions",
	"unconscious",
	"unresponsive",
	"passed out",
	"fainted",
	"worst headache of my life",
	"sudden confusion",
	"sudden vision loss",

	// trauma
	"severe bleeding",
	"bleeding heavily",
	"bleeding won't stop",
	"deep wound",
	"head injury",
	"gunshot",
	"stab wound",
	"severe burn",

	// toxicology
	"overdose",
	"poisoning",
	"swallowed poison",
	"ingested chemicals",

	// allergic
	"anaphylaxis",
	"throat swelling",
	"tongue swelling",
	"severe allergic reaction",

	// mental health crisis
	"suicidal",
	"want to die",
	"kill myself",
	"end my life",
	"self harm",
}
