package legalform

// Form is one legal-form spelling, folded to lowercase with single spaces.
type Form struct {
	Text string
	Lang string
}

// DefaultForms are the Russian, Ukrainian and English legal forms, including
// the Cyrillic transliterations seen in payment details.
var DefaultForms = []Form{
	// ru
	{"ооо", "ru"}, {"оао", "ru"}, {"зао", "ru"}, {"пао", "ru"}, {"ао", "ru"},
	{"нко", "ru"}, {"ип", "ru"}, {"гуп", "ru"}, {"муп", "ru"}, {"ано", "ru"},
	{"общество с ограниченной ответственностью", "ru"},
	{"акционерное общество", "ru"},
	{"публичное акционерное общество", "ru"},
	{"индивидуальный предприниматель", "ru"},
	// uk
	{"тов", "uk"}, {"пат", "uk"}, {"прат", "uk"}, {"ат", "uk"}, {"фоп", "uk"},
	{"пп", "uk"}, {"дп", "uk"}, {"кп", "uk"},
	{"товариство з обмеженою відповідальністю", "uk"},
	{"акціонерне товариство", "uk"},
	{"приватне акціонерне товариство", "uk"},
	{"приватне підприємство", "uk"},
	{"фізична особа підприємець", "uk"},
	{"фізична особа - підприємець", "uk"},
	{"інкорпорейтед", "uk"}, {"лімітед", "uk"}, {"корпорейшн", "uk"}, {"інк", "uk"},
	{"инкорпорейтед", "ru"}, {"лимитед", "ru"}, {"корпорейшн", "ru"},
	// en
	{"llc", "en"}, {"ltd", "en"}, {"inc", "en"}, {"corp", "en"}, {"plc", "en"},
	{"llp", "en"}, {"gmbh", "en"}, {"corporation", "en"}, {"incorporated", "en"},
	{"limited", "en"}, {"company", "en"},
	{"limited liability company", "en"},
}
