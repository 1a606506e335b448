package stemmer

type replacement struct {
	suffix string
	with   string
}

// Tables are scanned in order and the first suffix whose stem passes the
// measure gate wins, so longer suffixes must precede their own tails.

var derivationalSuffixes = []replacement{
	{"ational", "ate"},
	{"tional", "tion"},
	{"enci", "ence"},
	{"anci", "ance"},
	{"izer", "ize"},
	{"abli", "able"},
	{"alli", "al"},
	{"entli", "ent"},
	{"eli", "e"},
	{"ousli", "ous"},
	{"ization", "ize"},
	{"ation", "ate"},
	{"ator", "ate"},
	{"alism", "al"},
	{"iveness", "ive"},
	{"fulness", "ful"},
	{"ousness", "ous"},
	{"aliti", "al"},
	{"iviti", "ive"},
	{"biliti", "ble"},
	{"logi", "log"},
}

var furtherSuffixes = []replacement{
	{"icate", "ic"},
	{"ative", ""},
	{"alize", "al"},
	{"iciti", "ic"},
	{"ical", "ic"},
	{"ful", ""},
	{"ness", ""},
}

var commonEndings = []string{
	"al",
	"ance",
	"ence",
	"er",
	"ic",
	"able",
	"ible",
	"ant",
	"ement",
	"ment",
	"ent",
	"ion",
	"ou",
	"ism",
	"ate",
	"iti",
	"ous",
	"ive",
	"ize",
}

// minEndingStem is the shortest stem a common ending may be removed from.
const minEndingStem = 5
