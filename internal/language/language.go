package language

import "strings"

type entry struct {
	iso2    string
	iso3    []string
	display string
}

// Languages with an alignment model in WhisperX.
var languages = []entry{
	{"en", []string{"eng"}, "English"},
	{"fr", []string{"fra", "fre"}, "French"},
	{"de", []string{"deu", "ger"}, "German"},
	{"es", []string{"spa"}, "Spanish"},
	{"it", []string{"ita"}, "Italian"},
	{"pt", []string{"por"}, "Portuguese"},
	{"nl", []string{"nld", "dut"}, "Dutch"},
	{"ja", []string{"jpn"}, "Japanese"},
	{"zh", []string{"zho", "chi"}, "Chinese"},
	{"ko", []string{"kor"}, "Korean"},
	{"ru", []string{"rus"}, "Russian"},
	{"uk", []string{"ukr"}, "Ukrainian"},
	{"pl", []string{"pol"}, "Polish"},
	{"cs", []string{"ces", "cze"}, "Czech"},
	{"ar", []string{"ara"}, "Arabic"},
	{"tr", []string{"tur"}, "Turkish"},
	{"hi", []string{"hin"}, "Hindi"},
	{"vi", []string{"vie"}, "Vietnamese"},
	{"da", []string{"dan"}, "Danish"},
	{"fi", []string{"fin"}, "Finnish"},
	{"no", []string{"nor", "nob"}, "Norwegian"},
	{"el", []string{"ell", "gre"}, "Greek"},
	{"he", []string{"heb"}, "Hebrew"},
	{"hu", []string{"hun"}, "Hungarian"},
}

var index = func() map[string]*entry {
	m := make(map[string]*entry, len(languages)*4)
	for i := range languages {
		e := &languages[i]
		m[e.iso2] = e
		m[strings.ToLower(e.display)] = e
		for _, code := range e.iso3 {
			m[code] = e
		}
	}
	return m
}()

func lookup(value string) *entry {
	return index[strings.ToLower(strings.TrimSpace(value))]
}

// ToISO2 returns the two-letter code for a code or English name, or "" when
// the language is unknown.
func ToISO2(value string) string {
	if e := lookup(value); e != nil {
		return e.iso2
	}
	return ""
}

// Normalize maps value to a WhisperX language code. Blank input means
// auto-detect and yields ("", true).
func Normalize(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", true
	}
	code := ToISO2(value)
	return code, code != ""
}

// DisplayName returns a readable name, "Auto-detect" for blank input, or the
// upper-cased input when unknown.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Auto-detect"
	}
	if e := lookup(value); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(value))
}
