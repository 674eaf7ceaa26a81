package model

// Language is the fixed set of programming languages the platform knows.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCpp        Language = "cpp"
	LangC          Language = "c"
)

var allLanguages = []Language{LangJavaScript, LangPython, LangJava, LangCpp, LangC}

func IsValidLanguage(l Language) bool {
	for _, v := range allLanguages {
		if l == v {
			return true
		}
	}
	return false
}

// DefaultAllowedLanguages is the assignment default when no explicit
// language list is supplied.
func DefaultAllowedLanguages() []Language {
	return []Language{LangJavaScript, LangPython}
}
