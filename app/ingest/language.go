package ingest

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName resolves a BCP 47 code like "en" or "pt-BR" to its
// English display name for use in chat prompts. Unknown or malformed
// codes fall back to "English".
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return "English"
	}

	name := display.English.Languages().Name(tag)
	if name == "" {
		return "English"
	}

	return name
}
