// Package i18n provides message catalogs for counsel's user-facing text.
//
// The chat product serves multilingual users, so every fixed string shown
// to a person (CLI output, TUI labels, the offline assistant greeting) goes
// through this package. Message metadata coming from the server is passed
// through untranslated.
package i18n

import (
	"fmt"
	"os"
	"strings"
)

// Supported languages.
const (
	LangEN = "en"
	LangTW = "tw" // Twi
	LangFR = "fr"
)

// currentLang holds the current language setting.
var currentLang = LangEN

// messages stores all translations, keyed by language then message key.
var messages = make(map[string]map[string]string)

// Init initializes the i18n system with the specified language.
func Init(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	switch lang {
	case "en", "en-us", "en-gb", "english":
		currentLang = LangEN
	case "tw", "twi", "ak", "akan":
		currentLang = LangTW
	case "fr", "french", "fr-fr":
		currentLang = LangFR
	default:
		if envLang := os.Getenv("COUNSEL_LANG"); envLang != "" && !strings.EqualFold(envLang, lang) {
			Init(envLang)
			return
		}
		currentLang = LangEN
	}

	loadMessages()
}

// SetLanguage changes the current language.
// Returns false if the language is not supported.
func SetLanguage(lang string) bool {
	switch lang {
	case LangEN, LangTW, LangFR:
		currentLang = lang
		loadMessages()
		return true
	}
	return false
}

// Current returns the active language code.
func Current() string {
	return currentLang
}

// Supported returns all supported language codes.
func Supported() []string {
	return []string{LangEN, LangTW, LangFR}
}

// T returns the translation for the given key.
// Falls back to English, then to the key itself.
func T(key string) string {
	if msg, ok := messages[currentLang][key]; ok {
		return msg
	}
	if msg, ok := messages[LangEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translation formatted with the given arguments.
func Sprintf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// Greeting returns the fixed assistant greeting for the given language.
// Used as the synthetic fallback message when history cannot be loaded.
func Greeting(lang string) string {
	if msg, ok := messages[lang]["chat.greeting"]; ok {
		return msg
	}
	return messages[LangEN]["chat.greeting"]
}

// loadMessages loads all message catalogs.
func loadMessages() {
	loadEnglishMessages()
	loadTwiMessages()
	loadFrenchMessages()
}

func init() {
	loadMessages()
}
