// Package i18n translates the user-facing troubleshooter texts.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text is the key.
const (
	MsgInvalidPPDTitle    = "Invalid PPD File"
	MsgInvalidPPDText     = "The PPD file for printer `%s' does not conform to the specification.  Possible reason follows:"
	MsgPPDProblem         = "There is a problem with the PPD file for printer `%s'."
	MsgMissingDriverTitle = "Missing Printer Driver"
	MsgRequiresPackage    = "Printer `%s' requires the %s package but it is not currently installed."
	MsgRequiresProgram    = "Printer `%s' requires the `%s' program but it is not currently installed."
	MsgInstall            = "Install"
)

var german = map[string]string{
	MsgInvalidPPDTitle:    "Ungültige PPD-Datei",
	MsgInvalidPPDText:     "Die PPD-Datei für Drucker »%s« entspricht nicht der Spezifikation. Mögliche Gründe:",
	MsgPPDProblem:         "Es gibt ein Problem mit der PPD-Datei für Drucker »%s«.",
	MsgMissingDriverTitle: "Fehlender Druckertreiber",
	MsgRequiresPackage:    "Drucker »%s« benötigt das Paket %s, aber es ist derzeit nicht installiert.",
	MsgRequiresProgram:    "Drucker »%s« benötigt das Programm »%s«, aber es ist derzeit nicht installiert.",
	MsgInstall:            "Installieren",
}

var supported = []language.Tag{language.English, language.German}

var (
	messages = buildCatalog()
	matcher  = language.NewMatcher(supported)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range german {
		if err := b.SetString(language.German, key, text); err != nil {
			panic(err)
		}
	}
	return b
}

// Localizer formats messages for one language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the closest supported language to tag.
func New(tag language.Tag) *Localizer {
	_, idx, _ := matcher.Match(tag)
	chosen := supported[idx]
	return &Localizer{tag: chosen, printer: message.NewPrinter(chosen, message.Catalog(messages))}
}

// FromEnvironment picks the language the way gettext does: LC_ALL, then
// LC_MESSAGES, then LANG.
func FromEnvironment() *Localizer {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return New(ParseLocale(value))
		}
	}
	return New(language.English)
}

// ParseLocale converts a POSIX locale name such as de_DE.UTF-8@euro to a
// language tag. C, POSIX and unparsable names map to English.
func ParseLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if idx := strings.IndexAny(locale, ".@"); idx >= 0 {
		locale = locale[:idx]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

// Tag returns the language in use.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Sprintf formats the message key with args.
func (l *Localizer) Sprintf(key string, args ...any) string {
	if l == nil {
		return message.NewPrinter(language.English).Sprintf(key, args...)
	}
	return l.printer.Sprintf(key, args...)
}
