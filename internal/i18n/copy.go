// Package i18n holds the localized copy of the board page.
package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Copy holds the translated strings for one page render.
type Copy struct {
	Lang        string
	Title       string
	BodyLabel   string
	ImageLabel  string
	Submit      string
	ListHeading string
	ImageAlt    string
	SizeAlert   string

	errors   map[string]string
	fallback string
}

// ErrorMessage returns the banner text for a redirect error code. Unknown
// codes get the generic message; an empty code returns "".
func (c Copy) ErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if msg, ok := c.errors[code]; ok {
		return msg
	}
	return c.fallback
}

// Localizer negotiates the page language and builds Copy values.
type Localizer struct {
	supported []language.Tag
	matcher   language.Matcher
	catalog   catalog.Catalog
}

// NewLocalizer returns a Localizer whose fallback language is defaultLocale.
// Only "ja" and "en" are supported.
func NewLocalizer(defaultLocale string) (*Localizer, error) {
	def, err := language.Parse(strings.TrimSpace(defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}

	var supported []language.Tag
	switch base, _ := def.Base(); base.String() {
	case "ja":
		supported = []language.Tag{language.Japanese, language.English}
	case "en":
		supported = []language.Tag{language.English, language.Japanese}
	default:
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}

	cat, err := buildCatalog()
	if err != nil {
		return nil, err
	}

	return &Localizer{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		catalog:   cat,
	}, nil
}

// Match returns the supported language that best fits an Accept-Language
// header value.
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.supported[0]
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return l.supported[0]
	}
	return l.supported[idx]
}

// Copy returns the page copy for tag.
func (l *Localizer) Copy(tag language.Tag) Copy {
	p := message.NewPrinter(tag, message.Catalog(l.catalog))
	// Numbers are passed preformatted so the printer does not group digits.
	maxChars := strconv.Itoa(domain.MaxBodyChars)
	limit := humanize.IBytes(uint64(domain.MaxImageBytes))
	exts := domain.ImageExtensions()

	return Copy{
		Lang:        tag.String(),
		Title:       localize(p, "page.title"),
		BodyLabel:   localize(p, "form.body_label", maxChars),
		ImageLabel:  localize(p, "form.image_label", limit, strings.Join(exts, ", ")),
		Submit:      localize(p, "form.submit"),
		ListHeading: localize(p, "list.heading"),
		ImageAlt:    localize(p, "list.image_alt"),
		SizeAlert:   localize(p, "form.size_alert", limit),
		errors: map[string]string{
			domain.CodeBody: localize(p, "error.body", maxChars),
			domain.CodeSize: localize(p, "error.size", limit),
			domain.CodeMime: localize(p, "error.mime", strings.Join(exts, " / ")),
			domain.CodeMove: localize(p, "error.move"),
		},
		fallback: localize(p, "error.generic"),
	}
}

// Resolve is Copy(Match(acceptLanguage)).
func (l *Localizer) Resolve(acceptLanguage string) Copy {
	return l.Copy(l.Match(acceptLanguage))
}

// localize formats key, falling back to the English message when the printer
// has no translation.
func localize(p *message.Printer, key string, args ...any) string {
	if value := strings.TrimSpace(p.Sprintf(key, args...)); value != "" && value != key {
		return value
	}
	if fallback, ok := messages[language.English][key]; ok {
		return fmt.Sprintf(fallback, args...)
	}
	return key
}

func buildCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s message %q: %w", tag, key, err)
			}
		}
	}
	return b, nil
}
