// Package i18n resolves the bilingual fields stored with site content.
package i18n

import "strings"

type Lang string

const (
	ID Lang = "id"
	EN Lang = "en"
)

// ParseLang accepts "id" and "en" in any case and falls back to ID.
func ParseLang(s string) Lang {
	if Lang(strings.ToLower(strings.TrimSpace(s))) == EN {
		return EN
	}
	return ID
}

func (l Lang) Toggle() Lang {
	if l == EN {
		return ID
	}
	return EN
}

func (l Lang) String() string { return string(l) }

type Kind int

const (
	Null Kind = iota
	Plain
	Localized
)

// Text is a stored field value: absent, a plain string, or an {id, en} pair.
type Text struct {
	Kind Kind
	S    string
	IDs  string
	ENs  string
}

func PlainText(s string) Text { return Text{Kind: Plain, S: s} }

func LocalizedText(id, en string) Text { return Text{Kind: Localized, IDs: id, ENs: en} }

// FromValue reads a stored value. Strings become Plain, maps become Localized, and
// anything else (absent, numbers, lists) becomes Null.
func FromValue(v any) Text {
	switch x := v.(type) {
	case string:
		return PlainText(x)
	case map[string]any:
		id, _ := x[string(ID)].(string)
		en, _ := x[string(EN)].(string)
		return LocalizedText(id, en)
	case map[string]string:
		return LocalizedText(x[string(ID)], x[string(EN)])
	}
	return Text{}
}

// Resolve picks the text for lang. A localized value falls back to its id entry when
// the requested one is empty.
func (t Text) Resolve(lang Lang) string {
	switch t.Kind {
	case Plain:
		return t.S
	case Localized:
		if lang == EN && t.ENs != "" {
			return t.ENs
		}
		return t.IDs
	}
	return ""
}

func Resolve(v any, lang Lang) string { return FromValue(v).Resolve(lang) }

// Bilingual builds the persisted {id, en} map. An empty en takes the id value.
func Bilingual(id, en string) map[string]any {
	if en == "" {
		en = id
	}
	return map[string]any{string(ID): id, string(EN): en}
}

// Split returns both sides of a stored value for prefilling a form.
// A plain string is treated as the id side.
func Split(v any) (id, en string) {
	t := FromValue(v)
	switch t.Kind {
	case Plain:
		return t.S, ""
	case Localized:
		return t.IDs, t.ENs
	}
	return "", ""
}
