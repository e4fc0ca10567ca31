package sign

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
)

// Well-known classification keys shared by the classifiers and the
// built-in dictionary tables. Keys are stable identifiers; the dictionary
// decides what they display as in each language.
const (
	KeyLetterA  = "letter_a"
	KeyLetterB  = "letter_b"
	KeyLetterD  = "letter_d"
	KeyLetterV  = "letter_v"
	KeyLetterY  = "letter_y"
	KeyGreeting = "greeting_hello"
	KeyThanks   = "thanks"
	KeyYes      = "word_yes"
	KeyNo       = "word_no"
)

// SupportedLanguages lists the sign languages with built-in dictionaries,
// in stable order.
var SupportedLanguages = []string{"asl", "bsl", "lsf"}

// Entry describes one dictionary sign: its display value, category and the
// base confidence assigned when the entry is produced by a rule.
type Entry struct {
	Value          string  `json:"value"`
	Type           Type    `json:"type"`
	BaseConfidence float64 `json:"base_confidence"`
}

// Dictionary maps internal classification keys to displayable signs for
// one language. It is populated once and read-only afterwards; lookups are
// O(1) and the key ordering is deterministic so that a model output index
// can be mapped positionally onto it.
type Dictionary struct {
	language string
	entries  map[string]Entry
	keys     []string
}

// NewDictionary builds the dictionary for the given language from the
// built-in tables. Returns an error for unsupported languages.
func NewDictionary(lang string) (*Dictionary, error) {
	table, ok := builtinTables[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}

	d := &Dictionary{
		language: lang,
		entries:  make(map[string]Entry, len(table)),
	}
	for key, entry := range table {
		d.entries[key] = entry
	}
	d.rebuildKeys()
	return d, nil
}

// Language returns the dictionary's language code.
func (d *Dictionary) Language() string {
	return d.language
}

// Lookup returns the entry for the given key.
func (d *Dictionary) Lookup(key string) (Entry, bool) {
	entry, ok := d.entries[key]
	return entry, ok
}

// Keys returns the dictionary keys in deterministic (sorted) order.
func (d *Dictionary) Keys() []string {
	return d.keys
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Put adds or replaces an entry. Used at initialization time to layer
// custom entries from the store over the built-in table; never called
// during a running session.
func (d *Dictionary) Put(key string, entry Entry) {
	_, existed := d.entries[key]
	d.entries[key] = entry
	if !existed {
		d.rebuildKeys()
	}
}

func (d *Dictionary) rebuildKeys() {
	d.keys = make([]string, 0, len(d.entries))
	for key := range d.entries {
		d.keys = append(d.keys, key)
	}
	sort.Strings(d.keys)
}

// IsSupported reports whether a built-in dictionary exists for the
// language code.
func IsSupported(lang string) bool {
	_, ok := builtinTables[lang]
	return ok
}

// SpokenTag returns the spoken-language hint for announcing signs of the
// given sign language, for use by the text-to-speech collaborator.
func SpokenTag(lang string) language.Tag {
	switch lang {
	case "asl":
		return language.AmericanEnglish
	case "bsl":
		return language.BritishEnglish
	case "lsf":
		return language.French
	default:
		return language.English
	}
}

// builtinTables holds the static per-language dictionaries. Dictionaries
// for different languages are never merged; the active language selects
// which one is consulted at classification time.
var builtinTables = map[string]map[string]Entry{
	"asl": {
		KeyLetterA:  {Value: "A", Type: TypeAlphabet, BaseConfidence: 0.80},
		KeyLetterB:  {Value: "B", Type: TypeAlphabet, BaseConfidence: 0.75},
		KeyLetterD:  {Value: "D", Type: TypeAlphabet, BaseConfidence: 0.72},
		KeyLetterV:  {Value: "V", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyLetterY:  {Value: "Y", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyGreeting: {Value: "Hello", Type: TypeWord, BaseConfidence: 0.75},
		KeyThanks:   {Value: "Thank you", Type: TypePhrase, BaseConfidence: 0.70},
		KeyYes:      {Value: "Yes", Type: TypeWord, BaseConfidence: 0.70},
		KeyNo:       {Value: "No", Type: TypeWord, BaseConfidence: 0.70},
	},
	"bsl": {
		KeyLetterA:  {Value: "A", Type: TypeAlphabet, BaseConfidence: 0.80},
		KeyLetterB:  {Value: "B", Type: TypeAlphabet, BaseConfidence: 0.75},
		KeyLetterD:  {Value: "D", Type: TypeAlphabet, BaseConfidence: 0.72},
		KeyLetterV:  {Value: "V", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyLetterY:  {Value: "Y", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyGreeting: {Value: "Hello", Type: TypeWord, BaseConfidence: 0.75},
		KeyThanks:   {Value: "Thank you", Type: TypePhrase, BaseConfidence: 0.70},
		KeyYes:      {Value: "Yes", Type: TypeWord, BaseConfidence: 0.70},
		KeyNo:       {Value: "No", Type: TypeWord, BaseConfidence: 0.70},
	},
	"lsf": {
		KeyLetterA:  {Value: "A", Type: TypeAlphabet, BaseConfidence: 0.80},
		KeyLetterB:  {Value: "B", Type: TypeAlphabet, BaseConfidence: 0.75},
		KeyLetterD:  {Value: "D", Type: TypeAlphabet, BaseConfidence: 0.72},
		KeyLetterV:  {Value: "V", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyLetterY:  {Value: "Y", Type: TypeAlphabet, BaseConfidence: 0.70},
		KeyGreeting: {Value: "Bonjour", Type: TypeWord, BaseConfidence: 0.75},
		KeyThanks:   {Value: "Merci", Type: TypePhrase, BaseConfidence: 0.70},
		KeyYes:      {Value: "Oui", Type: TypeWord, BaseConfidence: 0.70},
		KeyNo:       {Value: "Non", Type: TypeWord, BaseConfidence: 0.70},
	},
}
