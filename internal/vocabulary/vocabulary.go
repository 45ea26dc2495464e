// Package vocabulary loads keyword vocabularies for the insight extractors
// from TOML files.
//
// A file replaces any of the built-in vocabularies by name:
//
//	version = 1
//
//	[[vocabulary]]
//	name = "foods"
//	mode = "word"
//	keywords = ["tofu", "lentils", "salmon"]
//
// Vocabularies not named in the file keep their built-in keywords.
package vocabulary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

var (
	// ErrUnsupportedVersion is returned for a file or vocabulary version this
	// build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported vocabulary version")

	// ErrInvalidVocabulary is returned for malformed vocabulary entries.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")
)

// File is the decoded form of a vocabulary file.
type File struct {
	Version      int                  `toml:"version"`
	Vocabularies []insight.Vocabulary `toml:"vocabulary"`
}

// Parse decodes and validates a vocabulary document.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidVocabulary, strings.Join(keys, ", "))
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and validates the vocabulary file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Load reads path and applies it on top of base.
func Load(path string, base insight.Lexicon) (insight.Lexicon, error) {
	f, err := LoadFile(path)
	if err != nil {
		return base, err
	}
	return f.Apply(base)
}

// normalize fills defaults and rejects entries the extractors cannot use.
func (f *File) normalize() error {
	if f.Version == 0 {
		f.Version = insight.LexiconVersion
	}
	if f.Version != insight.LexiconVersion {
		return fmt.Errorf("%w: file version %d (want %d)", ErrUnsupportedVersion, f.Version, insight.LexiconVersion)
	}

	known := insight.DefaultLexicon().Vocabularies()
	seen := make(map[string]bool, len(f.Vocabularies))
	for i := range f.Vocabularies {
		v := &f.Vocabularies[i]
		v.Name = strings.TrimSpace(v.Name)

		idx := slices.IndexFunc(known, func(k insight.Vocabulary) bool { return k.Name == v.Name })
		if idx < 0 {
			return fmt.Errorf("%w: unknown vocabulary %q", ErrInvalidVocabulary, v.Name)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: vocabulary %q defined twice", ErrInvalidVocabulary, v.Name)
		}
		seen[v.Name] = true

		if v.Version == 0 {
			v.Version = f.Version
		}
		if v.Version != insight.LexiconVersion {
			return fmt.Errorf("%w: vocabulary %q version %d", ErrUnsupportedVersion, v.Name, v.Version)
		}

		switch v.Mode {
		case "":
			v.Mode = known[idx].Mode
		case insight.MatchSubstring, insight.MatchWord:
		default:
			return fmt.Errorf("%w: vocabulary %q has unknown mode %q", ErrInvalidVocabulary, v.Name, v.Mode)
		}

		keywords := make([]string, 0, len(v.Keywords))
		for _, kw := range v.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && !slices.Contains(keywords, kw) {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return fmt.Errorf("%w: vocabulary %q has no keywords", ErrInvalidVocabulary, v.Name)
		}
		v.Keywords = keywords
	}
	return nil
}

// Apply returns base with every vocabulary in f substituted.
func (f *File) Apply(base insight.Lexicon) (insight.Lexicon, error) {
	lex := base
	for _, v := range f.Vocabularies {
		next, ok := lex.With(v)
		if !ok {
			return base, fmt.Errorf("%w: unknown vocabulary %q", ErrInvalidVocabulary, v.Name)
		}
		lex = next
	}
	return lex, nil
}

// Names lists the vocabularies the file overrides, in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Vocabularies))
	for i, v := range f.Vocabularies {
		names[i] = v.Name
	}
	return names
}

// Write encodes every vocabulary of lex as a vocabulary file.
func Write(w io.Writer, lex insight.Lexicon) error {
	f := File{Version: insight.LexiconVersion, Vocabularies: lex.Vocabularies()}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("encoding vocabulary: %w", err)
	}
	return nil
}
