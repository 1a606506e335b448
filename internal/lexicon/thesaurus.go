package lexicon

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Thesaurus is a static synonym table loaded from YAML:
//
//	bear: [endure, tolerate, put_up]
//	joke: [gag, jest]
//
// Lookups are case-insensitive. Relations are symmetric: listing tolerate
// under bear also makes bear a synonym of tolerate.
type Thesaurus struct {
	entries map[string][]string
}

func LoadThesaurus(path string) (*Thesaurus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening thesaurus %s: %w", path, err)
	}
	defer f.Close()
	t, err := ParseThesaurus(f)
	if err != nil {
		return nil, fmt.Errorf("parsing thesaurus %s: %w", path, err)
	}
	return t, nil
}

func ParseThesaurus(r io.Reader) (*Thesaurus, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, err
	}
	t := &Thesaurus{entries: make(map[string][]string, len(raw))}
	for word, syns := range raw {
		for _, syn := range syns {
			t.add(word, syn)
			t.add(syn, word)
		}
	}
	return t, nil
}

func (t *Thesaurus) add(word, syn string) {
	key := strings.ToLower(strings.TrimSpace(word))
	syn = strings.TrimSpace(syn)
	if key == "" || syn == "" || strings.EqualFold(key, syn) {
		return
	}
	for _, existing := range t.entries[key] {
		if strings.EqualFold(existing, syn) {
			return
		}
	}
	t.entries[key] = append(t.entries[key], syn)
}

// Lookup returns the synonyms of token, or nil if it is unknown.
func (t *Thesaurus) Lookup(_ context.Context, token string) ([]string, error) {
	syns := t.entries[strings.ToLower(token)]
	if len(syns) == 0 {
		return nil, nil
	}
	return append([]string(nil), syns...), nil
}
