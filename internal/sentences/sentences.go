// Package sentences supplies the target sentences for typing races.
package sentences

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
)

//go:generate mockgen -destination=mocks/mock_source.go -package=mocks github.com/DoyleJ11/partyroom-backend/internal/sentences Source

var ErrEmpty = errors.New("sentence catalogue is empty")

// Source picks the sentence for the next round, avoiding excludeID when it can.
type Source interface {
	Pick(excludeID string) (engine.Sentence, error)
}

//go:embed sentences.yaml
var defaultCatalogue []byte

// Separators shown between words of the display text so it cannot be pasted back verbatim.
var Separators = []string{"·", "•", "∘", "¦"}

type entry struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

type Catalogue struct {
	mu      sync.Mutex
	entries []entry
	rng     *rand.Rand
}

func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue, nil)
}

// Parse reads a yaml catalogue. A nil rng uses a randomly seeded one.
func Parse(data []byte, rng *rand.Rand) (*Catalogue, error) {
	var doc struct {
		Sentences []entry `yaml:"sentences"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sentences: %w", err)
	}

	seen := map[string]bool{}
	entries := make([]entry, 0, len(doc.Sentences))
	for _, e := range doc.Sentences {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" {
			continue
		}
		if e.ID == "" || seen[e.ID] {
			return nil, fmt.Errorf("parse sentences: missing or duplicate id %q", e.ID)
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Catalogue{entries: entries, rng: rng}, nil
}

func (c *Catalogue) Len() int { return len(c.entries) }

// Pick falls back to the first sentence when excludeID is the only one.
func (c *Catalogue) Pick(excludeID string) (engine.Sentence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.ID != excludeID {
			candidates = append(candidates, e)
		}
	}
	chosen := c.entries[0]
	if len(candidates) > 0 {
		chosen = candidates[c.rng.IntN(len(candidates))]
	}
	sep := Separators[c.rng.IntN(len(Separators))]

	return engine.Sentence{
		ID:          chosen.ID,
		Text:        chosen.Text,
		DisplayText: Decorate(chosen.Text, sep),
	}, nil
}

func Decorate(text, sep string) string {
	return strings.Join(strings.Split(text, " "), " "+sep+" ")
}
