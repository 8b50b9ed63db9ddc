// Package catalog supplies the static category and difficulty data the
// engine runs on. Categories carry subcategory examples used as
// generator hints; hint selection prefers examples the process has not
// handed out yet.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"guessquest/internal/models"
)

//go:embed categories.json difficulties.json
var dataFS embed.FS

// DefaultDifficulty is used when a request names no difficulty or an
// unknown one.
const DefaultDifficulty = "normal"

// Catalog is the loaded category and difficulty data plus the
// per-process hint usage counts.
type Catalog struct {
	categories   []models.Category
	difficulties map[string]models.Difficulty
	ordered      []models.Difficulty

	mu    sync.Mutex
	usage map[string]map[string]int // category -> example -> times used
	rng   *rand.Rand
}

// Load parses the embedded catalog data. A nil rng falls back to the
// global random source.
func Load(rng *rand.Rand) (*Catalog, error) {
	c := &Catalog{
		difficulties: make(map[string]models.Difficulty),
		usage:        make(map[string]map[string]int),
		rng:          rng,
	}

	raw, err := dataFS.ReadFile("categories.json")
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	var catDoc struct {
		Categories []models.Category `json:"categories"`
	}
	if err := json.Unmarshal(raw, &catDoc); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if len(catDoc.Categories) == 0 {
		return nil, fmt.Errorf("categories.json contains no categories")
	}
	c.categories = catDoc.Categories

	raw, err = dataFS.ReadFile("difficulties.json")
	if err != nil {
		return nil, fmt.Errorf("read difficulties: %w", err)
	}
	var diffDoc struct {
		Levels []models.Difficulty `json:"difficulty_levels"`
	}
	if err := json.Unmarshal(raw, &diffDoc); err != nil {
		return nil, fmt.Errorf("parse difficulties: %w", err)
	}
	for _, d := range diffDoc.Levels {
		c.difficulties[d.Name] = d
	}
	c.ordered = diffDoc.Levels
	if _, ok := c.difficulties[DefaultDifficulty]; !ok {
		return nil, fmt.Errorf("difficulties.json missing %q level", DefaultDifficulty)
	}

	return c, nil
}

// Categories returns all catalog categories.
func (c *Catalog) Categories() []models.Category {
	return c.categories
}

// Difficulties returns the difficulty levels in catalog order.
func (c *Catalog) Difficulties() []models.Difficulty {
	return c.ordered
}

// Difficulty resolves a difficulty by name, falling back to the
// default level for empty or unknown names.
func (c *Catalog) Difficulty(name string) models.Difficulty {
	if d, ok := c.difficulties[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d
	}
	return c.difficulties[DefaultDifficulty]
}

// Find looks a category up by name, case-insensitively.
func (c *Catalog) Find(name string) (models.Category, bool) {
	for _, cat := range c.categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return models.Category{}, false
}

// RandomCategory picks any catalog category.
func (c *Catalog) RandomCategory() models.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categories[c.intn(len(c.categories))]
}

// HintFor selects a subcategory hint for a category. Unused examples
// are preferred; once every example has been handed out the least-used
// one wins. Returns "" for unknown categories or ones without
// examples.
func (c *Catalog) HintFor(categoryName string) string {
	cat, ok := c.Find(categoryName)
	if !ok || len(cat.Examples) == 0 {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	counts := c.usage[cat.Name]
	if counts == nil {
		counts = make(map[string]int)
		c.usage[cat.Name] = counts
	}

	var unused []string
	for _, ex := range cat.Examples {
		if counts[ex] == 0 {
			unused = append(unused, ex)
		}
	}

	var hint string
	if len(unused) > 0 {
		hint = unused[c.intn(len(unused))]
	} else {
		min := -1
		var leastUsed []string
		for _, ex := range cat.Examples {
			switch n := counts[ex]; {
			case min == -1 || n < min:
				min = n
				leastUsed = []string{ex}
			case n == min:
				leastUsed = append(leastUsed, ex)
			}
		}
		hint = leastUsed[c.intn(len(leastUsed))]
	}

	counts[hint]++
	return hint
}

func (c *Catalog) intn(n int) int {
	if c.rng != nil {
		return c.rng.Intn(n)
	}
	return rand.Intn(n)
}
