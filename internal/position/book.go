// Package position loads the holdings book that overlays strategy
// rules on watched instruments. The book is a JSON file edited by
// hand; a broken entry fails the whole load so a typo'd strategy tag
// cannot silently fall back to generic rules.
package position

import (
	"encoding/json"
	"fmt"
	"os"

	"stockwatch/internal/fetch"
	"stockwatch/internal/model"
)

type entry struct {
	Code      string  `json:"code"`
	CostBasis float64 `json:"cost_basis"`
	Size      float64 `json:"size"`
	Strategy  string  `json:"strategy"`
}

// Book maps normalized instrument codes to positions.
type Book struct {
	positions map[string]*model.Position
}

// Load reads the positions file. Codes are normalized, so "600519" in
// the file matches "sh600519" on the watchlist.
func Load(path string) (*Book, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("position: read %s: %w", path, err)
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("position: parse %s: %w", path, err)
	}

	book := &Book{positions: make(map[string]*model.Position, len(entries))}
	for i, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("position: entry %d: missing code", i)
		}
		strat, err := model.ParseStrategy(e.Strategy)
		if err != nil {
			return nil, fmt.Errorf("position: entry %d (%s): %w", i, e.Code, err)
		}
		code := fetch.NormalizeCode(e.Code)
		book.positions[code] = &model.Position{
			Code:      code,
			CostBasis: e.CostBasis,
			Size:      e.Size,
			Strategy:  strat,
		}
	}
	return book, nil
}

// Empty returns a book with no positions.
func Empty() *Book {
	return &Book{positions: make(map[string]*model.Position)}
}

// Get returns the position for a normalized code, or nil.
func (b *Book) Get(code string) *model.Position {
	return b.positions[code]
}

// Len returns the number of positions held.
func (b *Book) Len() int {
	return len(b.positions)
}
