package quotes

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/wolfman30/sports-travel-platform/internal/money"
)

// Adjustment is a named, signed price modifier. Percentage applies to the
// running total; Value is an absolute rupee delta. Either may be zero.
type Adjustment struct {
	Percentage money.Amount `json:"percentage"`
	Value      money.Amount `json:"value"`
}

// Adjustments maps adjustment names to modifiers in insertion order. The
// order is the order prices are computed in and is kept through JSON.
// The zero value is an empty set.
type Adjustments struct {
	m *orderedmap.OrderedMap[string, Adjustment]
}

// NewAdjustments returns an empty set.
func NewAdjustments() Adjustments {
	return Adjustments{m: orderedmap.New[string, Adjustment]()}
}

func (a *Adjustments) ensure() {
	if a.m == nil {
		a.m = orderedmap.New[string, Adjustment]()
	}
}

// Set adds or replaces name. Replacing keeps the original position.
func (a *Adjustments) Set(name string, adj Adjustment) {
	a.ensure()
	a.m.Set(name, adj)
}

func (a Adjustments) Get(name string) (Adjustment, bool) {
	if a.m == nil {
		return Adjustment{}, false
	}
	return a.m.Get(name)
}

// Delete removes name and reports whether it was present.
func (a *Adjustments) Delete(name string) bool {
	if a.m == nil {
		return false
	}
	_, ok := a.m.Delete(name)
	return ok
}

func (a Adjustments) Len() int {
	if a.m == nil {
		return 0
	}
	return a.m.Len()
}

// Each visits entries in insertion order until fn returns false.
func (a Adjustments) Each(fn func(name string, adj Adjustment) bool) {
	if a.m == nil {
		return
	}
	for pair := a.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Names returns the adjustment names in insertion order.
func (a Adjustments) Names() []string {
	names := make([]string, 0, a.Len())
	a.Each(func(name string, _ Adjustment) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Clone returns an independent copy.
func (a Adjustments) Clone() Adjustments {
	out := NewAdjustments()
	a.Each(func(name string, adj Adjustment) bool {
		out.m.Set(name, adj)
		return true
	})
	return out
}

// Equal reports whether both sets hold the same entries in the same order.
func (a Adjustments) Equal(b Adjustments) bool {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return false
	}
	for i, name := range an {
		if bn[i] != name {
			return false
		}
		x, _ := a.Get(name)
		y, _ := b.Get(name)
		if !x.Percentage.Equal(y.Percentage) || !x.Value.Equal(y.Value) {
			return false
		}
	}
	return true
}

func (a Adjustments) MarshalJSON() ([]byte, error) {
	if a.m == nil || a.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return a.m.MarshalJSON()
}

// UnmarshalJSON keeps the key order of the JSON object. null decodes as empty.
func (a *Adjustments) UnmarshalJSON(data []byte) error {
	a.m = orderedmap.New[string, Adjustment]()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := a.m.UnmarshalJSON(trimmed); err != nil {
		return fmt.Errorf("quotes: decode adjustments: %w", err)
	}
	return nil
}

// encode renders adjustments for a json (not jsonb) column, which keeps key order.
func (a Adjustments) encode() (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("quotes: encode adjustments: %w", err)
	}
	return string(raw), nil
}

func decodeAdjustments(raw []byte) (Adjustments, error) {
	var a Adjustments
	if err := a.UnmarshalJSON(raw); err != nil {
		return Adjustments{}, err
	}
	return a, nil
}
