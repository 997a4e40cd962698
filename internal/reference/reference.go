// Package reference holds the static state and program catalog packages are
// validated against. The catalog ships with the binary; states cannot edit it.
package reference

import (
	"encoding/json"
	"fmt"
	"sort"

	_ "embed"
)

//go:embed states.json
var statesJSON []byte

type Program struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsRateProgram bool   `json:"isRateProgram"`
}

type State struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Programs []Program `json:"programs"`
}

// Catalog is a read-only lookup over the embedded state data. Callers hold a
// *Catalog handed to them at construction instead of reaching for package
// state.
type Catalog struct {
	byCode map[string]State
}

// LoadCatalog parses the embedded state data into a Catalog.
func LoadCatalog() (*Catalog, error) {
	var doc struct {
		States []State `json:"states"`
	}
	if err := json.Unmarshal(statesJSON, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded state catalog: %w", err)
	}
	byCode := make(map[string]State, len(doc.States))
	for _, st := range doc.States {
		byCode[st.Code] = st
	}
	return &Catalog{byCode: byCode}, nil
}

// StateByCode looks a state up in the catalog.
func (c *Catalog) StateByCode(code string) (State, bool) {
	st, ok := c.byCode[code]
	return st, ok
}

// StateCodes returns every catalog state code, sorted.
func (c *Catalog) StateCodes() []string {
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FindStatePrograms resolves program IDs against a state's catalog entry,
// failing on any ID the state does not have.
func (c *Catalog) FindStatePrograms(stateCode string, programIDs []string) ([]Program, error) {
	st, ok := c.byCode[stateCode]
	if !ok {
		return nil, fmt.Errorf("unknown state code %q", stateCode)
	}
	byID := make(map[string]Program, len(st.Programs))
	for _, p := range st.Programs {
		byID[p.ID] = p
	}
	programs := make([]Program, 0, len(programIDs))
	for _, id := range programIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("state %s has no program %q", stateCode, id)
		}
		programs = append(programs, p)
	}
	return programs, nil
}
