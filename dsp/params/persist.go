package params

import (
	"strconv"
	"strings"

	"github.com/cwbudde/algo-fxrack/dsp/state"
)

// Save writes every created block's values into tree under their ParamIDs.
func (s *Store) Save(tree *state.Tree) {
	for _, b := range s.Blocks() {
		for i, spec := range b.layout {
			tree.SetFloat(b.ParamID(spec.Name), b.Get(i))
		}
	}
}

// Load applies every recognised value in tree, creating blocks as needed.
// Keys that do not parse or name an unknown kind or parameter are skipped;
// the number of applied values is returned.
func (s *Store) Load(tree *state.Tree) int {
	applied := 0

	for _, key := range tree.FloatKeys() {
		kind, index, name, ok := parseParamID(key)
		if !ok {
			continue
		}

		b, err := s.Block(kind, index)
		if err != nil {
			continue
		}

		v, _ := tree.Float(key)
		if b.SetValue(name, v) == nil {
			applied++
		}
	}

	return applied
}

func parseParamID(id string) (string, int, string, bool) {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 {
		return "", 0, "", false
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", false
	}

	return parts[0], index, parts[2], true
}
