package meta

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/textmodel/piecetree/internal/engine/piece"
)

// Apply replays patches against docJSON in order and returns the
// resulting document. Used by property tests to check
// apply(inversePatches, apply(forwardPatches, target)) == target, and
// available to any consumer that keeps its metadata as JSON text
// rather than going through MergeValues/ApplyValues.
func Apply(docJSON string, patches []Patch) (string, error) {
	doc := docJSON
	if doc == "" {
		doc = "{}"
	}
	for _, p := range patches {
		dotted := dottedPath(p.Path)
		switch p.Op {
		case OpRemove:
			var err error
			doc, err = sjson.Delete(doc, dotted)
			if err != nil {
				return "", fmt.Errorf("meta: apply remove %v: %w", p.Path, err)
			}
		case OpAdd, OpReplace:
			var err error
			doc, err = sjson.Set(doc, dotted, p.Value)
			if err != nil {
				return "", fmt.Errorf("meta: apply %s %v: %w", p.Op, p.Path, err)
			}
		default:
			return "", fmt.Errorf("meta: unknown op %q", p.Op)
		}
	}
	return doc, nil
}

// ApplyValues is Apply's piece.Meta form: it walks the map directly,
// one path segment at a time, rather than round-tripping through JSON
// text. Patch paths navigate an in-memory map[string]any here, not a
// JSON document, so gjson/sjson's text-oriented API has nothing to
// offer this function; it is the one place in this package built on
// plain map manipulation rather than the JSON-text merge machinery
// above.
func ApplyValues(m piece.Meta, patches []Patch) (piece.Meta, error) {
	root := map[string]any(m.Clone())
	if root == nil {
		root = map[string]any{}
	}
	for _, p := range patches {
		if len(p.Path) == 0 {
			return nil, fmt.Errorf("meta: empty patch path")
		}
		switch p.Op {
		case OpRemove:
			if err := removeAt(root, p.Path); err != nil {
				return nil, err
			}
		case OpAdd, OpReplace:
			if err := setAt(root, p.Path, p.Value); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("meta: unknown op %q", p.Op)
		}
	}
	return piece.Meta(root), nil
}

func setAt(root map[string]any, path []string, value any) error {
	m, err := walkToParent(root, path)
	if err != nil {
		return err
	}
	m[path[len(path)-1]] = value
	return nil
}

func removeAt(root map[string]any, path []string) error {
	m, err := walkToParent(root, path)
	if err != nil {
		return err
	}
	delete(m, path[len(path)-1])
	return nil
}

func walkToParent(root map[string]any, path []string) (map[string]any, error) {
	m := root
	for _, k := range path[:len(path)-1] {
		next, ok := m[k]
		if !ok {
			child := map[string]any{}
			m[k] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("meta: path segment %q is not an object", k)
		}
		m = child
	}
	return m, nil
}
