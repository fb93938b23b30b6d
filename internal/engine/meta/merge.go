package meta

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/textmodel/piecetree/internal/engine/piece"
)

// Merge deep-merges sourceJSON onto targetJSON and returns the merged
// document together with forward and inverse patch lists. Both
// arguments, and the result, are JSON object text; operating on text
// rather than Go maps lets the walk visit keys in the source
// document's actual order, which is what makes patch emission
// deterministic (Go map iteration order is not, and is not usable for
// this).
//
// Determinism rule: within an object, nested objects are walked fully
// (recursively) before the enclosing object's scalar keys are
// compared, and siblings within each group are visited in the source
// document's key order.
func Merge(targetJSON, sourceJSON string) (mergedJSON string, forward, inverse []Patch, err error) {
	if strings.TrimSpace(targetJSON) == "" {
		targetJSON = "{}"
	}
	if !gjson.Valid(targetJSON) {
		return "", nil, nil, fmt.Errorf("meta: invalid target JSON")
	}
	if !gjson.Valid(sourceJSON) {
		return "", nil, nil, fmt.Errorf("meta: invalid source JSON")
	}
	src := gjson.Parse(sourceJSON)
	if !src.IsObject() {
		return "", nil, nil, fmt.Errorf("meta: source must be a JSON object")
	}
	merged, fwd, inv := mergeObject(targetJSON, nil, src)
	return merged, fwd, inv, nil
}

// MergeValues is the map[string]any convenience form of Merge, used by
// the mutation engine to merge a format call's meta into a piece's
// Meta. Because piece.Meta is a plain Go map, key order is not
// preserved across this boundary: values are marshalled with
// encoding/json's (sorted-key) object encoding before the
// order-sensitive walk in Merge runs on the resulting JSON text. Exact
// insertion-order determinism is only guaranteed when calling Merge
// directly on JSON text built in the desired order (see
// merge_test.go's table-driven case mirroring the scenario spec).
// The merged map is decoded from that JSON text, so every number in
// it comes back as float64, whatever Go type the caller passed in.
func MergeValues(target, source piece.Meta) (merged piece.Meta, forward, inverse []Patch, err error) {
	targetJSON, err := marshalMeta(target)
	if err != nil {
		return nil, nil, nil, err
	}
	sourceJSON, err := marshalMeta(source)
	if err != nil {
		return nil, nil, nil, err
	}
	mergedJSON, fwd, inv, err := Merge(targetJSON, sourceJSON)
	if err != nil {
		return nil, nil, nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(mergedJSON), &out); err != nil {
		return nil, nil, nil, fmt.Errorf("meta: decode merged document: %w", err)
	}
	return piece.Meta(out), fwd, inv, nil
}

func marshalMeta(m piece.Meta) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return "", fmt.Errorf("meta: encode document: %w", err)
	}
	return string(b), nil
}

func mergeObject(merged string, path []string, src gjson.Result) (string, []Patch, []Patch) {
	var objKeys, scalarKeys []string
	objVals := map[string]gjson.Result{}
	scalarVals := map[string]gjson.Result{}

	src.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if value.IsObject() {
			objKeys = append(objKeys, k)
			objVals[k] = value
		} else {
			scalarKeys = append(scalarKeys, k)
			scalarVals[k] = value
		}
		return true
	})

	var forward, inverse []Patch

	for _, k := range objKeys {
		childPath := appendPath(path, k)
		dotted := dottedPath(childPath)
		cur := gjson.Get(merged, dotted)
		if !cur.Exists() {
			merged, _ = sjson.SetRaw(merged, dotted, objVals[k].Raw)
			forward = append(forward, Patch{Op: OpAdd, Path: childPath, Value: objVals[k].Value()})
			inverse = append(inverse, Patch{Op: OpRemove, Path: childPath})
			continue
		}
		var f, inv []Patch
		merged, f, inv = mergeObject(merged, childPath, objVals[k])
		forward = append(forward, f...)
		inverse = append(inverse, inv...)
	}

	for _, k := range scalarKeys {
		childPath := appendPath(path, k)
		dotted := dottedPath(childPath)
		cur := gjson.Get(merged, dotted)
		newVal := scalarVals[k]
		if !cur.Exists() {
			merged, _ = sjson.Set(merged, dotted, newVal.Value())
			forward = append(forward, Patch{Op: OpAdd, Path: childPath, Value: newVal.Value()})
			inverse = append(inverse, Patch{Op: OpRemove, Path: childPath})
			continue
		}
		if reflect.DeepEqual(cur.Value(), newVal.Value()) {
			continue
		}
		oldVal := cur.Value()
		merged, _ = sjson.Set(merged, dotted, newVal.Value())
		forward = append(forward, Patch{Op: OpReplace, Path: childPath, Value: newVal.Value()})
		inverse = append(inverse, Patch{Op: OpReplace, Path: childPath, Value: oldVal})
	}

	return merged, forward, inverse
}

func appendPath(path []string, k string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = k
	return out
}

func dottedPath(path []string) string {
	return strings.Join(path, ".")
}
