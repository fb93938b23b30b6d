package meta

import (
	"encoding/json"
	"reflect"
	"testing"
	"testing/quick"
)

func TestMergeScenario(t *testing.T) {
	target := `{"age":10,"obj":{"color":10}}`
	source := `{"age":11,"obj":{"color":11,"ss":10}}`

	merged, forward, inverse, err := Merge(target, source)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var mergedVal map[string]any
	if err := json.Unmarshal([]byte(merged), &mergedVal); err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	wantMerged := map[string]any{
		"age": float64(11),
		"obj": map[string]any{"color": float64(11), "ss": float64(10)},
	}
	if !reflect.DeepEqual(mergedVal, wantMerged) {
		t.Fatalf("merged = %v, want %v", mergedVal, wantMerged)
	}

	wantForward := []Patch{
		{Op: OpReplace, Path: []string{"obj", "color"}, Value: float64(11)},
		{Op: OpAdd, Path: []string{"obj", "ss"}, Value: float64(10)},
		{Op: OpReplace, Path: []string{"age"}, Value: float64(11)},
	}
	if !reflect.DeepEqual(forward, wantForward) {
		t.Fatalf("forward = %+v, want %+v", forward, wantForward)
	}

	wantInverse := []Patch{
		{Op: OpReplace, Path: []string{"obj", "color"}, Value: float64(10)},
		{Op: OpRemove, Path: []string{"obj", "ss"}},
		{Op: OpReplace, Path: []string{"age"}, Value: float64(10)},
	}
	if !reflect.DeepEqual(inverse, wantInverse) {
		t.Fatalf("inverse = %+v, want %+v", inverse, wantInverse)
	}
}

func TestMergeEqualValueProducesNoPatch(t *testing.T) {
	_, forward, inverse, err := Merge(`{"a":1}`, `{"a":1}`)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(forward) != 0 || len(inverse) != 0 {
		t.Fatalf("expected no patches, got forward=%v inverse=%v", forward, inverse)
	}
}

func TestMergeRoundTrip(t *testing.T) {
	target := `{"age":10,"obj":{"color":10}}`
	source := `{"age":11,"obj":{"color":11,"ss":10}}`

	merged, forward, inverse, err := Merge(target, source)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	_ = forward

	restored, err := Apply(merged, inverse)
	if err != nil {
		t.Fatalf("Apply inverse: %v", err)
	}

	var restoredVal, targetVal map[string]any
	json.Unmarshal([]byte(restored), &restoredVal)
	json.Unmarshal([]byte(target), &targetVal)
	if !reflect.DeepEqual(restoredVal, targetVal) {
		t.Fatalf("round trip mismatch: got %v, want %v", restoredVal, targetVal)
	}
}

// TestQuickMergeRoundTrip is property 6 ("meta-merge round-trip") as a
// quick.Check property over randomly generated flat string-keyed
// integer documents.
func TestQuickMergeRoundTrip(t *testing.T) {
	f := func(targetKV, sourceKV map[string]int8) bool {
		target := flatDoc(targetKV)
		source := flatDoc(sourceKV)

		merged, _, inverse, err := Merge(target, source)
		if err != nil {
			return false
		}
		restored, err := Apply(merged, inverse)
		if err != nil {
			return false
		}

		var restoredVal, targetVal map[string]any
		if err := json.Unmarshal([]byte(restored), &restoredVal); err != nil {
			return false
		}
		if err := json.Unmarshal([]byte(target), &targetVal); err != nil {
			return false
		}
		return reflect.DeepEqual(normalize(restoredVal), normalize(targetVal))
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}

func flatDoc(kv map[string]int8) string {
	doc, _ := json.Marshal(kv)
	if len(doc) == 0 {
		return "{}"
	}
	return string(doc)
}

// normalize replaces a nil map (from an empty JSON object "{}") with
// an empty map so reflect.DeepEqual treats both as equivalent.
func normalize(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func TestApplyValuesAddReplaceRemove(t *testing.T) {
	m := map[string]any{"age": float64(10), "obj": map[string]any{"color": float64(10)}}
	patches := []Patch{
		{Op: OpReplace, Path: []string{"obj", "color"}, Value: float64(11)},
		{Op: OpAdd, Path: []string{"obj", "ss"}, Value: float64(10)},
		{Op: OpReplace, Path: []string{"age"}, Value: float64(11)},
	}
	out, err := ApplyValues(m, patches)
	if err != nil {
		t.Fatalf("ApplyValues: %v", err)
	}
	want := map[string]any{"age": float64(11), "obj": map[string]any{"color": float64(11), "ss": float64(10)}}
	if !reflect.DeepEqual(map[string]any(out), want) {
		t.Fatalf("ApplyValues = %v, want %v", out, want)
	}

	undone, err := ApplyValues(out, []Patch{
		{Op: OpReplace, Path: []string{"obj", "color"}, Value: float64(10)},
		{Op: OpRemove, Path: []string{"obj", "ss"}},
		{Op: OpReplace, Path: []string{"age"}, Value: float64(10)},
	})
	if err != nil {
		t.Fatalf("ApplyValues inverse: %v", err)
	}
	if !reflect.DeepEqual(map[string]any(undone), m) {
		t.Fatalf("ApplyValues inverse = %v, want %v", undone, m)
	}
}
