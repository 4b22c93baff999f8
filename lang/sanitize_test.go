package lang

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		depth int
		want  any
	}{
		{"nil", nil, 1, nil},
		{"string", "<b>a+b</b>", 1, Escaped("a" + sentinelPlus + "b")},
		{"number", 42, 1, 42},
		{"bool", true, 1, true},
		{
			"mapping within depth",
			map[string]any{"name": "{Bo}", "n": 1.5},
			1,
			Sanitized{"name": Escaped(sentinelLBrace + "Bo" + sentinelRBrace), "n": 1.5},
		},
		{
			"mapping beyond depth",
			map[string]any{"inner": map[string]any{"k": "v"}},
			0,
			Sanitized{"inner": Unexpanded{}},
		},
		{
			"nested mapping at depth one",
			map[string]any{"inner": map[string]any{"k": "v"}},
			1,
			Sanitized{"inner": Sanitized{"k": Unexpanded{}}},
		},
		{
			"sequence keeps depth",
			[]any{map[string]any{"k": "v"}, "x]"},
			1,
			[]any{Sanitized{"k": Escaped("v")}, Escaped("x" + sentinelRBrack)},
		},
		{
			"typed slice",
			[]string{"a", "b+"},
			1,
			[]any{Escaped("a"), Escaped("b" + sentinelPlus)},
		},
		{
			"typed map",
			map[string]int{"n": 3},
			1,
			Sanitized{"n": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Sanitize(tt.in, tt.depth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sanitize(%#v, %d) = %#v, want %#v", tt.in, tt.depth, got, tt.want)
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	records := []any{
		nil,
		"<i>x</i>+{y}",
		"a" + sentinelPlus + sentinelMark + "b",
		[]any{"a]", map[string]any{"b": []any{"c+"}}},
		map[string]any{
			"name":  "Bo<script>x</script>",
			"items": []any{map[string]any{"n": 1}, map[string]any{"n": 2}},
			"deep":  map[string]any{"a": map[string]any{"b": "c"}},
		},
	}

	for _, depth := range []int{0, 1, 3} {
		for _, rec := range records {
			once := Sanitize(rec, depth)
			twice := Sanitize(once, depth)

			if !reflect.DeepEqual(once, twice) {
				t.Errorf("depth %d: Sanitize not idempotent:\n once  %#v\n twice %#v", depth, once, twice)
			}
		}
	}
}

func TestSanitize_SanitizedIdentity(t *testing.T) {
	s := Sanitized{"k": "{raw}"}

	got, ok := Sanitize(s, 1).(Sanitized)
	if !ok || reflect.ValueOf(got).Pointer() != reflect.ValueOf(s).Pointer() {
		t.Error("Sanitize copied an already sanitized mapping")
	}

	if got["k"] != "{raw}" {
		t.Errorf("sanitized mapping was re-escaped: %q", got["k"])
	}
}

func TestField(t *testing.T) {
	type named map[string]string

	if v, ok := Field(named{"a": "b"}, "a"); !ok || v != "b" {
		t.Errorf("Field(named) = %v, %v", v, ok)
	}

	if _, ok := Field("scalar", "a"); ok {
		t.Error("Field on a scalar succeeded")
	}

	if _, ok := Field(map[string]any{}, "missing"); ok {
		t.Error("Field found a missing key")
	}
}

func TestElements(t *testing.T) {
	if items, ok := Elements([]int{1, 2}); !ok || len(items) != 2 || items[1] != 2 {
		t.Errorf("Elements([]int) = %v, %v", items, ok)
	}

	for _, v := range []any{nil, "abc", 3, map[string]any{}} {
		if _, ok := Elements(v); ok {
			t.Errorf("Elements(%#v) reported a sequence", v)
		}
	}
}
