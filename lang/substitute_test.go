package lang

import "testing"

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		context  any
		fallback string
		want     string
	}{
		{"field", "$name;", map[string]any{"name": "Bo"}, "", "Bo"},
		{"missing", "$missing;", map[string]any{}, "X", "X"},
		{"nil value", "$v;", map[string]any{"v": nil}, "-", "-"},
		{"object", "$obj;", map[string]any{"obj": map[string]any{}}, "", "(object)"},
		{"array", "$a;", map[string]any{"a": []any{1}}, "", "(array)"},
		{"boolean", "$b;", map[string]any{"b": true}, "", "(boolean)"},
		{"unexpanded", "$u;", Sanitized{"u": Unexpanded{}}, "", "(unexpanded)"},
		{"integer", "n=$n;", map[string]any{"n": 7}, "", "n=7"},
		{"float", "$f;", map[string]any{"f": 2.5}, "", "2.5"},
		{"whole float", "$f;", map[string]any{"f": float64(3)}, "", "3"},
		{"several", "$a;-$b;", map[string]any{"a": "x", "b": "y"}, "", "x-y"},
		{"unterminated", "cost $5", map[string]any{}, "", "cost $5"},
		{"dollar before token", "$$n;", map[string]any{"n": "v"}, "", "$v"},
		{"empty name", "$;", map[string]any{"": "x"}, "", "$;"},
		{"scalar context", "$n;", "str", "F", "F"},
		{"nil context", "$n;", nil, "F", "F"},
		{"self scalar", "p{%self}", "Bo", "", "p{Bo}"},
		{"self twice", "%self/%self", 4, "", "4/4"},
		{"self object", "%self", map[string]any{"a": 1}, "", "(object)"},
		{"self nil context", "%self", nil, "", "%self"},
		{"no rescan", "$a;", map[string]any{"a": "$b;", "b": "no"}, "", "$b;"},
		{"self then field", "%self:$k;", map[string]any{"k": "v"}, "", "(object):v"},
		{"self not rescanned", "%self", "$x;", "F", "$x;"},
		{"self inside field", "$%self;", "x", "F", "F"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Substitute(tt.text, tt.context, tt.fallback)
			if got != tt.want {
				t.Errorf("Substitute(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{true, "boolean"},
		{"s", "string"},
		{1, "number"},
		{uint16(1), "number"},
		{Sanitized{}, "object"},
		{[]string{}, "array"},
		{struct{}{}, "object"},
		{Unexpanded{}, "unexpanded"},
	}

	for _, tt := range tests {
		if got := TypeName(tt.in); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
