package query

import (
	"testing"

	"github.com/wikimirror/wikimirror/pkg/model"
)

func TestCompileFilter(t *testing.T) {
	result := &model.SearchResult{
		ID:          "q42",
		Kind:        "item",
		Label:       "Douglas Adams",
		Description: "English writer",
	}

	cases := []struct {
		expr string
		want bool
	}{
		{`kind == "item"`, true},
		{`kind == "property"`, false},
		{`id == "Q42"`, true}, // id is normalized before evaluation
		{`label contains "Adams"`, true},
		{`label contains "adams"`, false},
		{`description startsWith "English"`, true},
		{`kind == "item" && label contains "Douglas"`, true},
	}
	for _, c := range cases {
		fn, err := CompileFilter(c.expr)
		if err != nil {
			t.Fatalf("compile %q: %v", c.expr, err)
		}
		if got := fn(result); got != c.want {
			t.Errorf("filter %q = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestCompileFilterRejectsInvalidExpressions(t *testing.T) {
	for _, expr := range []string{
		`kind ==`,
		`label + 1`, // not a boolean
		`nosuchfield == "x"`,
	} {
		if _, err := CompileFilter(expr); err == nil {
			t.Errorf("expected compile error for %q", expr)
		}
	}
}

func TestSanitizeFTSQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`bridge`, `"bridge"`},
		{`golden gate`, `"golden" "gate"`},
		{`it's`, `"it's"`},
		{`say "hi"`, `"say" """hi"""`},
	}
	for _, c := range cases {
		if got := sanitizeFTSQuery(c.in); got != c.want {
			t.Errorf("sanitizeFTSQuery(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
