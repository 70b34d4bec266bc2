// Package query provides the read-side interface over an imported store:
// point lookup, full-text search with optional filter expressions, and
// aggregate stats. The importer never depends on this package.
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/wikimirror/wikimirror/pkg/model"
)

// ResultEnv is the environment a filter expression evaluates against,
// one search result at a time.
type ResultEnv struct {
	ID          string `expr:"id"`
	Kind        string `expr:"kind"`
	Label       string `expr:"label"`
	Description string `expr:"description"`
}

// CompileFilter compiles a filter expression over search results, e.g.
//
//	kind == "item" && label contains "bridge"
//
// Matching is case-sensitive except for the id, which is normalized.
func CompileFilter(filterStr string) (func(*model.SearchResult) bool, error) {
	program, err := expr.Compile(filterStr, expr.Env(ResultEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter '%s': %w", filterStr, err)
	}

	return func(r *model.SearchResult) bool {
		env := ResultEnv{
			ID:          model.NormalizeID(r.ID),
			Kind:        r.Kind,
			Label:       r.Label,
			Description: r.Description,
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return false
		}
		if b, ok := result.(bool); ok {
			return b
		}
		return false
	}, nil
}

// sanitizeFTSQuery quotes bare terms so that user input containing FTS5
// operators or punctuation is treated as literal words.
func sanitizeFTSQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}
