package builtin

import (
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// CompileJQEdge compiles a gojq query once at registration time and
// returns a transmute.EdgeFunc extracting the first result of running it
// against the incoming JSON-shaped value (a map/slice/scalar produced by
// encoding/json's generic decode, or a gojq-compatible value already in
// that shape).
func CompileJQEdge(query string) (transmute.EdgeFunc, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("builtin: compiling jq query %q: %w", query, err)
	}

	return func(value any) (any, error) {
		iter := q.Run(value)
		v, ok := iter.Next()
		if !ok {
			return nil, fmt.Errorf("builtin: jq query %q produced no result", query)
		}
		if jqErr, isErr := v.(error); isErr {
			return nil, fmt.Errorf("builtin: jq query %q: %w", query, jqErr)
		}
		return v, nil
	}, nil
}
