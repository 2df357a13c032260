// Package builtin supplies concrete, reusable edge functions and
// detectors: scripted ones compiled from user expressions at registration
// time, and a set of worked-example conversions shipped with the module
// itself (byte/string/JSON, CSV, HTML).
package builtin

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// scriptEnv is the evaluation environment exposed to a scripted
// expression: the value under transmutation, named "value".
type scriptEnv struct {
	Value any `expr:"value"`
}

// CompileEdgeFunc compiles expression once and returns a transmute.EdgeFunc
// evaluating it against the incoming value on every call. This is the
// registry's escape hatch for an edge whose conversion logic is simple
// enough to express as a one-line condition or projection rather than Go
// code compiled into the binary.
func CompileEdgeFunc(expression string) (transmute.EdgeFunc, error) {
	program, err := expr.Compile(expression, expr.Env(scriptEnv{}))
	if err != nil {
		return nil, fmt.Errorf("builtin: compiling scripted edge %q: %w", expression, err)
	}
	return func(value any) (any, error) {
		out, err := expr.Run(program, scriptEnv{Value: value})
		if err != nil {
			return nil, fmt.Errorf("builtin: running scripted edge %q: %w", expression, err)
		}
		return out, nil
	}, nil
}

// CompileInspector compiles expression into a transmute.Inspector. The
// expression must evaluate to a list of string tag labels observed on value
// (a []string, or an expr array literal whose items are all strings);
// labelToTag resolves each one to a Tag (pass nil to use transmute.TagKey).
func CompileInspector(expression string, labelToTag func(label string) transmute.Tag) (transmute.Inspector, error) {
	program, err := expr.Compile(expression, expr.Env(scriptEnv{}))
	if err != nil {
		return nil, fmt.Errorf("builtin: compiling scripted detector %q: %w", expression, err)
	}
	if labelToTag == nil {
		labelToTag = transmute.TagKey
	}
	return func(value any) []transmute.Tag {
		out, err := expr.Run(program, scriptEnv{Value: value})
		if err != nil {
			return nil
		}
		labels, ok := out.([]string)
		if !ok {
			items, isList := out.([]any)
			if !isList {
				return nil
			}
			for _, item := range items {
				label, isString := item.(string)
				if !isString {
					return nil
				}
				labels = append(labels, label)
			}
		}
		tags := make([]transmute.Tag, 0, len(labels))
		for _, label := range labels {
			tags = append(tags, labelToTag(label))
		}
		return tags
	}, nil
}
