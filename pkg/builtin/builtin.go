package builtin

import "github.com/nyxwell/transmute/pkg/transmute"

// Funcs returns every worked-example edge function built into the module,
// keyed by the name cmd/transmuted registers them under before
// storage.EdgeRepository.Rehydrate resolves persisted FuncRefs back to
// live code.
func Funcs() map[string]transmute.EdgeFunc {
	return map[string]transmute.EdgeFunc{
		"bytes_to_string": BytesToString,
		"string_to_bytes": StringToBytes,
		"string_to_json":  StringToJSON,
		"json_to_string":  JSONToString,
		"base64_decode":   Base64Decode,
		"base64_encode":   Base64Encode,
		"csv_to_json":     CSVToJSON,
		"html_clean":      HTMLClean,
		"load_webpage":    LoadWebpage,
	}
}
