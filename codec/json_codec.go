package codec

import "encoding/json"

// JSONDumpCodec renders a value as compact JSON text for trace logging.
// Human-readable, cross-language, easy to eyeball in a log line — exactly
// the properties the teacher's JSONCodec was chosen for, just applied to
// debug output instead of wire bytes.
type JSONDumpCodec struct{}

func (JSONDumpCodec) Dump(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
