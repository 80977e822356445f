package adapters

import jsoniter "github.com/json-iterator/go"

var (
	// json is used for everything that crosses the bridge.
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	// exactJSON keeps numbers as json.Number so payload decoding can tell
	// integers from fractions.
	exactJSON = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		UseNumber:              true,
	}.Froze()
)

// Marshal encodes v with the bridge codec.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data with the bridge codec.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
