package schema

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	reflected sync.Map // reflect.Type -> json.RawMessage
	reflector = &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
)

// For returns the JSON Schema of T. Fields without omitempty are required;
// unknown properties are tolerated so that chatty models still validate.
func For[T any]() json.RawMessage {
	t := reflect.TypeFor[T]()
	if s, ok := reflected.Load(t); ok {
		return s.(json.RawMessage)
	}

	s := reflector.Reflect(new(T))
	// The validator autodetects the draft; the 2020-12 URI is not one it knows.
	s.Version = ""
	raw, err := json.Marshal(s)
	if err != nil {
		// Reflected schemas only contain marshalable values.
		panic(err)
	}

	actual, _ := reflected.LoadOrStore(t, json.RawMessage(raw))
	return actual.(json.RawMessage)
}
