// Package jsonschema derives the JSON Schema of the product record that is
// sent to the language model as the structured output contract.
package jsonschema

import (
	"encoding/json"
	"sync"

	"github.com/fwojciec/prodmeta"
	"github.com/invopop/jsonschema"
)

var (
	once      sync.Once
	schema    json.RawMessage
	schemaErr error
)

// ProductSchema returns the JSON Schema describing prodmeta.Product.
// Properties are inlined at the root, "product", "brand" and "price" are
// required, and additional properties are permitted. The schema is built
// once and the same bytes are returned on every call.
func ProductSchema() (json.RawMessage, error) {
	once.Do(func() {
		schema, schemaErr = reflect(&prodmeta.Product{})
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return schema, nil
}

// MustProductSchema is like ProductSchema but panics on error.
func MustProductSchema() json.RawMessage {
	s, err := ProductSchema()
	if err != nil {
		panic(err)
	}
	return s
}

func reflect(v any) (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(v)
	// Model providers reject the draft URI.
	s.Version = ""

	b, err := json.Marshal(s)
	if err != nil {
		return nil, prodmeta.Errorf(prodmeta.EINTERNAL, "marshal product schema: %v", err)
	}
	return b, nil
}
