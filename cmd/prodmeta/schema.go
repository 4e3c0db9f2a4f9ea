package main

import (
	"bytes"
	"encoding/json"

	"github.com/fwojciec/prodmeta/jsonschema"
)

// Run executes the schema command.
func (c *SchemaCmd) Run(deps *Dependencies) error {
	schema, err := jsonschema.ProductSchema()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, schema, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err = buf.WriteTo(deps.Stdout)
	return err
}
