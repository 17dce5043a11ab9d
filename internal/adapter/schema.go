package adapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const writeResponseSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"enum": ["success", "error"]},
		"message": {"type": ["string", "null"]}
	}
}`

const readResponseSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"enum": ["success", "error"]},
		"message": {"type": ["string", "null"]},
		"data": {
			"type": ["array", "null"],
			"items": {"type": "object"}
		}
	}
}`

// envelopeSchemas holds the compiled response schemas.
type envelopeSchemas struct {
	write *jsonschema.Schema
	read  *jsonschema.Schema
}

func compileSchemas() (*envelopeSchemas, error) {
	c := jsonschema.NewCompiler()

	compile := func(name, src string) (*jsonschema.Schema, error) {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("parse %s schema: %w", name, err)
		}
		if err = c.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("add %s schema: %w", name, err)
		}
		return c.Compile(name)
	}

	write, err := compile("write-response.json", writeResponseSchema)
	if err != nil {
		return nil, err
	}
	read, err := compile("read-response.json", readResponseSchema)
	if err != nil {
		return nil, err
	}

	return &envelopeSchemas{write: write, read: read}, nil
}

// parseJSON decodes body into a generic JSON value. A failure means the body
// is not JSON at all.
func parseJSON(body []byte) (any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(body))
}
