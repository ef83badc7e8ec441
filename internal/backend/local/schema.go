package local

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo/internal/service"
)

const schemaURL = "todo://tasks.v1.schema.json"

// collectionSchema describes the persisted layout: an array of task objects.
const collectionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "completed": {"type": "boolean"},
      "createdAt": {"type": "integer"},
      "updatedAt": {"type": "integer"}
    }
  }
}`

var schema = jsonschema.MustCompileString(schemaURL, collectionSchema)

// decode validates raw against the collection schema and unmarshals it.
func decode(raw []byte) ([]service.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var tasks []service.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}
