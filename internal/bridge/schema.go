package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidPayload is returned when an inbound event does not match its
// declared schema.
var ErrInvalidPayload = errors.New("bridge: invalid inbound payload")

const (
	entityIDSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "integer",
  "minimum": 1
}`
	entityIDListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {"type": "integer", "minimum": 1}
}`
)

// inboundSchemas declares the first-argument schema of each host event the
// manager consumes.
var inboundSchemas = map[string]string{
	EventWindowCreated: entityIDSchema,
	EventViewCreated:   entityIDSchema,
	EventWindowClosed:  entityIDListSchema,
}

// schemaSet holds compiled inbound schemas keyed by event name.
type schemaSet struct {
	byEvent map[string]*jsonschema.Schema
}

func compileSchemas() (*schemaSet, error) {
	set := &schemaSet{byEvent: make(map[string]*jsonschema.Schema, len(inboundSchemas))}
	for event, src := range inboundSchemas {
		url := event + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", event, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", event, err)
		}
		set.byEvent[event] = schema
	}
	return set, nil
}

// mustCompileSchemas panics on an invalid built-in schema.
func mustCompileSchemas() *schemaSet {
	set, err := compileSchemas()
	if err != nil {
		panic(err)
	}
	return set
}

// validate checks the first argument of event against its schema.
func (s *schemaSet) validate(event string, args []json.RawMessage) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s has no arguments", ErrInvalidPayload, event)
	}
	schema, ok := s.byEvent[event]
	if !ok {
		return fmt.Errorf("%w: no schema declared for %s", ErrInvalidPayload, event)
	}
	var payload any
	if err := json.Unmarshal(args[0], &payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, event, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, event, err)
	}
	return nil
}

// decodeID validates and decodes an entity id event.
func (s *schemaSet) decodeID(event string, args []json.RawMessage) (int, error) {
	if err := s.validate(event, args); err != nil {
		return 0, err
	}
	var id int
	if err := json.Unmarshal(args[0], &id); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, event, err)
	}
	return id, nil
}

// decodeIDList validates and decodes an id set event.
func (s *schemaSet) decodeIDList(event string, args []json.RawMessage) ([]int, error) {
	if err := s.validate(event, args); err != nil {
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(args[0], &ids); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, event, err)
	}
	return ids, nil
}

// decodeArg decodes the first argument of a query response into T.
func decodeArg[T any](event string, args []json.RawMessage) (T, error) {
	var out T
	if len(args) == 0 {
		return out, fmt.Errorf("%w: %s has no arguments", ErrInvalidPayload, event)
	}
	if err := json.Unmarshal(args[0], &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, event, err)
	}
	return out, nil
}
