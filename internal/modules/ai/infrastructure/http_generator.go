package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"kanbanApi/internal/modules/ai/application/port"
	"kanbanApi/internal/modules/ai/domain"
	"kanbanApi/internal/platform/restclient"
	"kanbanApi/internal/shared/apperr"
)

const boardSchema = `{
  "type": "object",
  "required": ["title", "groups"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "label": {"type": "string"},
    "groups": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "tasks"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "color": {"type": "string"},
          "tasks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title"],
              "properties": {
                "title": {"type": "string", "minLength": 1},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "priority": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

type generateRequest struct {
	Description string `json:"description"`
}

// HTTPGenerator calls the external generation service and accepts only
// answers that match the board schema.
type HTTPGenerator struct {
	rest   *restclient.RESTClient
	path   string
	schema *santhosh.Schema
}

func NewHTTPGenerator(rest *restclient.RESTClient, path string) (*HTTPGenerator, error) {
	schema, err := compileSchema([]byte(boardSchema))
	if err != nil {
		return nil, fmt.Errorf("compile board schema: %w", err)
	}
	if strings.TrimSpace(path) == "" {
		path = "/generate"
	}
	return &HTTPGenerator{rest: rest, path: path, schema: schema}, nil
}

func NewHTTPGeneratorFromURL(baseURL, path, apiKey string, timeout time.Duration) (*HTTPGenerator, error) {
	return NewHTTPGenerator(restclient.New(baseURL, apiKey, timeout, nil), path)
}

func (g *HTTPGenerator) Generate(ctx context.Context, description string) (*domain.GeneratedBoard, error) {
	body, err := g.rest.PostJSON(ctx, g.path, generateRequest{Description: description})
	if err != nil {
		return nil, apperr.External("call board generator", err)
	}
	raw := unwrapData(body)
	if err := g.validate(raw); err != nil {
		return nil, apperr.External("board generator answer", err)
	}
	var board domain.GeneratedBoard
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, apperr.External("decode generated board", err)
	}
	return &board, nil
}

func (g *HTTPGenerator) validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal answer: %w", err)
	}
	if err := g.schema.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("schema violation: %s", strings.Join(collectValidationErrors(ve), "; "))
		}
		return err
	}
	return nil
}

// unwrapData accepts both a bare board and a {"data": board} envelope.
func unwrapData(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		return envelope.Data
	}
	return body
}

func compileSchema(schemaJSON []byte) (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("board.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("board.json")
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, ve.InstanceLocation+": "+ve.Message)
	}
	return msgs
}

var _ port.BoardGenerator = (*HTTPGenerator)(nil)
