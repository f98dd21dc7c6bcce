package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pb33f/libopenapi"

	"github.com/hyperterse/querygate/core/application/validation"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/transport/http/handlers"
)

// GenerateOpenAPISpec builds the OpenAPI 3 document of the batch endpoint.
// Each well-formed definition contributes its property schema as a
// component; malformed ones are left out.
func GenerateOpenAPISpec(registry interfaces.Registry, baseURL string) ([]byte, error) {
	var names []string
	schemas := map[string]any{
		"ErrorBody": map[string]any{
			"type":     "object",
			"required": []string{"errno", "code"},
			"properties": map[string]any{
				"errno":   map[string]any{"type": "integer", "example": 1002},
				"code":    map[string]any{"type": "string", "example": "ERROR_QUERY_NOT_FOUND"},
				"details": map[string]any{"description": "Failure details, omitted in production"},
			},
		},
		"ResultItem": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":    map[string]any{"type": "string"},
				"results": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
				"error":   map[string]any{"$ref": "#/components/schemas/ErrorBody"},
			},
		},
	}

	for _, name := range registry.Names() {
		doc, found := registry.Lookup(name)
		def, result, err := validation.ValidateDefinition(doc, found)
		if err != nil || !result.Valid || !found {
			continue
		}
		names = append(names, def.Name)

		schema := def.Schema
		if len(schema) == 0 {
			schema = map[string]any{"type": "object"}
		}
		schemas[def.Name+"Properties"] = schema
	}

	nameSchema := map[string]any{"type": "string"}
	if len(names) > 0 {
		nameSchema["enum"] = names
	}

	spec := map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":       "Querygate API",
			"version":     "1.0.0",
			"description": "Executes batches of registered queries. Each item names a query and supplies its properties.",
		},
		"servers": []map[string]any{
			{"url": baseURL},
		},
		"paths": map[string]any{
			"/query": map[string]any{
				"post": map[string]any{
					"summary":     "Execute a batch of registered queries",
					"operationId": "executeBatch",
					"security":    []map[string]any{{"bearerAuth": []string{}}},
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"queries": map[string]any{
											"type": "array",
											"items": map[string]any{
												"type":     "object",
												"required": []string{"name"},
												"properties": map[string]any{
													"name":       nameSchema,
													"properties": map[string]any{"type": "object"},
												},
												"additionalProperties": false,
											},
										},
									},
								},
							},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Per-item results in request order, or a single envelope error",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type": "object",
										"properties": map[string]any{
											"queries": map[string]any{
												"type":  "array",
												"items": map[string]any{"$ref": "#/components/schemas/ResultItem"},
											},
											"error": map[string]any{"$ref": "#/components/schemas/ErrorBody"},
										},
									},
								},
							},
						},
						"401": map[string]any{"description": "Missing or invalid bearer token"},
					},
				},
			},
			"/heartbeat": map[string]any{
				"get": map[string]any{
					"summary":     "Health check",
					"operationId": "heartbeat",
					"responses": map[string]any{
						"200": map[string]any{"description": "Server is up"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": schemas,
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
		},
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spec: %w", err)
	}

	document, err := libopenapi.NewDocument(specJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create libopenapi document: %w", err)
	}
	if _, err := document.BuildV3Model(); err != nil {
		return nil, fmt.Errorf("failed to build v3 model (validation error): %w", err)
	}

	return specJSON, nil
}

// handleDocs serves the OpenAPI document of the current registry snapshot
func handleDocs(source interfaces.RegistrySource, baseURL string) http.HandlerFunc {
	h := handlers.NewBaseHandler("handler:docs")

	return func(w http.ResponseWriter, r *http.Request) {
		registry, err := source.Load(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to load registry: %v", err), http.StatusInternalServerError)
			return
		}

		specJSON, err := GenerateOpenAPISpec(registry, baseURL)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to generate OpenAPI spec: %v", err), http.StatusInternalServerError)
			return
		}

		h.WriteSuccess(w, json.RawMessage(specJSON))
	}
}
