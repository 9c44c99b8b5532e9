package router

import (
	"encoding/json"
	"strings"
)

// OpenAPIInfo holds the info block of a generated OpenAPI document.
type OpenAPIInfo struct {
	Title       string
	Version     string
	Description string
}

// GenerateOpenAPI renders an OpenAPI 3.1 document from the REST routes in
// the metadata store. Generation is deterministic (encoding/json marshals
// object keys in sorted order) and injective: the metadata store rejects
// duplicate (protocol, path, method) tuples at registration time, so no two
// routes collapse into one entry.
func GenerateOpenAPI(store *MetadataStore, info OpenAPIInfo, servers ...string) ([]byte, error) {
	doc := map[string]any{
		"openapi": "3.1.0",
		"info":    openapiInfo(info),
	}

	if len(servers) > 0 {
		entries := make([]map[string]any, 0, len(servers))
		for _, s := range servers {
			entries = append(entries, map[string]any{"url": s})
		}
		doc["servers"] = entries
	}

	paths := make(map[string]map[string]any)
	for _, r := range store.All() {
		if r.Protocol != "rest" {
			continue
		}
		item, ok := paths[r.Path]
		if !ok {
			item = make(map[string]any)
			paths[r.Path] = item
		}
		item[strings.ToLower(r.Method)] = openapiOperation(r)
	}
	doc["paths"] = paths

	return json.MarshalIndent(doc, "", "  ")
}

func openapiInfo(info OpenAPIInfo) map[string]any {
	block := map[string]any{
		"title":   info.Title,
		"version": info.Version,
	}
	if info.Description != "" {
		block["description"] = info.Description
	}
	return block
}

func openapiOperation(r RouteMetadata) map[string]any {
	op := make(map[string]any)
	if r.Description != "" {
		op["description"] = r.Description
	}

	if params := pathParameters(r.Path); len(params) > 0 {
		op["parameters"] = params
	}

	if len(r.RequestSchema) > 0 {
		op["requestBody"] = map[string]any{
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": json.RawMessage(r.RequestSchema),
				},
			},
		}
	}

	response := map[string]any{"description": "Successful response"}
	if len(r.ResponseSchema) > 0 {
		response["content"] = map[string]any{
			"application/json": map[string]any{
				"schema": json.RawMessage(r.ResponseSchema),
			},
		}
	}
	op["responses"] = map[string]any{"200": response}

	return op
}

// pathParameters extracts "{param}" and ":param" segments as required
// OpenAPI path parameters in occurrence order.
func pathParameters(path string) []map[string]any {
	var params []map[string]any
	for _, seg := range splitPath(path) {
		var name string
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			name = seg[1 : len(seg)-1]
		case strings.HasPrefix(seg, ":"):
			name = seg[1:]
		default:
			continue
		}
		params = append(params, map[string]any{
			"name":     name,
			"in":       "path",
			"required": true,
			"schema":   map[string]any{"type": "string"},
		})
	}
	return params
}
