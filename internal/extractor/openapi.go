package extractor

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"api-test-engine/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIExtractor discovers endpoints from a live OpenAPI document
// instead of controller source. It produces the same descriptor model as
// the source extractor, so the rest of the pipeline does not care where
// endpoints came from.
type OpenAPIExtractor struct {
	baseURL string
	client  *http.Client
}

// NewOpenAPIExtractor creates an extractor targeting the given base URL.
func NewOpenAPIExtractor(baseURL string) *OpenAPIExtractor {
	return &OpenAPIExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Extract fetches the OpenAPI document from a list of well-known
// locations and lowers it into endpoint descriptors.
func (p *OpenAPIExtractor) Extract() ([]types.EndpointDescriptor, error) {
	urls := []string{
		fmt.Sprintf("%s/v3/api-docs", p.baseURL),
		fmt.Sprintf("%s/swagger/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/swagger.json", p.baseURL),
		fmt.Sprintf("%s/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/v1/swagger.json", p.baseURL),
	}

	var doc *openapi3.T
	var lastErr error
	for _, url := range urls {
		doc, lastErr = p.fetchDoc(url)
		if lastErr == nil {
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("failed to fetch OpenAPI documentation from any known URL, last error: %v", lastErr)
	}

	return p.lower(doc), nil
}

func (p *OpenAPIExtractor) fetchDoc(url string) (*openapi3.T, error) {
	resp, err := p.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %v", err)
	}
	return doc, nil
}

// lower converts the OpenAPI document into endpoint descriptors.
func (p *OpenAPIExtractor) lower(doc *openapi3.T) []types.EndpointDescriptor {
	var endpoints []types.EndpointDescriptor

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		for method, op := range paths[path].Operations() {
			verb := types.Method(strings.ToUpper(method))
			if !knownMethod(verb) {
				continue
			}
			ep := types.EndpointDescriptor{
				Method:      verb,
				Path:        path,
				Operation:   op.OperationID,
				Description: op.Summary,
			}
			if len(op.Tags) > 0 {
				ep.Controller = op.Tags[0]
			}
			if ep.Operation == "" {
				ep.Operation = strings.ToLower(method) + strings.ReplaceAll(path, "/", "_")
			}

			for _, pref := range op.Parameters {
				if pref.Value == nil {
					continue
				}
				ep.Parameters = append(ep.Parameters, loweredParameter(pref.Value))
			}

			if op.RequestBody != nil && op.RequestBody.Value != nil {
				if content, ok := op.RequestBody.Value.Content["application/json"]; ok && content.Schema != nil {
					body := &types.RequestBody{ContentType: "application/json"}
					if ref := content.Schema.Ref; ref != "" {
						body.TypeName = strings.TrimPrefix(ref, "#/components/schemas/")
					}
					body.Fields = loweredFields(content.Schema.Value, 0)
					ep.RequestBody = body
					ep.Parameters = append(ep.Parameters, types.Parameter{
						Name:     "body",
						Type:     "unknown",
						In:       types.InBody,
						Required: op.RequestBody.Value.Required,
					})
				}
			}

			ep.Responses = loweredResponses(op)
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

func knownMethod(m types.Method) bool {
	for _, known := range types.Methods {
		if m == known {
			return true
		}
	}
	return false
}

func loweredParameter(src *openapi3.Parameter) types.Parameter {
	param := types.Parameter{
		Name:     src.Name,
		Type:     "unknown",
		In:       src.In,
		Required: src.Required || src.In == "path",
	}
	if src.Schema != nil && src.Schema.Value != nil {
		param.Type = schemaType(src.Schema.Value)
		param.Constraints = schemaConstraints(src.Schema.Value)
	}
	return param
}

func loweredFields(schema *openapi3.Schema, depth int) []types.Field {
	if schema == nil || depth >= maxFieldDepth {
		return nil
	}
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []types.Field
	for _, name := range names {
		prop := schema.Properties[name]
		if prop.Value == nil {
			continue
		}
		field := types.Field{
			Name:        name,
			Type:        schemaType(prop.Value),
			Required:    required[name],
			Constraints: schemaConstraints(prop.Value),
		}
		if field.Type == "unknown" || (prop.Value.Type != nil && prop.Value.Type.Is("object")) {
			field.Fields = loweredFields(prop.Value, depth+1)
		}
		fields = append(fields, field)
	}
	return fields
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return "unknown"
	}
	switch {
	case schema.Type.Is("string"):
		switch schema.Format {
		case "date":
			return "date"
		case "date-time":
			return "datetime"
		}
		return "string"
	case schema.Type.Is("integer"):
		if schema.Format == "int64" {
			return "long"
		}
		return "int"
	case schema.Type.Is("number"):
		return "double"
	case schema.Type.Is("boolean"):
		return "boolean"
	case schema.Type.Is("array"):
		return "list"
	case schema.Type.Is("object"):
		return "map"
	}
	return "unknown"
}

func schemaConstraints(schema *openapi3.Schema) *types.Constraints {
	c := &types.Constraints{}
	if schema.Min != nil {
		v := *schema.Min
		c.Min = &v
	}
	if schema.Max != nil {
		v := *schema.Max
		c.Max = &v
	}
	if schema.MinLength > 0 {
		v := int(schema.MinLength)
		c.MinLength = &v
	}
	if schema.MaxLength != nil {
		v := int(*schema.MaxLength)
		c.MaxLength = &v
	}
	if schema.Pattern != "" {
		c.Pattern = schema.Pattern
	}
	if schema.Format == "email" {
		c.Email = true
	}
	for _, e := range schema.Enum {
		c.Enum = append(c.Enum, fmt.Sprint(e))
	}
	if c.Empty() {
		return nil
	}
	return c
}

func loweredResponses(op *openapi3.Operation) []types.ResponseSpec {
	var specs []types.ResponseSpec
	if op.Responses != nil {
		for statusCode, response := range op.Responses.Map() {
			code := 0
			if _, err := fmt.Sscanf(statusCode, "%d", &code); err != nil || code == 0 {
				continue
			}
			description := ""
			if response.Value != nil && response.Value.Description != nil {
				description = *response.Value.Description
			}
			specs = append(specs, types.ResponseSpec{StatusCode: code, Description: description})
		}
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].StatusCode < specs[j].StatusCode })
	if len(specs) == 0 {
		specs = []types.ResponseSpec{
			{StatusCode: 200, Description: "Success"},
			{StatusCode: 400, Description: "Bad Request"},
			{StatusCode: 500, Description: "Internal Server Error"},
		}
	}
	return specs
}
