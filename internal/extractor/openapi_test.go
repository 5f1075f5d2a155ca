package extractor

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"api-test-engine/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAPIDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "demo", "version": "1.0"},
  "paths": {
    "/api/users/{id}": {
      "get": {
        "operationId": "getUser",
        "summary": "Get one user",
        "tags": ["UserController"],
        "parameters": [
          {"name": "id", "in": "path", "required": true,
           "schema": {"type": "integer", "format": "int64", "minimum": 1}}
        ],
        "responses": {
          "404": {"description": "Not Found"},
          "200": {"description": "OK"}
        }
      }
    },
    "/api/users": {
      "post": {
        "operationId": "createUser",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "name": {"type": "string", "minLength": 2, "maxLength": 50},
                  "email": {"type": "string", "format": "email"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "Created"}}
      }
    }
  }
}`

func TestOpenAPIExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/api-docs" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, openAPIDoc)
	}))
	defer server.Close()

	endpoints, err := NewOpenAPIExtractor(server.URL).Extract()
	require.NoError(t, err)
	require.Len(t, endpoints, 2)

	// Paths come back sorted.
	create := endpoints[0]
	get := endpoints[1]

	assert.Equal(t, types.MethodGet, get.Method)
	assert.Equal(t, "/api/users/{id}", get.Path)
	assert.Equal(t, "getUser", get.Operation)
	assert.Equal(t, "Get one user", get.Description)
	assert.Equal(t, "UserController", get.Controller)

	require.Len(t, get.Parameters, 1)
	id := get.Parameters[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "long", id.Type)
	assert.Equal(t, types.InPath, id.In)
	assert.True(t, id.Required)
	require.NotNil(t, id.Constraints)
	assert.Equal(t, float64(1), *id.Constraints.Min)

	require.Len(t, get.Responses, 2)
	assert.Equal(t, 200, get.Responses[0].StatusCode)
	assert.Equal(t, 404, get.Responses[1].StatusCode)

	assert.Equal(t, types.MethodPost, create.Method)
	assert.Equal(t, "createUser", create.Operation)
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "application/json", create.RequestBody.ContentType)
	require.Len(t, create.RequestBody.Fields, 2)

	email := create.RequestBody.Fields[0]
	assert.Equal(t, "email", email.Name)
	assert.Equal(t, "string", email.Type)
	assert.False(t, email.Required)
	require.NotNil(t, email.Constraints)
	assert.True(t, email.Constraints.Email)

	name := create.RequestBody.Fields[1]
	assert.Equal(t, "name", name.Name)
	assert.True(t, name.Required)
	require.NotNil(t, name.Constraints)
	assert.Equal(t, 2, *name.Constraints.MinLength)
	assert.Equal(t, 50, *name.Constraints.MaxLength)

	require.Len(t, create.Parameters, 1)
	assert.Equal(t, types.InBody, create.Parameters[0].In)
	assert.True(t, create.Parameters[0].Required)

	require.Len(t, create.Responses, 1)
	assert.Equal(t, 201, create.Responses[0].StatusCode)
}

func TestOpenAPIExtractFallsBackThroughKnownURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swagger.json" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, openAPIDoc)
	}))
	defer server.Close()

	endpoints, err := NewOpenAPIExtractor(server.URL).Extract()
	require.NoError(t, err)
	assert.Len(t, endpoints, 2)
}

func TestOpenAPIExtractNoDocumentFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewOpenAPIExtractor(server.URL).Extract()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch OpenAPI documentation")
}
