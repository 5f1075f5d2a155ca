package extractor

import (
	"testing"

	"api-test-engine/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userController = `
package com.example.demo;

/**
 * Manages user accounts.
 */
@RestController
@RequestMapping("/api/users")
public class UserController {

    /**
     * Returns one user by id.
     */
    @GetMapping("/{id}")
    public ResponseEntity<User> getUser(@PathVariable @Min(1) Long id) {
        return ResponseEntity.ok(service.find(id));
    }

    @Operation(summary = "Create a new user")
    @PostMapping
    public ResponseEntity<User> createUser(@Valid @RequestBody CreateUserRequest request, BindingResult bindingResult) {
        return ResponseEntity.ok(service.create(request));
    }

    @GetMapping("/search")
    public ResponseEntity<List<User>> search(
            @RequestParam(required = false) String name,
            @RequestParam(value = "page", required = false) Integer page,
            @RequestHeader("X-Tenant") String tenant,
            HttpServletRequest servletRequest) {
        return ResponseEntity.ok(service.search(name, page));
    }

    @RequestMapping(value = "/{id}", method = RequestMethod.DELETE)
    public void deleteUser(@PathVariable Long id) {
        service.delete(id);
    }

    private void helper() {
    }
}

class CreateUserRequest {
    @NotBlank
    @Size(min = 2, max = 50)
    private String name;

    @NotNull
    @Email
    private String email;

    @Min(0)
    @Max(150)
    private Integer age;
}
`

func extractAll(t *testing.T) []types.EndpointDescriptor {
	t.Helper()
	endpoints := New().Extract(userController, "UserController")
	require.Len(t, endpoints, 4)
	return endpoints
}

func findEndpoint(t *testing.T, endpoints []types.EndpointDescriptor, method types.Method, path string) types.EndpointDescriptor {
	t.Helper()
	for _, ep := range endpoints {
		if ep.Method == method && ep.Path == path {
			return ep
		}
	}
	t.Fatalf("endpoint %s %s not found", method, path)
	return types.EndpointDescriptor{}
}

func TestExtractBasePathAndVerbs(t *testing.T) {
	endpoints := extractAll(t)

	findEndpoint(t, endpoints, types.MethodGet, "/api/users/{id}")
	findEndpoint(t, endpoints, types.MethodPost, "/api/users")
	findEndpoint(t, endpoints, types.MethodGet, "/api/users/search")
	// Verb inferred from the generic mapping's argument list.
	findEndpoint(t, endpoints, types.MethodDelete, "/api/users/{id}")
}

func TestExtractPathParameter(t *testing.T) {
	ep := findEndpoint(t, extractAll(t), types.MethodGet, "/api/users/{id}")

	assert.Equal(t, "getUser", ep.Operation)
	assert.Equal(t, "Returns one user by id.", ep.Description)
	assert.Equal(t, "UserController", ep.Controller)

	require.Len(t, ep.Parameters, 1)
	p := ep.Parameters[0]
	assert.Equal(t, "id", p.Name)
	assert.Equal(t, "long", p.Type)
	assert.Equal(t, types.InPath, p.In)
	assert.True(t, p.Required, "path parameters are always required")
	require.NotNil(t, p.Constraints)
	require.NotNil(t, p.Constraints.Min)
	assert.Equal(t, float64(1), *p.Constraints.Min)
}

func TestExtractRequestBody(t *testing.T) {
	ep := findEndpoint(t, extractAll(t), types.MethodPost, "/api/users")

	assert.Equal(t, "Create a new user", ep.Description)

	// BindingResult is framework plumbing, not user data.
	require.Len(t, ep.Parameters, 1)
	assert.Equal(t, types.InBody, ep.Parameters[0].In)
	assert.True(t, ep.Parameters[0].Required)

	require.NotNil(t, ep.RequestBody)
	assert.Equal(t, "CreateUserRequest", ep.RequestBody.TypeName)
	assert.Equal(t, "application/json", ep.RequestBody.ContentType)
	require.Len(t, ep.RequestBody.Fields, 3)

	byName := map[string]types.Field{}
	for _, f := range ep.RequestBody.Fields {
		byName[f.Name] = f
	}

	name := byName["name"]
	assert.Equal(t, "string", name.Type)
	assert.True(t, name.Required)
	require.NotNil(t, name.Constraints)
	assert.True(t, name.Constraints.NotBlank)
	require.NotNil(t, name.Constraints.MinLength)
	assert.Equal(t, 2, *name.Constraints.MinLength)
	require.NotNil(t, name.Constraints.MaxLength)
	assert.Equal(t, 50, *name.Constraints.MaxLength)

	email := byName["email"]
	assert.True(t, email.Required)
	require.NotNil(t, email.Constraints)
	assert.True(t, email.Constraints.Email)
	assert.True(t, email.Constraints.NotNull)

	age := byName["age"]
	assert.Equal(t, "int", age.Type)
	assert.False(t, age.Required)
	require.NotNil(t, age.Constraints)
	assert.Equal(t, float64(0), *age.Constraints.Min)
	assert.Equal(t, float64(150), *age.Constraints.Max)
}

func TestExtractQueryAndHeaderParameters(t *testing.T) {
	ep := findEndpoint(t, extractAll(t), types.MethodGet, "/api/users/search")

	require.Len(t, ep.Parameters, 3)

	byName := map[string]types.Parameter{}
	for _, p := range ep.Parameters {
		byName[p.Name] = p
	}

	name := byName["name"]
	assert.Equal(t, types.InQuery, name.In)
	assert.False(t, name.Required)
	assert.Equal(t, "string", name.Type)

	// Binding name override via value=.
	page := byName["page"]
	assert.Equal(t, types.InQuery, page.In)
	assert.False(t, page.Required)
	assert.Equal(t, "int", page.Type)

	tenant := byName["X-Tenant"]
	assert.Equal(t, types.InHeader, tenant.In)
	assert.True(t, tenant.Required)
}

func TestExtractDefaultResponses(t *testing.T) {
	ep := findEndpoint(t, extractAll(t), types.MethodGet, "/api/users/{id}")
	require.Len(t, ep.Responses, 3)
	assert.Equal(t, 200, ep.Responses[0].StatusCode)
	assert.Equal(t, 400, ep.Responses[1].StatusCode)
	assert.Equal(t, 500, ep.Responses[2].StatusCode)
}

func TestExtractSkipsUnparsableMethods(t *testing.T) {
	src := `
@RestController
public class BrokenController {
    @GetMapping("/ok")
    public String ok() { return "ok"; }

    @PostMapping("/broken")
    private static final int NOT_A_METHOD = 3;
}
`
	endpoints := New().Extract(src, "BrokenController")
	require.Len(t, endpoints, 1)
	assert.Equal(t, "/ok", endpoints[0].Path)
}

func TestExtractNoBasePath(t *testing.T) {
	src := `
@RestController
public class PingController {
    @GetMapping("/ping")
    public String ping() { return "pong"; }
}
`
	endpoints := New().Extract(src, "PingController")
	require.Len(t, endpoints, 1)
	assert.Equal(t, "/ping", endpoints[0].Path)
	assert.Equal(t, types.MethodGet, endpoints[0].Method)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		base     string
		fragment string
		want     string
	}{
		{"/api/users", "/{id}", "/api/users/{id}"},
		{"/api/users/", "/{id}", "/api/users/{id}"},
		{"/api/users", "{id}", "/api/users/{id}"},
		{"/api/users", "", "/api/users"},
		{"", "/ping", "/ping"},
		{"", "", "/"},
		{"/", "/", "/"},
		{"api", "ping", "/api/ping"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPath(tt.base, tt.fragment), "join(%q,%q)", tt.base, tt.fragment)
	}
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel(`Map<String, List<Integer>> m, @RequestParam(value = "a,b") String s, int n`)
	require.Len(t, parts, 3)
	assert.Contains(t, parts[0], "Map<String, List<Integer>>")
	assert.Contains(t, parts[1], `value = "a,b"`)
	assert.Contains(t, parts[2], "int n")
}
