package apicompat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseDoc = `
swagger: "2.0"
paths:
  /videos/{id}:
    get:
      responses:
        "200": {}
        "404": {}
    delete:
      responses:
        "200": {}
    parameters: []
  /videos/{id}/like:
    post:
      responses:
        "200": {}
        "401": {}
`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(baseDoc))
	require.NoError(t, err)

	require.Contains(t, spec.Paths, "/videos/{id}")
	ops := spec.Paths["/videos/{id}"]
	assert.Len(t, ops, 2, "parameters is not an operation")
	assert.Contains(t, ops["get"].Responses, "404")

	_, err = Parse([]byte("swagger: \"2.0\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("paths: [1, 2]\n"))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	spec, err := Parse([]byte(`{"paths": {"/health": {"GET": {"responses": {"200": {}}}}}}`))
	require.NoError(t, err)
	assert.Contains(t, spec.Paths["/health"]["get"].Responses, "200")
}

func TestCompare(t *testing.T) {
	base, err := Parse([]byte(baseDoc))
	require.NoError(t, err)

	t.Run("identical", func(t *testing.T) {
		assert.Empty(t, Compare(base, base))
	})

	t.Run("additions are compatible", func(t *testing.T) {
		rev, err := Parse([]byte(baseDoc + `
  /videos/search:
    get:
      responses:
        "200": {}
`))
		require.NoError(t, err)
		assert.Empty(t, Compare(base, rev))
	})

	t.Run("removals are reported", func(t *testing.T) {
		rev, err := Parse([]byte(`
paths:
  /videos/{id}:
    get:
      responses:
        "200": {}
`))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"removed operation: DELETE /videos/{id}",
			"removed path: /videos/{id}/like",
			"removed response code: GET /videos/{id} -> 404",
		}, Compare(base, rev))
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseDoc), 0o600))

	spec, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, spec.Paths, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCommittedSwaggerDocument(t *testing.T) {
	spec, err := Load(filepath.Join("..", "..", "docs", "swagger.yaml"))
	require.NoError(t, err)

	for _, path := range []string{"/videos/recommended", "/videos/{id}/like", "/users/{id}/follow", "/users/login"} {
		assert.Contains(t, spec.Paths, path)
	}
	assert.Empty(t, Compare(spec, spec))
}
