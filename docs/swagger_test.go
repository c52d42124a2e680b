package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath    string                            `json:"basePath"`
		Paths       map[string]map[string]interface{} `json:"paths"`
		Definitions map[string]interface{}            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	for path, methods := range map[string][]string{
		"/cart":                       {"get", "delete"},
		"/cart/items":                 {"post"},
		"/cart/items/{id}":            {"put", "delete"},
		"/cart/checkout":              {"post"},
		"/delivery/estimate":          {"get"},
		"/delivery/slots":             {"get"},
		"/delivery/couriers/nearest":  {"get"},
		"/restaurants":                {"get"},
		"/restaurants/{id}/reviews":   {"get", "post"},
		"/favourites":                 {"get"},
		"/favourites/{restaurant_id}": {"post"},
		"/health":                     {"get"},
	} {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, path)
		}
	}
	assert.Contains(t, doc.Definitions, "handlers.CartResponse")
	assert.Contains(t, doc.Definitions, "models.Order")
}
