package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"dough-store/docs"
)

func TestSwaggerDescriptor_Renders(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "2.0", doc.Swagger)
	for _, path := range []string{
		"/api/checkout/session",
		"/api/stripe/webhook",
		"/api/shipping/quote",
		"/api/orders/{id}",
		"/api/admin/orders",
	} {
		require.Contains(t, doc.Paths, path)
	}
}
