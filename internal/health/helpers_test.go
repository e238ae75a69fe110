package health_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// removeSchema drops the $schema link huma adds to JSON bodies.
func removeSchema(t *testing.T, body []byte) string {
	t.Helper()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	delete(doc, "$schema")

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	return string(out)
}
