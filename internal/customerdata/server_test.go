package customerdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dealbrief/dealbrief/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store := testStore(t)
	srv := NewServer(store, logging.New(nil, "silent"))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	return body
}

func TestLookupByQuery(t *testing.T) {
	ts, store := testServer(t)
	require.NoError(t, store.Put(context.Background(), "Customer C", sampleRecord()))

	resp, err := http.Get(ts.URL + "/?customer_name=Customer+C")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	body := decodeBody(t, resp)
	assert.Equal(t, "collaborative", body["negotiation_style"])
	assert.Equal(t, 108.0, body["current_target_price"])
}

func TestLookupByPost(t *testing.T) {
	ts, store := testServer(t)
	require.NoError(t, store.Put(context.Background(), "Customer C", sampleRecord()))

	resp, err := http.Post(ts.URL+"/", "application/json",
		strings.NewReader(`{"customer_name": "Customer C"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "collaborative", body["negotiation_style"])
}

func TestLookupMissingParameter(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Missing required parameter: customer_name", body["error"])
}

func TestLookupMalformedPostFallsBackToQuery(t *testing.T) {
	ts, store := testServer(t)
	require.NoError(t, store.Put(context.Background(), "Customer C", sampleRecord()))

	resp, err := http.Post(ts.URL+"/?customer_name=Customer+C", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLookupNotFound(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/?customer_name=ACME+TECH")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	errMsg := body["error"].(string)
	assert.Contains(t, errMsg, "ACME TECH")
	assert.Contains(t, errMsg, "not found")
	assert.Equal(t, map[string]any{}, body["data"])
}

func TestLookupOptions(t *testing.T) {
	ts, _ := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestLookupMethodNotAllowed(t *testing.T) {
	ts, _ := testServer(t)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/?customer_name=X", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListCustomersEndpoint(t *testing.T) {
	ts, store := testServer(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "Customer A", map[string]any{}))
	require.NoError(t, store.Put(ctx, "Customer C", map[string]any{}))

	resp, err := http.Get(ts.URL + "/customers")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, []any{"Customer A", "Customer C"}, body["customers"])
}

func TestListCustomersEmpty(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/customers")
	require.NoError(t, err)

	body := decodeBody(t, resp)
	assert.Equal(t, []any{}, body["customers"])
}
