package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instrumentd/typestore/x/typestore"
)

func seededRouter(t *testing.T) *mux.Router {
	t.Helper()

	ts, err := typestore.New(typestore.Config{})
	require.NoError(t, err)

	cbs := &typestore.Callbacks{
		Print: func(w io.Writer, payload any) { fmt.Fprintf(w, "name=%v", payload) },
	}
	require.NoError(t, ts.Store("names", "john", "J", cbs))
	require.NoError(t, ts.Store("names", "adam", "A", cbs))
	require.NoError(t, ts.Store("sensors", "temp", 21, nil))

	r := mux.NewRouter()
	NewHandler(ts, zerolog.Nop()).Register(r)
	return r
}

func doGet(t *testing.T, r *mux.Router, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandler_ListKinds(t *testing.T) {
	t.Parallel()

	r := seededRouter(t)
	rec, body := doGet(t, r, "/v1/kinds")
	require.Equal(t, http.StatusOK, rec.Code)

	kinds, ok := body["kinds"].([]any)
	require.True(t, ok)
	require.Len(t, kinds, 2)

	first := kinds[0].(map[string]any)
	assert.Equal(t, "names", first["name"])
	assert.Equal(t, float64(2), first["values"])
}

func TestHandler_ListValuesRendersInOrder(t *testing.T) {
	t.Parallel()

	r := seededRouter(t)
	rec, body := doGet(t, r, "/v1/kinds/names/values")
	require.Equal(t, http.StatusOK, rec.Code)

	values := body["values"].([]any)
	require.Len(t, values, 2)

	adam := values[0].(map[string]any)
	assert.Equal(t, "adam", adam["name"])
	assert.Equal(t, "name=A", adam["rendered"])
}

func TestHandler_GetValueDefaultRendering(t *testing.T) {
	t.Parallel()

	r := seededRouter(t)
	rec, body := doGet(t, r, "/v1/kinds/sensors/values/temp")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "21", body["rendered"])
}

func TestHandler_NotFound(t *testing.T) {
	t.Parallel()

	r := seededRouter(t)

	rec, body := doGet(t, r, "/v1/kinds/ghosts/values")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "kind_not_found", errBody["code"])

	rec, body = doGet(t, r, "/v1/kinds/names/values/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody = body["error"].(map[string]any)
	assert.Equal(t, "value_not_found", errBody["code"])
}
