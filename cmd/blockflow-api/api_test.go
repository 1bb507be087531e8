package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/leadkit/blockflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	api, err := NewAPI(context.Background(), slog.Default(), Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := api.Close(context.Background()); err != nil {
			t.Logf("Failed to close API: %v", err)
		}
	})

	return api.App()
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	var out T

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func createFlow(t *testing.T, app *fiber.App, name string) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/", map[string]any{"name": name}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	flow := decodeBody[map[string]any](t, resp)
	id, ok := flow["id"].(string)
	require.True(t, ok)

	return id
}

func addBlock(t *testing.T, app *fiber.App, flowID string, kind models.BlockKind, x, y int) string {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/blocks", map[string]any{
		"kind": string(kind), "x": x, "y": y,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	block := decodeBody[map[string]any](t, resp)
	id, ok := block["id"].(string)
	require.True(t, ok)

	return id
}

func configureBlock(t *testing.T, app *fiber.App, flowID, blockID string, config map[string]any) {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		"/flows/"+flowID+"/blocks/"+blockID+"/configure", map[string]any{"config": config}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "blockflow API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetCatalog(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/catalog", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	palette := decodeBody[map[string][]map[string]any](t, resp)
	assert.Len(t, palette["trigger"], 3)
	assert.Len(t, palette["condition"], 3)
	assert.Len(t, palette["action"], 3)
}

func TestAPI_CreateFlow_Validation(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/", map[string]any{"name": "ab"}))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_AddBlock_UnknownKind(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/blocks", map[string]any{
		"kind": "fax-lead", "x": 0, "y": 0,
	}))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_UnknownFlow(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/flows/missing", nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Connect_IllegalEdge(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	trigger := addBlock(t, app, flowID, models.KindNewLead, 0, 0)
	action := addBlock(t, app, flowID, models.KindSendMessage, 200, 0)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/connections", map[string]any{
		"from": action, "to": trigger,
	}))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Connect_Duplicate(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	trigger := addBlock(t, app, flowID, models.KindNewLead, 0, 0)
	action := addBlock(t, app, flowID, models.KindSendMessage, 200, 0)

	payload := map[string]any{"from": trigger, "to": action}

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/connections", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "connected", result["status"])

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/connections", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result = decodeBody[map[string]any](t, resp)
	assert.Equal(t, "duplicate", result["status"])
}

func TestAPI_SaveFlow_Invalid(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/save", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	result := decodeBody[map[string]any](t, resp)
	assert.Equal(t, false, result["valid"])
	assert.NotEmpty(t, result["errors"])
}

func TestAPI_FullLifecycle(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	trigger := addBlock(t, app, flowID, models.KindNewLead, 0, 0)
	action := addBlock(t, app, flowID, models.KindSendMessage, 200, 0)

	configureBlock(t, app, flowID, trigger, map[string]any{})
	configureBlock(t, app, flowID, action, map[string]any{"channel": "email", "text": "welcome!"})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/connections", map[string]any{
		"from": trigger, "to": action,
	}))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Move the trigger; the response carries the snapped position.
	resp, err = app.Test(jsonRequest(t, http.MethodPatch,
		"/flows/"+flowID+"/blocks/"+trigger+"/position", map[string]any{"dx": 15, "dy": 30}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	moved := decodeBody[map[string]any](t, resp)
	position, ok := moved["position"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 20.0, position["x"], 0.001)
	assert.InDelta(t, 40.0, position["y"], 0.001)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/save", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	saved := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, saved["valid"])

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/flows/"+flowID+"/test", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, report["success"])

	outcomes, ok := report["outcomes"].([]any)
	require.True(t, ok)
	assert.Len(t, outcomes, 2)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/flows/"+flowID+"/blocks/"+action, nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/flows/"+flowID, nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_DeleteBlock_NotFound(t *testing.T) {
	app := setupTestApp(t)
	flowID := createFlow(t, app, "Welcome flow")

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/flows/"+flowID+"/blocks/missing", nil))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
