package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/config"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/handler"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/pkg/crypto"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/repository/sqlite"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/signer"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/storage"
)

const identityHeader = "X-Sunset-User-Id"

// newTestServer assembles the full HTTP surface over an in-memory
// record store and a filesystem object store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users, err := sqlite.NewUserRepository(ctx, db, "users")
	require.NoError(t, err)
	products, err := sqlite.NewProductRepository(ctx, db, "products")
	require.NoError(t, err)
	orders, err := sqlite.NewOrderRepository(ctx, db, "orders")
	require.NoError(t, err)

	// The signed URLs embed the server's own URL, so the server starts
	// first and the router is swapped in once everything is wired.
	var router http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	key, err := crypto.DeriveKey("test-master-secret", "transfer-url-signing")
	require.NoError(t, err)
	sig := signer.New(key, ts.URL)

	store, err := storage.NewLocalStore(t.TempDir(), ts.URL, sig, logger)
	require.NoError(t, err)

	userService := service.NewUserService(users, logger)
	productService := service.NewProductService(service.ProductServiceConfig{
		Products: products,
		Store:    store,
		Logger:   logger,
	})
	orderService := service.NewOrderService(orders, logger)
	adminService := service.NewAdminService(users, products, logger)

	router = handler.NewRouter(handler.RouterConfig{
		Server: config.ServerConfig{
			IdentityHeader: identityHeader,
			MaxBodySize:    1 << 20,
		},
		Users:    handler.NewUserHandler(userService, logger),
		Products: handler.NewProductHandler(productService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
		Files:    handler.NewFilesHandler(store, sig, logger),
		Logger:   logger,
	})

	return ts
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	create := map[string]any{"id": "user-1", "email": "ada@example.com", "name": "Ada Lovelace"}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/users", create, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "user-1", body["id"])
	assert.Equal(t, "ada", body["username"])

	// Provisioning again returns the existing record with 200.
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/users", create, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada@example.com", body["email"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/users/user-1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ada", body["firstName"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/users/undefined", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user ID", body["message"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/users/ghost", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["message"])
}

func TestUserUpdate(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/users",
		map[string]any{"id": "user-1", "email": "ada@example.com"}, nil)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/users/user-1",
		map[string]any{"bio": "mathematician", "country": "UK"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mathematician", body["bio"])
	assert.Equal(t, "UK", body["country"])
	// Untouched fields survive the merge.
	assert.Equal(t, "ada@example.com", body["email"])

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/users/user-1",
		map[string]any{"id": "user-2", "bio": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User ID mismatch", body["message"])

	resp, body = doJSON(t, http.MethodPut, ts.URL+"/users/ghost",
		map[string]any{"bio": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["message"])
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":     "Icon Pack",
		"price":    9.99,
		"category": "design",
		"sellerId": "seller-1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := body["id"].(string)
	assert.Equal(t, "active", body["status"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/products/"+productID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Icon Pack", body["name"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/products", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/products/"+productID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Product deleted successfully", body["message"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/products/"+productID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", body["message"])

	// Deleting again stays 404, not 500.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/products/"+productID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/products",
		map[string]any{"name": "Bad", "price": -1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/products/upload-url",
		map[string]any{"fileName": "pack.zip"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "fileName and contentType are required", body["message"])
}

// TestFileRoundTrip walks the full content path: issue an upload URL,
// PUT bytes to it, attach the key to a product, issue a download URL
// and fetch the same bytes back.
func TestFileRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/products/upload-url",
		map[string]any{"fileName": "pack.zip", "contentType": "application/zip"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	uploadURL := body["uploadURL"].(string)
	key := body["key"].(string)
	assert.Equal(t, "pack.zip", key)

	content := "zip-bytes-go-here"
	req, err := http.NewRequest(http.MethodPut, uploadURL, strings.NewReader(content))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":    "Icon Pack",
		"price":   9.99,
		"fileKey": key,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := body["id"].(string)

	resp, body = doJSON(t, http.MethodGet, ts.URL+fmt.Sprintf("/products/%s/download", productID), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	downloadURL := body["downloadUrl"].(string)

	getResp, err := http.Get(downloadURL)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	got, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
	assert.Equal(t, "application/zip", getResp.Header.Get("Content-Type"))
	assert.Contains(t, getResp.Header.Get("Content-Disposition"), "Icon_Pack.zip")
}

func TestDownloadFallsBackToImageKey(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":     "Wallpaper",
		"price":    1,
		"imageKey": "wall.png",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := body["id"].(string)

	resp, body = doJSON(t, http.MethodGet, ts.URL+fmt.Sprintf("/products/%s/download", productID), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["downloadUrl"])
}

func TestDownloadWithoutAsset(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/products",
		map[string]any{"name": "Empty", "price": 1}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := body["id"].(string)

	resp, body = doJSON(t, http.MethodGet, ts.URL+fmt.Sprintf("/products/%s/download", productID), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product has no downloadable file", body["message"])
}

func TestDeleteCascadesToStoredObjects(t *testing.T) {
	ts := newTestServer(t)

	// Upload a file.
	_, body := doJSON(t, http.MethodPost, ts.URL+"/products/upload-url",
		map[string]any{"fileName": "pack.zip", "contentType": "application/zip"}, nil)
	uploadURL := body["uploadURL"].(string)
	req, _ := http.NewRequest(http.MethodPut, uploadURL, strings.NewReader("bytes"))
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()

	_, body = doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":    "Pack",
		"price":   1,
		"fileKey": "pack.zip",
	}, nil)
	productID := body["id"].(string)

	_, body = doJSON(t, http.MethodGet, ts.URL+fmt.Sprintf("/products/%s/download", productID), nil, nil)
	downloadURL := body["downloadUrl"].(string)

	resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/products/"+productID, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The stored object is gone with the record.
	getResp, err := http.Get(downloadURL)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestOrders(t *testing.T) {
	ts := newTestServer(t)
	buyer := map[string]string{identityHeader: "buyer-1"}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/orders", map[string]any{
		"products":    []map[string]any{{"productId": "prod-1", "quantity": 2, "price": 9.99}},
		"totalAmount": 19.98,
	}, buyer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "buyer-1", body["userId"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/orders", nil, buyer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Another buyer sees nothing.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/orders", nil)
	require.NoError(t, err)
	req.Header.Set(identityHeader, "buyer-2")
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var orders []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&orders))
	assert.Empty(t, orders)

	// No identity at all is a validation failure.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/orders", map[string]any{"totalAmount": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminDeleteAll(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/users", map[string]any{"id": "user-1", "email": "a@b.c"}, nil)
	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{"name": "A", "price": 1}, nil)
	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{"name": "B", "price": 2}, nil)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/admin/delete-all", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "All data deleted successfully", body["message"])
	assert.Equal(t, float64(1), body["usersDeleted"])
	assert.Equal(t, float64(2), body["productsDeleted"])

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/users/user-1", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImagePassthrough(t *testing.T) {
	ts := newTestServer(t)

	// Store an image through the signed upload path.
	_, body := doJSON(t, http.MethodPost, ts.URL+"/products/image-upload-url",
		map[string]any{"fileName": "wall.png", "contentType": "image/png"}, nil)
	uploadURL := body["uploadURL"].(string)
	req, _ := http.NewRequest(http.MethodPut, uploadURL, strings.NewReader("png-bytes"))
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	putResp.Body.Close()

	resp, err := http.Get(ts.URL + "/images/wall.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "png-bytes", string(got))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000", resp.Header.Get("Cache-Control"))

	missing, err := http.Get(ts.URL + "/images/nope.png")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestForgedSignedURLRejected(t *testing.T) {
	ts := newTestServer(t)

	// Sign with a key nobody on the server holds.
	rogue := signer.New([]byte("wrong-key-wrong-key-wrong-key-00"), ts.URL)
	badURL := rogue.DownloadURL("public/pack.zip", time.Minute, "")

	resp, err := http.Get(badURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/products", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
