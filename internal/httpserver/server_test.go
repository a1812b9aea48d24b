package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/stockroom/internal/duckdb"
	"github.com/tinytelemetry/stockroom/internal/inventory"
	"github.com/tinytelemetry/stockroom/internal/model"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *duckdb.Store, http.Handler) {
	t.Helper()
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := NewServer("", store)
	srv.startTime = time.Now()
	return srv, store, srv.Handler()
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBatch(t *testing.T, w *httptest.ResponseRecorder) model.MessageBatch {
	t.Helper()
	var batch model.MessageBatch
	if err := json.Unmarshal(w.Body.Bytes(), &batch); err != nil {
		t.Fatalf("unmarshal batch: %v; body: %s", err, w.Body.String())
	}
	return batch
}

func TestHealthEndpoint(t *testing.T) {
	_, _, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
}

func TestHostEndpoint(t *testing.T) {
	srv, _, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, inventory.PathHost, nil)
	req.Host = "inventory.local:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"host":"inventory.local:5000"`) {
		t.Errorf("host body = %s", w.Body.String())
	}

	srv.SetAdvertisedHost("assets.local")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"host":"assets.local"`) {
		t.Errorf("advertised host body = %s", w.Body.String())
	}
}

func TestHostEndpoint_WrongMethod(t *testing.T) {
	_, _, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, inventory.PathHost, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("host POST status = %d, want 405 or 404", w.Code)
	}
}

func TestCheckReference(t *testing.T) {
	_, store, h := newTestServer(t)
	if _, err := store.CreateProduct(context.Background(), "Bolt", 0.1, "B-1"); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	tests := []struct {
		name     string
		ref      string
		wantOK   bool
		wantCat  model.Category
		wantText string
	}{
		{name: "free", ref: "B-2", wantOK: true, wantCat: model.CategorySuccess, wantText: "available"},
		{name: "taken", ref: "B-1", wantOK: false, wantCat: model.CategoryError, wantText: "already in use"},
		{name: "blank", ref: "  ", wantOK: false, wantCat: model.CategoryError, wantText: "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(t, h, inventory.PathCheckReference, url.Values{"reference": {tt.ref}})
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
			}
			var got model.ReferenceCheck
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Valid != tt.wantOK || got.Messages.Category != tt.wantCat {
				t.Fatalf("check = %+v", got)
			}
			if !strings.Contains(got.Messages.Messages[0], tt.wantText) {
				t.Errorf("message = %q, want substring %q", got.Messages.Messages[0], tt.wantText)
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	_, store, h := newTestServer(t)

	w := postForm(t, h, inventory.PathCreateProduct, url.Values{
		"name": {"Bolt"}, "price": {"0.10"}, "reference": {"B-1"},
	})
	if batch := decodeBatch(t, w); batch.Category != model.CategorySuccess {
		t.Fatalf("create batch = %+v", batch)
	}

	w = postForm(t, h, inventory.PathCreateProduct, url.Values{
		"name": {"Bolt again"}, "price": {"1"}, "reference": {"B-1"},
	})
	if batch := decodeBatch(t, w); batch.Category != model.CategoryError {
		t.Fatalf("duplicate batch = %+v", batch)
	}

	count, err := store.CountProducts(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("CountProducts = %d, %v, want 1", count, err)
	}
}

func TestCreateProduct_ValidationCollectsAllProblems(t *testing.T) {
	_, _, h := newTestServer(t)

	w := postForm(t, h, inventory.PathCreateProduct, url.Values{
		"name": {""}, "price": {"-3"}, "reference": {""},
	})
	batch := decodeBatch(t, w)
	if batch.Category != model.CategoryError || len(batch.Messages) != 3 {
		t.Fatalf("batch = %+v, want 3 error messages", batch)
	}
}

func TestCreateProduct_NonFinitePrice(t *testing.T) {
	_, store, h := newTestServer(t)

	for _, price := range []string{"NaN", "Inf", "-Inf", "1e300"} {
		w := postForm(t, h, inventory.PathCreateProduct, url.Values{
			"name": {"Bolt"}, "price": {price}, "reference": {"B-" + price},
		})
		if w.Code != http.StatusOK {
			t.Fatalf("price %s: status = %d; body: %s", price, w.Code, w.Body.String())
		}
		batch := decodeBatch(t, w)
		if batch.Category != model.CategoryError || len(batch.Messages) != 1 || !strings.Contains(batch.Messages[0], "Price") {
			t.Errorf("price %s: batch = %+v", price, batch)
		}
	}

	count, err := store.CountProducts(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("CountProducts = %d, %v, want 0", count, err)
	}
}

func TestProductsPage(t *testing.T) {
	_, store, h := newTestServer(t)
	ctx := context.Background()
	for _, ref := range []string{"A", "B", "C"} {
		if _, err := store.CreateProduct(ctx, "Item "+ref, 1, ref); err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
	}

	body := `{"desiredResultsFormat":{"reference":"Reference","name":"Name"},"pageNumber":1,"rowsPerPage":2}`
	req := httptest.NewRequest(http.MethodPost, inventory.PathProductsPage, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	var page model.ProductPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.NumberOfPages != 2 || len(page.Products) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if page.Products[0].Text("Reference") != "C" || page.Products[0].Text("Name") != "Item C" {
		t.Errorf("record = %v", page.Products[0])
	}
}

func TestProductsPage_BadRequests(t *testing.T) {
	_, _, h := newTestServer(t)

	for name, body := range map[string]string{
		"not json":       `{`,
		"unknown column": `{"desiredResultsFormat":{"password":"P"},"pageNumber":0,"rowsPerPage":5}`,
		"zero rows":      `{"desiredResultsFormat":{"name":"Name"},"pageNumber":0,"rowsPerPage":0}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, inventory.PathProductsPage, bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	_, _, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, inventory.PathHost, nil)
	req.Header.Set(inventory.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get(inventory.RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

// TestClientRoundTrip drives the real client against the server.
func TestClientRoundTrip(t *testing.T) {
	_, _, h := newTestServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx := context.Background()
	client := inventory.NewClient(ts.URL, 5*time.Second)

	host, err := client.Host(ctx)
	if err != nil || host == "" {
		t.Fatalf("Host = %q, %v", host, err)
	}

	check, err := client.CheckReference(ctx, "HB-M6")
	if err != nil || !check.Valid {
		t.Fatalf("CheckReference = %+v, %v", check, err)
	}

	batch, err := client.CreateProduct(ctx, model.ProductForm{Name: "Hex bolt", Price: "0.12", Reference: "HB-M6"})
	if err != nil || batch.Category != model.CategorySuccess {
		t.Fatalf("CreateProduct = %+v, %v", batch, err)
	}

	page, err := client.ProductsPage(ctx, model.PageRequest{
		DesiredResultsFormat: model.ColumnFormat{{Key: "reference", Label: "Reference"}, {Key: "price", Label: "Price"}},
		PageNumber:           0,
		RowsPerPage:          10,
	})
	if err != nil {
		t.Fatalf("ProductsPage: %v", err)
	}
	if page.NumberOfPages != 1 || page.Products[0].Text("Price") != "0.12" {
		t.Errorf("page = %+v", page)
	}
}

func TestStartStop(t *testing.T) {
	store, err := duckdb.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	srv := NewServer("127.0.0.1:0", store)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
