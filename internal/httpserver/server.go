// Package httpserver serves the inventory endpoints the client talks to,
// backed by the DuckDB product store. It exists for local development.
package httpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/stockroom/internal/duckdb"
	"github.com/tinytelemetry/stockroom/internal/inventory"
	"github.com/tinytelemetry/stockroom/internal/model"

	"github.com/gin-gonic/gin"
)

// ProductStore is the narrow store contract required by the HTTP API.
type ProductStore interface {
	CreateProduct(ctx context.Context, name string, price float64, reference string) (duckdb.Product, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	CountProducts(ctx context.Context) (int, error)
	ProductsPage(ctx context.Context, format model.ColumnFormat, pageNumber, rowsPerPage int) ([]model.Record, int, error)
}

// Server is the development inventory service.
type Server struct {
	addr      string
	host      string // advertised by /utils/host; empty means the request's Host
	store     ProductStore
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a server for store listening on addr.
func NewServer(addr string, store ProductStore) *Server {
	if addr == "" {
		addr = "127.0.0.1:5000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetAdvertisedHost fixes the host /utils/host reports.
func (s *Server) SetAdvertisedHost(host string) {
	s.host = host
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/api/health", s.handleHealth)
	r.GET(inventory.PathHost, s.handleHost)
	r.POST(inventory.PathCheckReference, s.handleCheckReference)
	r.POST(inventory.PathCreateProduct, s.handleCreateProduct)
	r.POST(inventory.PathProductsPage, s.handleProductsPage)
	return r
}

// Start begins serving HTTP requests in the background.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("httpserver: serve: %v", err)
		}
	}()
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request with the client's request id.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(inventory.RequestIDHeader)
		if rid != "" {
			c.Header(inventory.RequestIDHeader, rid)
		}
		c.Next()
		log.Printf("httpserver: %s %s %d %s rid=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond), rid)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.store.CountProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(s.startTime).String(),
		"product_count": count,
	})
}

func (s *Server) handleHost(c *gin.Context) {
	host := s.host
	if host == "" {
		host = c.Request.Host
	}
	c.JSON(http.StatusOK, gin.H{"host": host})
}

func (s *Server) handleCheckReference(c *gin.Context) {
	reference := strings.TrimSpace(c.PostForm("reference"))
	if reference == "" {
		c.JSON(http.StatusOK, model.ReferenceCheck{
			Valid:    false,
			Messages: model.ErrorBatch("Reference is required."),
		})
		return
	}

	exists, err := s.store.ReferenceExists(c.Request.Context(), reference)
	if err != nil {
		log.Printf("httpserver: check reference %q: %v", reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check reference"})
		return
	}
	if exists {
		c.JSON(http.StatusOK, model.ReferenceCheck{
			Valid:    false,
			Messages: model.ErrorBatch("Reference " + strconv.Quote(reference) + " is already in use."),
		})
		return
	}
	c.JSON(http.StatusOK, model.ReferenceCheck{
		Valid:    true,
		Messages: model.SuccessBatch("Reference " + strconv.Quote(reference) + " is available."),
	})
}

// validateProduct returns one message per invalid field.
func validateProduct(name, price, reference string) (float64, []string) {
	var problems []string
	if name == "" {
		problems = append(problems, "Name is required.")
	}
	value, err := model.ParsePrice(price)
	if err != nil {
		problems = append(problems, "Price must be a non-negative number.")
	}
	if reference == "" {
		problems = append(problems, "Reference is required.")
	}
	return value, problems
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	priceText := strings.TrimSpace(c.PostForm("price"))
	reference := strings.TrimSpace(c.PostForm("reference"))

	price, problems := validateProduct(name, priceText, reference)
	if len(problems) > 0 {
		c.JSON(http.StatusOK, model.ErrorBatch(problems...))
		return
	}

	p, err := s.store.CreateProduct(c.Request.Context(), name, price, reference)
	switch {
	case errors.Is(err, duckdb.ErrDuplicateReference):
		c.JSON(http.StatusOK, model.ErrorBatch("Reference "+strconv.Quote(reference)+" is already in use."))
		return
	case err != nil:
		log.Printf("httpserver: create product %q: %v", reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusOK, model.SuccessBatch("Product "+strconv.Quote(p.Name)+" created."))
}

func (s *Server) handleProductsPage(c *gin.Context) {
	var req model.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	records, pages, err := s.store.ProductsPage(c.Request.Context(), req.DesiredResultsFormat, req.PageNumber, req.RowsPerPage)
	if err != nil {
		if errors.Is(err, duckdb.ErrUnknownColumn) || req.RowsPerPage <= 0 || req.PageNumber < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("httpserver: products page %d: %v", req.PageNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, model.ProductPage{Products: records, NumberOfPages: pages})
}
