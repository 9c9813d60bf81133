// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"

	"github.com/Rahulcodess/macro-factor/internal/models"
	"github.com/Rahulcodess/macro-factor/internal/nutrition"
	"github.com/Rahulcodess/macro-factor/internal/storage"
)

type Config struct {
	Transport string
	Host      string
	Port      int
	DBPath    string

	// Used when a request carries no profile information.
	ProfileDefaults models.ProfileDefaults
}

type EstimateServer struct {
	server     *server.Server
	httpServer *http.Server
	storage    *storage.SQLiteStorage
	reconciler *nutrition.Reconciler
	products   *nutrition.ProductClient
	config     *Config
}

func NewEstimateServer(cfg *Config) (*EstimateServer, error) {
	// Initialize database
	stor, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	products := nutrition.NewProductClient()
	estServer := &EstimateServer{
		storage: stor,
		reconciler: nutrition.NewReconciler(
			nutrition.NewNaturalLanguageClient(),
			products,
			nutrition.NewFallbackClient(cfg.ProfileDefaults),
		),
		products: products,
		config:   cfg,
	}

	// Create HTTP server with MCP handler
	mux := http.NewServeMux()

	// Create MCP server (without transport, we'll handle HTTP manually)
	mcpServer, err := server.NewServer(
		nil, // We'll handle transport manually
		server.WithServerInfo(protocol.Implementation{
			Name:    "macro-factor",
			Version: "1.0.0",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	estServer.server = mcpServer

	// Register tools
	if err := estServer.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	// Set up HTTP handlers
	mux.HandleFunc("/", estServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	estServer.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return estServer, nil
}

func (s *EstimateServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	// Simple HTTP-based MCP protocol handler
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}

	// Decode the MCP request
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Route to appropriate handler based on tool name
	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "estimate_food":
		result, err = s.handleEstimateFood(r.Context(), &request)
	case "log_meal":
		result, err = s.handleLogMeal(r.Context(), &request)
	case "get_meals":
		result, err = s.handleGetMeals(&request)
	case "lookup_barcode":
		result, err = s.handleLookupBarcode(r.Context(), &request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Send response
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *EstimateServer) Start(ctx context.Context) error {
	log.Printf("Starting macro-factor server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *EstimateServer) Stop() error {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *EstimateServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
