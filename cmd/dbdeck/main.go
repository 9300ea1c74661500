// Command dbdeck exposes the command router over HTTP for local
// development and integration testing. The production presentation layer
// talks to the router in-process; this harness stands in for it.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dbdeck/dbdeck/internal/database"
	"github.com/dbdeck/dbdeck/internal/kvstore"
	"github.com/dbdeck/dbdeck/internal/router"
)

// rpcRequest is the harness wire shape: an operation name plus its
// positional arguments.
type rpcRequest struct {
	Op   string `json:"op"`
	Args []any  `json:"args"`
}

func main() {
	addr := os.Getenv("DBDECK_ADDR")
	if addr == "" {
		addr = "localhost:8790"
	}

	dbRegistry := database.NewRegistry()
	kvRegistry := kvstore.NewRegistry()
	rt := router.New(dbRegistry, kvRegistry)

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		envelope := rt.Dispatch(r.Context(), req.Op, req.Args)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(envelope); err != nil {
			log.Printf("[ROUTER] Failed to write response: %v", err)
		}
	})

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("Listening on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	if err := dbRegistry.Close(); err != nil {
		log.Printf("Error closing database sessions: %v", err)
	}
	if err := kvRegistry.Close(); err != nil {
		log.Printf("Error closing key-value sessions: %v", err)
	}
}
