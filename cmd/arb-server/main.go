// Package main provides the evaluation service: the same scenario protocol
// as the arb-filter binary, served over WebSocket with Prometheus metrics
// and optional journaling of every verdict to PostgreSQL and ClickHouse.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"solana-arb-filter/internal/codec"
	"solana-arb-filter/internal/evaluator"
	"solana-arb-filter/internal/journal"
	"solana-arb-filter/internal/observability"
	"solana-arb-filter/internal/storage"
	chstore "solana-arb-filter/internal/storage/clickhouse"
	"solana-arb-filter/internal/storage/memory"
	"solana-arb-filter/internal/storage/migrations"
	pgstore "solana-arb-filter/internal/storage/postgres"
)

// Server serves scenario evaluation over WebSocket.
type Server struct {
	journal *journal.Journal
	logger  *log.Logger

	upgrader websocket.Upgrader

	// Stats
	mu          sync.Mutex
	started     time.Time
	connections int
	evaluated   int64
	profitable  int64
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("ARB_SERVER_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[arb-server] ", log.LstdFlags)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores and journal
	evalStore, pointStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		journal: journal.New(evalStore, pointStore),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/ws", server.handleWS)

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the journal stores. With --use-memory both stores are
// in-memory; otherwise evaluations go to PostgreSQL and, when a ClickHouse
// DSN is configured, verdict points go to ClickHouse.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.EvaluationStore, storage.VerdictPointStore, func(), error) {
	if useMemory {
		return memory.NewEvaluationStore(), memory.NewVerdictPointStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	evalStore := pgstore.NewEvaluationStore(pool)

	if clickhouseDSN == "" {
		return evalStore, nil, pool.Close, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	pointStore := chstore.NewVerdictPointStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return evalStore, pointStore, cleanup, nil
}

// handleWS upgrades the connection and evaluates one scenario per text
// message. The filter's fail-fast contract maps to the connection here: the
// first malformed record closes the connection with a policy violation, but
// other connections and the server itself keep running.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	observability.DefaultMetrics.WSConnections.Inc()
	defer observability.DefaultMetrics.WSConnections.Dec()

	s.mu.Lock()
	s.connections++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.connections--
		s.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("read message: %v", err)
			}
			return
		}
		if msgType != websocket.TextMessage || strings.TrimSpace(string(msg)) == "" {
			continue
		}

		observability.DefaultMetrics.WSMessagesHandled.Inc()

		if err := s.evaluateMessage(ctx, conn, msg); err != nil {
			s.logger.Printf("closing connection: %v", err)
			deadline := time.Now().Add(time.Second)
			closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, deadline)
			return
		}
	}
}

// evaluateMessage runs one record through decode → evaluate → encode → write.
func (s *Server) evaluateMessage(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	start := time.Now()

	req, err := codec.Decode(msg)
	if err != nil {
		observability.RecordDecodeFailure()
		return err
	}

	verdict, err := evaluator.Evaluate(req)
	if err != nil {
		return err
	}

	out, err := codec.Encode(verdict)
	if err != nil {
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
		return fmt.Errorf("write verdict: %w", err)
	}

	observability.RecordScenarioEvaluated(verdict.Profitable, time.Since(start).Seconds())

	s.mu.Lock()
	s.evaluated++
	if verdict.Profitable {
		s.profitable++
	}
	s.mu.Unlock()

	if err := s.journal.Record(ctx, req, verdict); err != nil {
		s.logger.Printf("journal record failed: %v", err)
	}

	return nil
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Connections int    `json:"connections"`
	Evaluated   int64  `json:"evaluated"`
	Profitable  int64  `json:"profitable"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		Connections: s.connections,
		Evaluated:   s.evaluated,
		Profitable:  s.profitable,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
