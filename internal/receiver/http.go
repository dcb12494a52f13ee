package receiver

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/state"
)

// maxLogsBody bounds a single /v1/logs request body.
const maxLogsBody = 8 << 20

// HTTPReceiver serves the OTLP logs endpoint over HTTP, accepting both
// protobuf and JSON encodings.
type HTTPReceiver struct {
	cfg      config.ReceiverConfig
	ingest   *ingestor
	server   *http.Server
	listener net.Listener
}

// NewHTTPReceiver creates an HTTP receiver storing into the given store.
func NewHTTPReceiver(cfg config.ReceiverConfig, store state.Store, logger Logger) *HTTPReceiver {
	if logger == nil {
		logger = NopLogger{}
	}
	return &HTTPReceiver{
		cfg:    cfg,
		ingest: &ingestor{store: store, logger: logger},
	}
}

// Start binds the configured port and serves until Stop is called.
func (r *HTTPReceiver) Start() error {
	if r.listener == nil {
		addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.HTTPPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("binding HTTP listener on %s: %w", addr, err)
		}
		r.listener = lis
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logs", r.handleLogs)
	r.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		_ = r.server.Serve(r.listener)
	}()

	return nil
}

// Stop closes the HTTP server.
func (r *HTTPReceiver) Stop() {
	if r.server != nil {
		_ = r.server.Close()
	}
}

// Addr returns the bound listener address, for tests using ephemeral ports.
func (r *HTTPReceiver) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

func (r *HTTPReceiver) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxLogsBody))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	var export collogspb.ExportLogsServiceRequest

	contentType := req.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/x-protobuf"):
		if err := proto.Unmarshal(body, &export); err != nil {
			http.Error(w, "invalid protobuf payload", http.StatusBadRequest)
			return
		}
	case strings.HasPrefix(contentType, "application/json"):
		if err := protojson.Unmarshal(body, &export); err != nil {
			http.Error(w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	r.ingest.consume(export.GetResourceLogs())

	resp := &collogspb.ExportLogsServiceResponse{}
	data, err := proto.Marshal(resp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
