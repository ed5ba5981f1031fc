package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/observability"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrAnswersExhausted ends a replay whose answers ran out before the value
// was established.
var ErrAnswersExhausted = errors.New("replay answers exhausted")

// CallRequest is the body of POST /tools/{name}. Exactly one of Value and
// Answers is set: Value is validated directly, Answers are replayed round by
// round as if a peer typed them.
type CallRequest struct {
	Value   any   `json:"value,omitempty"`
	Answers []any `json:"answers,omitempty"`
}

// CallResponse reports an established value.
type CallResponse struct {
	Tool       string         `json:"tool"`
	Value      any            `json:"value"`
	Outcome    domain.Outcome `json:"outcome"`
	Transcript string         `json:"transcript,omitempty"`
}

// ErrorResponse reports a classified failure.
type ErrorResponse struct {
	Error      string         `json:"error"`
	Kind       string         `json:"kind,omitempty"`
	Violation  string         `json:"violation,omitempty"`
	Field      string         `json:"field,omitempty"`
	Outcome    domain.Outcome `json:"outcome,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
}

// ToolInfo describes one registered tool.
type ToolInfo struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

// Server serves a tool registry over HTTP.
type Server struct {
	registry *tool.Registry
	store    ports.TranscriptStore
	metrics  *observability.Metrics
	logger   *slog.Logger
	session  []elicit.Option
	title    string
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithStore records replays and serves /transcripts from store.
func WithStore(store ports.TranscriptStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics feeds replay sessions into m and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithSessionOptions applies opts to every replay.
func WithSessionOptions(opts ...elicit.Option) Option {
	return func(s *Server) {
		s.session = append(s.session, opts...)
	}
}

// WithInfo sets the title and version of the OpenAPI document.
func WithInfo(title, version string) Option {
	return func(s *Server) {
		s.title = title
		s.version = version
	}
}

// NewHandler creates the HTTP handler for registry.
func NewHandler(registry *tool.Registry, opts ...Option) http.Handler {
	s := &Server{
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		title:    "elicitation",
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/openapi.json", s.OpenAPI)
	r.Route("/tools", func(r chi.Router) {
		r.Get("/", s.ListTools)
		r.Get("/{name}", s.DescribeTool)
		r.Post("/{name}", s.CallTool)
	})
	if s.store != nil {
		r.Get("/transcripts", s.ListTranscripts)
		r.Get("/transcripts/{id}", s.GetTranscript)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	tools := s.registry.List()
	out := make([]ToolInfo, len(tools))
	for i, t := range tools {
		out[i] = info(t)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// DescribeTool handles GET /tools/{name}. It answers with Markdown when the
// client accepts text/markdown.
func (s *Server) DescribeTool(w http.ResponseWriter, r *http.Request) {
	t, ok := s.registry.Lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: tool.ErrUnknownTool.Error()})
		return
	}
	if r.Header.Get("Accept") == "text/markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, t.Markdown())
		return
	}
	s.writeJSON(w, http.StatusOK, info(t))
}

// CallTool handles POST /tools/{name}.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	t, ok := s.registry.Lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: tool.ErrUnknownTool.Error()})
		return
	}

	var body CallRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.logger.Warn("invalid request body", "tool", t.Name, "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if (body.Value == nil) == (body.Answers == nil) {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "exactly one of value and answers is required"})
		return
	}

	if body.Value != nil {
		v, err := t.Construct(normalize(body.Value))
		if err != nil {
			s.writeError(w, err, "")
			return
		}
		s.writeJSON(w, http.StatusOK, CallResponse{Tool: t.Name, Value: v, Outcome: domain.OutcomeSuccess})
		return
	}

	id, transcript, opts := s.replayOptions()
	v, err := t.Call(r.Context(), replayChannel(body.Answers), opts...)
	if err != nil {
		s.logger.Info("replay failed", "tool", t.Name, "session", id, "outcome", elicit.OutcomeOf(err), "err", err)
		s.writeError(w, err, transcript)
		return
	}
	s.writeJSON(w, http.StatusOK, CallResponse{Tool: t.Name, Value: v, Outcome: domain.OutcomeSuccess, Transcript: transcript})
}

func (s *Server) replayOptions() (id, transcript string, opts []elicit.Option) {
	id = newID()
	opts = append(opts, s.session...)
	opts = append(opts, elicit.WithSessionID(id), elicit.WithLogger(s.logger))
	if s.metrics != nil {
		opts = append(opts, elicit.WithHooks(s.metrics.Hooks()))
	}
	if s.store != nil {
		opts = append(opts, elicit.WithRecorder(s.store))
		transcript = id
	}
	return id, transcript, opts
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// replayChannel plays the answers in order and fails once they run out.
func replayChannel(answers []any) *memory.Channel {
	steps := make([]memory.Step, 0, len(answers)+1)
	for _, a := range answers {
		if s, ok := a.(string); ok {
			steps = append(steps, memory.Reply(s))
			continue
		}
		steps = append(steps, memory.ReplyData(normalize(a)))
	}
	steps = append(steps, memory.Fail(ErrAnswersExhausted))
	return memory.NewChannel(steps...)
}

// normalize turns json.Number into float64 or int64 so constructors see the
// same shapes as from any other JSON decoder.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

// ListTranscripts handles GET /transcripts.
func (s *Server) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list transcripts failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetTranscript handles GET /transcripts/{id}.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, domain.ErrTranscriptNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case err != nil:
		s.logger.Error("load transcript failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusOK, t)
	}
}

func info(t tool.Tool) ToolInfo {
	return ToolInfo{Name: t.Name, Type: t.TypeName, Description: t.Description, Schema: t.Schema}
}

func (s *Server) writeError(w http.ResponseWriter, err error, transcript string) {
	body := ErrorResponse{
		Error:      err.Error(),
		Kind:       domain.TerminalKind(err).String(),
		Field:      domain.FieldPath(err),
		Outcome:    elicit.OutcomeOf(err),
		Transcript: transcript,
	}
	if v, ok := domain.ViolationOf(err); ok {
		body.Violation = string(v)
	}
	status := http.StatusUnprocessableEntity
	if body.Outcome == domain.OutcomeCancelled {
		status = http.StatusRequestTimeout
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
