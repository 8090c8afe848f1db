package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/namecanon/pkg/kit"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/normalize"
)

// NewRouter returns an http.Handler with all namecanon API routes. defaults
// is the config a request starts from before its own options are applied.
func NewRouter(eng *normalize.Engine, defaults normalize.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		eps:      NewEndpoints(eng, logger),
		reg:      eng.Registry(),
		defaults: defaults,
	}

	mux.HandleFunc("GET /v1/normalize/batch", methodNotAllowed)
	mux.HandleFunc("POST /v1/normalize/batch", h.handleNormalizeBatch)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalize)
	mux.HandleFunc("GET /v1/classify/{token}", h.handleClassify)
	mux.HandleFunc("GET /v1/lexicons", h.handleListLexicons)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return requestID(cors(mux))
}

type handler struct {
	eps      *Endpoints
	reg      *lexicon.Registry
	defaults normalize.Config
}

// --- normalize ---

type httpNormalizeRequest struct {
	Text   string           `json:"text"`
	Config normalize.Config `json:"config"`
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024) // 64 KiB max
	req := httpNormalizeRequest{Config: h.defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.eps.Normalize(r.Context(), &normalizeReq{Text: req.Text, Config: req.Config})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- normalize batch ---

type httpBatchRequest struct {
	Texts  []string         `json:"texts"`
	Config normalize.Config `json:"config"`
}

func (h *handler) handleNormalizeBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024) // 1 MiB max
	req := httpBatchRequest{Config: h.defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.eps.NormalizeBatch(r.Context(), &normalizeBatchReq{Texts: req.Texts, Config: req.Config})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- classify single token ---

func (h *handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	tok := r.PathValue("token")
	if tok == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	resp, err := h.eps.Classify(r.Context(), &classifyReq{Token: tok, Language: r.URL.Query().Get("lang")})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- list lexicons ---

func (h *handler) handleListLexicons(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.ListLexicons(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status       string   `json:"status"`
	Languages    []string `json:"languages"`
	Lexicons     int      `json:"lexicons"`
	TotalEntries int      `json:"total_entries"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Languages:    h.reg.Languages(),
		Lexicons:     h.reg.DictCount(),
		TotalEntries: h.reg.TotalEntries(),
	})
}

// --- helpers ---

// statusFor maps caller mistakes to 400 and everything else, including a
// missing lexicon set, to 500.
func statusFor(err error) int {
	var ce *normalize.ConfigurationError
	if errors.As(err, &ce) || errors.Is(err, ErrBadRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// requestID carries X-Request-ID into the endpoint context and echoes it.
// Endpoints generate one when the header is absent.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := kit.WithTransport(r.Context(), "http")
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
			ctx = kit.WithRequestID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
