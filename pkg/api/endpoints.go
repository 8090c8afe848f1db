package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/namecanon/pkg/kit"
	"github.com/hazyhaar/namecanon/pkg/langid"
	"github.com/hazyhaar/namecanon/pkg/lexicon"
	"github.com/hazyhaar/namecanon/pkg/normalize"
	"github.com/hazyhaar/namecanon/pkg/role"
)

// MaxBatch bounds the number of texts in one batch request.
const MaxBatch = 100

// ErrBadRequest marks request errors caused by the caller.
var ErrBadRequest = errors.New("bad request")

// Shared request/response types used by both HTTP and MCP transports.

type normalizeReq struct {
	Text   string
	Config normalize.Config
}

type normalizeBatchReq struct {
	Texts  []string
	Config normalize.Config
}

type classifyReq struct {
	Token    string
	Language string
}

type batchResponse struct {
	Results []*normalize.Result `json:"results"`
}

type classifyResponse struct {
	Token    string        `json:"token"`
	Language string        `json:"language"`
	Role     role.Role     `json:"role"`
	Evidence role.Evidence `json:"evidence"`
}

type lexiconsResponse struct {
	Languages []lexicon.Stats    `json:"languages"`
	Lexicons  []lexicon.DictInfo `json:"lexicons"`
}

// Endpoints are the transport-agnostic actions of the service.
type Endpoints struct {
	Normalize      kit.Endpoint
	NormalizeBatch kit.Endpoint
	Classify       kit.Endpoint
	ListLexicons   kit.Endpoint
}

// NewEndpoints builds the endpoints over eng, each wrapped with request ids
// and logging.
func NewEndpoints(eng *normalize.Engine, logger *slog.Logger) *Endpoints {
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	return &Endpoints{
		Normalize:      wrap("normalize", normalizeEndpoint(eng)),
		NormalizeBatch: wrap("normalize_batch", normalizeBatchEndpoint(eng)),
		Classify:       wrap("classify", classifyEndpoint(eng)),
		ListLexicons:   wrap("list_lexicons", listLexiconsEndpoint(eng.Registry())),
	}
}

func normalizeEndpoint(eng *normalize.Engine) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*normalizeReq)
		return eng.Normalize(ctx, req.Text, req.Config)
	}
}

// normalizeBatchEndpoint is all-or-nothing: the first failing text fails the batch.
func normalizeBatchEndpoint(eng *normalize.Engine) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*normalizeBatchReq)
		if len(req.Texts) == 0 {
			return nil, fmt.Errorf("%w: texts array is empty", ErrBadRequest)
		}
		if len(req.Texts) > MaxBatch {
			return nil, fmt.Errorf("%w: too many texts (max %d, got %d)", ErrBadRequest, MaxBatch, len(req.Texts))
		}
		results := make([]*normalize.Result, len(req.Texts))
		for i, text := range req.Texts {
			res, err := eng.Normalize(ctx, text, req.Config)
			if err != nil {
				return nil, fmt.Errorf("text %d: %w", i, err)
			}
			results[i] = res
		}
		return batchResponse{Results: results}, nil
	}
}

func classifyEndpoint(eng *normalize.Engine) kit.Endpoint {
	classifier := role.NewClassifier(eng.Registry())
	return func(_ context.Context, request any) (any, error) {
		req := request.(*classifyReq)
		if req.Token == "" {
			return nil, fmt.Errorf("%w: missing token", ErrBadRequest)
		}
		lang := req.Language
		if lang != "" {
			if err := normalize.ValidateLanguage(lang); err != nil {
				return nil, err
			}
		}
		if lang == "" || lang == normalize.LanguageAuto {
			lang = eng.DefaultLanguage
			if r := eng.Detector.Detect(req.Token); r.Language != langid.Unknown {
				lang = r.Language
			}
		}
		r, ev, err := classifier.Classify(req.Token, lang)
		if err != nil {
			return nil, err
		}
		return classifyResponse{Token: req.Token, Language: lang, Role: r, Evidence: ev}, nil
	}
}

func listLexiconsEndpoint(reg *lexicon.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return lexiconsResponse{Languages: reg.Stats(), Lexicons: reg.ListDicts()}, nil
	}
}
