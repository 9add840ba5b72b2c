// Package server is the build-as-a-service HTTP daemon: it accepts a JSON
// grammar document over HTTP, builds/optimizes it (consulting the build
// cache), and returns the emitted Go source. Adapted from tunaq's
// server/server.go route-registration shape, server/middle/middle.go's
// bearer-auth middleware, and server/response.go's JSON envelope.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dekarrin/fgrammar/builder"
	"github.com/dekarrin/fgrammar/builtin"
	"github.com/dekarrin/fgrammar/emit"
	"github.com/dekarrin/fgrammar/internal/cache"
	"github.com/dekarrin/fgrammar/internal/logging"
	"github.com/dekarrin/fgrammar/ir"
	"github.com/dekarrin/fgrammar/optimize"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config configures a Server.
type Config struct {
	TokenSecret []byte
	Cache       *cache.DB // nil disables the build cache
	DefaultDepth int
}

// Server holds the dependencies needed to serve build requests.
type Server struct {
	cfg Config
}

// New returns a Server ready to have its router built with Router.
func New(cfg Config) *Server {
	if cfg.DefaultDepth <= 0 {
		cfg.DefaultDepth = 256
	}
	return &Server{cfg: cfg}
}

// Router builds the chi router exposing this server's endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.requireBearerAuth)
		r.Post("/grammars", s.handleBuildGrammar)
	})
	return r
}

type buildRequest struct {
	Grammar  builder.JSONGrammar `json:"grammar"`
	Start    string              `json:"start,omitempty"`
	MaxDepth int                 `json:"max_depth,omitempty"`
	Package  string              `json:"package,omitempty"`
	Type     string              `json:"type,omitempty"`
	SafeOnly bool                `json:"safe_only,omitempty"`
	IDMode   bool                `json:"id_mode,omitempty"`
}

type buildResponse struct {
	BuildID string `json:"build_id"`
	Source  string `json:"source"`
	Cached  bool   `json:"cached"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBuildGrammar(w http.ResponseWriter, req *http.Request) {
	buildID := uuid.NewString()

	var breq buildRequest
	if err := json.NewDecoder(req.Body).Decode(&breq); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return
	}
	if breq.MaxDepth <= 0 {
		breq.MaxDepth = s.cfg.DefaultDepth
	}
	if breq.Package == "" {
		breq.Package = "generated"
	}
	if breq.Type == "" {
		breq.Type = "Grammar"
	}
	if breq.Start == "" {
		names := make([]string, 0, len(breq.Grammar))
		for name := range breq.Grammar {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 0 {
			breq.Start = names[0]
		}
	}

	rawDoc, _ := json.Marshal(breq.Grammar)
	key, err := cache.KeyFor(rawDoc, breq.Start, breq.MaxDepth, breq.SafeOnly, breq.IDMode)
	if err != nil {
		logging.Warnf("[build %s] cache key: %s", buildID, err)
	}

	var g *ir.Grammar
	cached := false
	if s.cfg.Cache != nil && err == nil {
		if entry, getErr := s.cfg.Cache.Get(req.Context(), key); getErr == nil {
			g = &ir.Grammar{}
			if decErr := cache.DecodeGrammar(entry.GrammarBlob, g); decErr == nil {
				cached = true
			} else {
				g = nil
			}
		}
	}

	var blob []byte
	if g == nil {
		b, buildErr := builder.FromJSONGrammar(breq.Grammar, breq.Start)
		if buildErr == nil {
			b.SetBuiltinLoader(builtin.Loader)
			g, buildErr = optimize.Build(b)
		}
		if buildErr != nil {
			logging.Errorf("[build %s] build failed: %s", buildID, buildErr)
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: buildErr.Error()})
			return
		}
		if s.cfg.Cache != nil && err == nil {
			blob = cache.EncodeGrammar(g)
		}
	}

	g.SafeOnly = breq.SafeOnly
	g.OutputTerminalIDs = breq.IDMode

	src, err := emit.Emit(g, emit.Options{Package: breq.Package, TypeName: breq.Type, DefaultMaxDepth: breq.MaxDepth})
	if err != nil {
		logging.Errorf("[build %s] emit failed: %s", buildID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if blob != nil {
		if putErr := s.cfg.Cache.Put(req.Context(), key, blob, len(src)); putErr != nil {
			logging.Warnf("[build %s] cache put failed: %s", buildID, putErr)
		}
	}

	writeJSON(w, http.StatusOK, buildResponse{BuildID: buildID, Source: string(src), Cached: cached})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("write response: %s", err)
	}
}

// requireBearerAuth rejects any request without a valid bearer JWT signed
// with the server's configured secret.
func (s *Server) requireBearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authz := req.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(authz) <= len(prefix) || authz[:len(prefix)] != prefix {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		tokStr := authz[len(prefix):]

		_, err := jwt.Parse(tokStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.cfg.TokenSecret, nil
		})
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token: " + err.Error()})
			return
		}

		next.ServeHTTP(w, req)
	})
}

// IssueToken mints a bearer JWT for operator tooling/tests, signed with the
// server's configured secret and expiring after ttl.
func (s *Server) IssueToken(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.cfg.TokenSecret)
}
