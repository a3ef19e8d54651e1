// Package middleware holds the HTTP middleware shared by all routes.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/jakaprima/vending-machine/internal/logger"
)

// OperatorKeyHeader carries the plaintext operator key.
const OperatorKeyHeader = "X-Operator-Key"

type OperatorMiddleware struct {
	hash string
}

// NewOperatorMiddleware guards routes with the bcrypt hash of the operator
// key. An empty hash leaves the routes open.
func NewOperatorMiddleware(hash string) *OperatorMiddleware {
	return &OperatorMiddleware{hash: hash}
}

func (o *OperatorMiddleware) Enabled() bool {
	return o.hash != ""
}

func (o *OperatorMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !o.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(OperatorKeyHeader)
		if key == "" {
			unauthorized(w, "operator key required")
			return
		}

		if err := VerifyOperatorKey(o.hash, key); err != nil {
			logger.Warn("operator key rejected", map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			unauthorized(w, "operator key rejected")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "unauthorized",
		"detail": detail,
	})
}
