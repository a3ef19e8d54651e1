package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinRequireOperator adapts the net/http OperatorMiddleware to Gin.
func GinRequireOperator(op *OperatorMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		op.RequireOperator(next).ServeHTTP(c.Writer, c.Request)

		// the guard answered on its own, stop the chain
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
