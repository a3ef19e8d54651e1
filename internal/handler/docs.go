package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakaprima/vending-machine/internal/handler/openapi"
)

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Vending Machine API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`

func (h *Handler) openAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openapi.YAML)
}

func (h *Handler) docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
}
