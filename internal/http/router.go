package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpopenapi "github.com/stocksentry/stocksentry/internal/http/openapi"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	r.Route("/products", func(r chi.Router) {
		r.Post("/", app.addProductHandler)
		r.Get("/", app.listProductsHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.getProductHandler)
			r.Delete("/", app.removeProductHandler)
			r.Post("/adjust", app.adjustHandler)
			r.Post("/sell", app.sellHandler)
		})
	})
	r.Get("/status", app.statusHandler)
	r.Get("/export.csv", app.exportCSVHandler)
	r.Get("/activities", app.activitiesHandler)
	r.Post("/advisor/suggest", app.suggestHandler)
	r.Post("/advisor/ask", app.askHandler)
	r.Post("/notify/digest", app.digestHandler)
	r.Get("/healthz", app.healthHandler)
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
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
	_, _ = w.Write([]byte(html))
}
