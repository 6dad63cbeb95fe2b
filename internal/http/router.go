package http

import (
	"net/http"
	"time"

	_ "github.com/lumiforge/mediavault-backend/docs"
	"github.com/lumiforge/mediavault-backend/internal/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// RouterOptions задает параметры, не относящиеся к обработчикам
type RouterOptions struct {
	UploadRateLimitPerMinute int
}

// SetupRouter creates and configures HTTP router
func SetupRouter(server *Server, guard *auth.Guard, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	uploadLimit := RateLimitMiddleware(opts.UploadRateLimitPerMinute, time.Minute)

	// /healthz для liveness проб, /api/healthz совпадает с BasePath документации
	mux.Handle("/healthz", chainMiddleware(server.Health, methodMiddleware("GET")))
	mux.Handle("/api/healthz", chainMiddleware(server.Health, methodMiddleware("GET")))
	mux.Handle("/metrics", methodMiddleware("GET")(promhttp.Handler()))
	mux.HandleFunc("/openapi.json", chainMiddleware(serveOpenAPI, methodMiddleware("GET"), CORSMiddleware))

	// Публичный каталог
	mux.HandleFunc("/api/videos", chainMiddleware(server.ListVideos, CORSMiddleware, methodMiddleware("GET"), RequestIDMiddleware, LoggingMiddleware, OptionalIdentity(guard)))

	// Загрузки: identity проверяется до чтения тела
	mux.HandleFunc("/api/video-upload", chainMiddleware(server.UploadVideo, CORSMiddleware, methodMiddleware("POST"), RequestIDMiddleware, LoggingMiddleware, uploadLimit, RequireIdentity(guard)))
	mux.HandleFunc("/api/image-upload", chainMiddleware(server.UploadImage, CORSMiddleware, methodMiddleware("POST"), RequestIDMiddleware, LoggingMiddleware, uploadLimit, RequireIdentity(guard)))

	return mux
}

// serveOpenAPI отдает сгенерированную swag спецификацию
func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, "OpenAPI documentation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// chainMiddleware applies multiple middleware to a handler function
func chainMiddleware(handler http.HandlerFunc, middleware ...func(http.Handler) http.Handler) http.HandlerFunc {
	h := http.Handler(handler)
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

// methodMiddleware creates middleware that checks for specific HTTP method
func methodMiddleware(method string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
