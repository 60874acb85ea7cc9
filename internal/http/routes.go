package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"

	knowledgeshell "github.com/piragi/knowledge-shell"
	"github.com/piragi/knowledge-shell/internal/domain/nav"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Gate Gate // required
	Nav  nav.Model
	// Auth serves /auth/*. When nil those routes are not registered.
	Auth        *AuthHandlers
	Credentials CredentialSource
	CSRF        CSRFConfig
	// Metrics serves /metrics when set.
	Metrics   http.Handler
	Readiness map[string]ReadinessCheck
	IsDev     bool
	Logger    *slog.Logger
}

// NewRouter wires the shell, auth, API and operational routes.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	logoutRoute := ""
	if services.Auth != nil {
		logoutRoute = "/auth/logout"
	}
	shellHandlers := &ShellHandlers{
		Gate:        services.Gate,
		Nav:         services.Nav,
		Credentials: services.Credentials,
		LogoutRoute: logoutRoute,
		Logger:      logger,
	}

	registerShellRoutes(mux, shellHandlers, services.Nav)
	mux.Handle("GET /api/navigation",
		RequireIdentity(services.Gate, services.Credentials, logger)(http.HandlerFunc(shellHandlers.Navigation)))
	if services.Auth != nil {
		registerAuthRoutes(mux, services.Auth)
	}

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	if len(services.Readiness) > 0 {
		mux.Handle("GET /readyz", readinessHandler(services.Readiness))
	}
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))
	mux.HandleFunc("/", notFound)

	var handler http.Handler = mux
	handler = CSRFProtection(services.CSRF)(handler)
	handler = BrowserDetection()(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// registerShellRoutes serves a page for every navigable target plus the gated fragment.
func registerShellRoutes(mux *http.ServeMux, h *ShellHandlers, model nav.Model) {
	for _, target := range model.Targets() {
		pattern := "GET " + target
		if target == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, h.Page)
	}
	mux.HandleFunc("GET /shell/fragment", h.Fragment)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET "+SignedOutRoute, h.SignedOut)
}

// staticHandler serves /static/* from disk in dev mode and from the embedded
// filesystem otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	cacheControl := "public, max-age=3600"
	var fsys fs.FS
	if isDev {
		fsys = knowledgeshell.DiskStaticFS()
		cacheControl = "no-cache"
	} else {
		sub, err := knowledgeshell.EmbeddedStaticFS()
		if err != nil {
			logger.Error("embedded static assets unavailable; serving from disk", "error", err)
			sub = knowledgeshell.DiskStaticFS()
		}
		fsys = sub
	}

	files := http.StripPrefix("/static/", http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		files.ServeHTTP(w, r)
	})
}
