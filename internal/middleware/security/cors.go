package security

import (
	"net/http"
	"strconv"
	"strings"
)

// CORS answers cross-origin requests from a fixed list of origins. A "*"
// entry allows any origin.
type CORS struct {
	origins map[string]bool
	any     bool
	methods string
	headers string
	maxAge  int
}

func NewCORS(allowedOrigins []string) *CORS {
	c := &CORS{
		origins: make(map[string]bool, len(allowedOrigins)),
		methods: "GET, POST, PUT, DELETE, OPTIONS",
		headers: "Authorization, Content-Type, X-Request-ID",
		maxAge:  600,
	}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			c.any = true
		default:
			c.origins[o] = true
		}
	}
	return c
}

// Allowed reports whether origin may call the API.
func (c *CORS) Allowed(origin string) bool {
	return origin != "" && (c.any || c.origins[origin])
}

// Middleware sets the CORS response headers and short-circuits preflight
// requests.
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		allowed := c.Allowed(origin)
		if allowed {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			h.Set("Access-Control-Allow-Methods", c.methods)
			h.Set("Access-Control-Allow-Headers", c.headers)
			h.Set("Access-Control-Max-Age", strconv.Itoa(c.maxAge))
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
