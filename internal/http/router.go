package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Plans      *PlanHandler
	Users      *UserHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Plans != nil {
		mux.HandleFunc("/plan", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Plans.Create(w, r)
		})
		mux.HandleFunc("/plan/", func(w http.ResponseWriter, r *http.Request) {
			slug, sub, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/plan/"), "/")
			if slug == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithPlanSlug(r.Context(), slug)
			r = r.WithContext(ctx)

			switch sub {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Plans.Show(w, r)
				case http.MethodPost:
					cfg.Plans.Toggle(w, r)
				case http.MethodDelete:
					cfg.Plans.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
				}
			case "dates":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Plans.MarkDates(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
			slug := strings.TrimPrefix(r.URL.Path, "/user/")
			if slug == "" || strings.Contains(slug, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.Create(w, r.WithContext(ContextWithPlanSlug(r.Context(), slug)))
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
