package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/souqra/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

func loadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// validate checks request bodies against the operation documented for path.
func (s *Server) validate(path string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			item := s.doc.Paths.Find(path)
			if item == nil || item.GetOperation(r.Method) == nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request: r,
				Route: &routers.Route{
					Spec:      s.doc,
					Path:      path,
					PathItem:  item,
					Method:    r.Method,
					Operation: item.GetOperation(r.Method),
				},
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.fail(w, fmt.Errorf("%w: %v", errBadRequest, err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
