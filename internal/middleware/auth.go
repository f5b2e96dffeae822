package middleware

import (
	"net/http"
	"strings"

	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware reads a bearer token and marks the request as authenticated
// when it verifies. Requests without a valid token continue unauthenticated;
// resolvers decide whether that is allowed.
func AuthMiddleware(issuer *auth.Issuer, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := auth.Info{}
			if token, ok := bearerToken(r); ok {
				claims, err := issuer.Authenticate(token)
				if err != nil {
					log.WithError(err).Debug("Rejected bearer token")
				} else {
					info = auth.Info{IsAuth: true, UserID: claims.UserID}
				}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithInfo(r.Context(), info)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
