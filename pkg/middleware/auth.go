package middleware

import (
	"net/http"

	"travelbook/pkg/auth"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// Authenticator guards individual routes; public routes are registered without it.
type Authenticator struct {
	verifier *auth.Verifier
	log      *logger.Logger
}

func NewAuthenticator(verifier *auth.Verifier, log *logger.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		log:      log,
	}
}

func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			reject(w, a.log, apperrors.Unauthorized("Not authorized, no token"))
			return
		}

		identity, err := a.verifier.Verify(raw)
		if err != nil {
			a.log.FromContext(r.Context()).Warn("Token verification failed", "path", r.URL.Path, "error", err)
			reject(w, a.log, apperrors.Unauthorized("Not authorized, token failed"))
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole authenticates the caller and then checks the role claim.
func (a *Authenticator) RequireRole(role string, next httprouter.Handle) httprouter.Handle {
	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, _ := auth.IdentityFromContext(r.Context())
		if identity.Role != role {
			reject(w, a.log, apperrors.Forbidden("Not authorized as "+role))
			return
		}
		next(w, r, ps)
	})
}
