package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/utils"
)

// Routes mounts /auth/test and /auth/user. The caller wraps them in Middleware.
func Routes(r chi.Router) {
	r.Get("/auth/test", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Auth routes working"})
	})
	r.Get("/auth/user", CurrentUser)
}

func CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFrom(r.Context())
	if identity == nil {
		utils.WriteError(w, apperr.Unauthorized("Not authenticated", nil))
		return
	}
	utils.WriteJSON(w, http.StatusOK, identity)
}
