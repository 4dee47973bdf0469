package verificationhttp

import "github.com/go-chi/chi/v5"

// MountAPI attaches the JSON endpoints. The tenant middleware must be
// installed on the parent router.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/", h.handleListAPI)
	r.Delete("/delete", h.handleDeleteAPI)
}

// MountPages attaches the server-rendered list page.
func (h *Handler) MountPages(r chi.Router) {
	r.Get("/", h.handlePage)
}
