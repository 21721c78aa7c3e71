package dashboard

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

// SetupRoutes mounts the API. The session middleware must run before it.
func (h *Handler) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", RootHandler)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/districts", h.GetDistricts)

	r.Route("/location", func(r chi.Router) {
		r.Get("/", h.GetLocation)
		r.Post("/pin", h.PostPin)
		r.Post("/search", h.PostSearch)
		r.Post("/gps", h.PostGPS)
	})

	r.Route("/form", func(r chi.Router) {
		r.Get("/", h.GetForm)
		r.Put("/district", h.PutDistrict)
		r.Put("/bill", h.PutBill)
		r.Put("/phase", h.PutPhase)
		r.Put("/image", h.PutImage)
		r.Delete("/image", h.DeleteImage)
	})

	r.Route("/analysis", func(r chi.Router) {
		r.Get("/", h.GetAnalysis)
		r.Post("/", h.PostAnalysis)
		r.Get("/preview/{id}", h.GetPreview)
	})

	r.Get("/chat", h.GetChat)
	r.Post("/chat", h.PostChat)

	r.Get("/settings/theme", h.GetTheme)
	r.Put("/settings/theme", h.PutTheme)

	return r
}
