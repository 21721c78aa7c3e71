package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/middleware"
	"github.com/solix-energy/solix/internal/settings"
)

// MaxImageBytes caps an uploaded roof photo.
const MaxImageBytes = 10 << 20

// Handler serves the dashboard API.
type Handler struct {
	sessions *Registry
	theme    *settings.ThemeState
}

func NewHandler(sessions *Registry, theme *settings.ThemeState) *Handler {
	return &Handler{sessions: sessions, theme: theme}
}

// session resolves the caller's session, writing a 500 if the session
// middleware did not run.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing session", http.StatusInternalServerError)
		return nil, false
	}
	return h.sessions.Get(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.View())
}

func (h *Handler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, district.All())
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Store.Snapshot())
}

func (h *Handler) PostPin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Lat == nil || body.Lon == nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}

	state, err := s.Resolver.OnManualPin(r.Context(), *body.Lat, *body.Lon)
	if err != nil {
		writeError(w, err, state)
		return
	}
	writeJSON(w, state)
}

func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Query string `json:"query"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	state, err := s.Resolver.OnSearch(r.Context(), body.Query)
	if err != nil {
		writeError(w, err, state)
		return
	}
	writeJSON(w, state)
}

func (h *Handler) PostGPS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := s.Resolver.OnUseDeviceGPS(r.Context())
	if err != nil {
		writeError(w, err, state)
		return
	}
	writeJSON(w, state)
}

func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Form.Fields())
}

func (h *Handler) PutDistrict(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		District string `json:"district"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	d, err := district.Parse(body.District)
	if err == nil {
		err = s.Resolver.SelectDistrict(d)
	}
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, s.Store.Snapshot())
}

func (h *Handler) PutBill(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Bill string `json:"bill"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.Form.SetBill(body.Bill)
	writeJSON(w, s.Form.Fields())
}

func (h *Handler) PutPhase(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Phase string `json:"phase"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	p, err := form.ParsePhase(body.Phase)
	if err == nil {
		err = s.Form.SetPhase(p)
	}
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, s.Form.Fields())
}

func (h *Handler) PutImage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}
	if len(data) > MaxImageBytes {
		http.Error(w, "Image too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		http.Error(w, "Empty file", http.StatusBadRequest)
		return
	}

	s.Form.SetImage(hdr.Filename, data)
	writeJSON(w, s.Form.Fields())
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Form.ClearImage()
	writeJSON(w, s.Form.Fields())
}

func (h *Handler) PostAnalysis(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Submit(r.Context()); err != nil {
		writeError(w, err, s.Analysis.Snapshot())
		return
	}
	writeJSON(w, s.Analysis.Snapshot())
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Analysis.Snapshot())
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	p, found := s.Analysis.Preview("preview/" + chi.URLParam(r, "id"))
	if !found {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(p.Data)
}

func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.chatView())
}

func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	reply, sent := s.Chat.SendMessage(r.Context(), body.Message)
	if !sent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, reply)
}

type themeBody struct {
	Theme settings.Theme `json:"theme"`
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, themeBody{Theme: h.theme.Current()})
}

func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.theme.Set(r.Context(), body.Theme); err != nil {
		if errors.Is(err, settings.ErrInvalidTheme) {
			writeError(w, err, nil)
			return
		}
		http.Error(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}
	writeJSON(w, themeBody{Theme: h.theme.Current()})
}
