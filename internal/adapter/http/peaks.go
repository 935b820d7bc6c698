package http

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/state"
)

const maxUploadMemory = 32 << 20

// nearbyPeak is one entry of the nearby response.
type nearbyPeak struct {
	domain.Neighbor
	Popup string `json:"popup"`
}

type mapResponse struct {
	Overlays []domain.Overlay `json:"overlays"`
	Viewport domain.Viewport  `json:"viewport"`
}

// filterFromQuery reads categoryIds (repeated) or categoryId, plus
// minElevation. An absent or unparsable minimum applies no elevation filter.
func filterFromQuery(q url.Values) domain.FilterOptions {
	values := q["categoryIds"]
	if len(values) == 0 {
		values = q["categoryId"]
	}
	opts := domain.FilterOptions{
		Category:     domain.ParseCategoryCriterion(values),
		MinElevation: math.Inf(-1),
	}
	if v, err := strconv.ParseFloat(q.Get("minElevation"), 64); err == nil && !math.IsNaN(v) {
		opts.MinElevation = v
	}
	return opts
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) (state.SessionState, bool) {
	token, ok := bearerToken(w, r)
	if !ok {
		return state.SessionState{}, false
	}
	st, err := s.catalog.State(token)
	if err != nil {
		s.writeError(w, r, err)
		return state.SessionState{}, false
	}
	return st, true
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	cats := st.Categories
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleListPeaks(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.Filter(st.Peaks, filterFromQuery(r.URL.Query())))
}

func (s *Server) handleGetPeak(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	p, err := s.catalog.GetPeak(r.Context(), token, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePeak(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	var p domain.Peak
	if !decodeJSON(w, r, &p) {
		return
	}
	created, err := s.catalog.CreatePeak(r.Context(), token, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePeak(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	var p domain.Peak
	if !decodeJSON(w, r, &p) {
		return
	}
	updated, err := s.catalog.UpdatePeak(r.Context(), token, r.PathValue("id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePeak(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeletePeak(r.Context(), token, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	origin, found := domain.FindPeak(st.Peaks, r.PathValue("id"))
	if !found {
		writeMessage(w, http.StatusNotFound, "peak not found")
		return
	}

	q := r.URL.Query()
	radius := domain.DefaultNearbyRadiusMeters
	if v, err := strconv.ParseFloat(q.Get("radius"), 64); err == nil && !math.IsNaN(v) {
		radius = v
	}
	maxResults := domain.DefaultNearbyMax
	if v, err := strconv.Atoi(q.Get("max")); err == nil {
		maxResults = v
	}

	neighbors := domain.Nearest(st.Peaks, origin, radius, maxResults)
	out := make([]nearbyPeak, len(neighbors))
	for i, n := range neighbors {
		out[i] = nearbyPeak{Neighbor: n, Popup: domain.PopupNearby(n.Peak, n.DistanceMeters)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	opts := filterFromQuery(r.URL.Query())
	if opts.Category.IsAll() && math.IsInf(opts.MinElevation, -1) {
		writeJSON(w, http.StatusOK, st.CategoryChart)
		return
	}
	writeJSON(w, http.StatusOK, domain.PeaksPerCategory(domain.Filter(st.Peaks, opts), st.Categories))
}

func (s *Server) handleCategoryAtIndex(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	index, err := strconv.ParseFloat(r.PathValue("index"), 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "no category at index")
		return
	}
	id, found := domain.CategoryIDAtIndex(st.Categories, index)
	if !found {
		writeMessage(w, http.StatusNotFound, "no category at index")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"categoryId": id})
}

func (s *Server) handleElevationBands(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	peaks := domain.Filter(st.Peaks, filterFromQuery(r.URL.Query()))
	writeJSON(w, http.StatusOK, domain.ElevationHistogram(peaks))
}

func (s *Server) handleElevationSeries(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	policy := domain.IncludeMissingAsZero
	if q.Get("missing") == "exclude" {
		policy = domain.ExcludeMissing
	}
	peaks := domain.Filter(st.Peaks, filterFromQuery(q))
	writeJSON(w, http.StatusOK, domain.ElevationSeries(peaks, policy))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	st, ok := s.sessionState(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	peaks := domain.Filter(st.Peaks, filterFromQuery(q))

	var selected *domain.Peak
	if id := q.Get("selected"); id != "" {
		if p, found := domain.FindPeak(st.Peaks, id); found {
			selected = &p
		}
	}

	writeJSON(w, http.StatusOK, mapResponse{
		Overlays: domain.AssignOverlays(peaks, st.Categories, domain.ParseOverlayPolicy(q.Get("policy"))),
		Viewport: domain.ViewportFor(peaks, selected),
	})
}

func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files

	headers := r.MultipartForm.File["files"]
	files := make([]domain.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		defer f.Close()
		files = append(files, domain.ImageFile{Filename: fh.Filename, Content: f})
	}

	imgs, err := s.catalog.UploadImages(r.Context(), token, files)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}
