// Package httpapi serves resolved profile pictures over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"nostrpfp/engine/actors"
	"nostrpfp/engine/library"
	"nostrpfp/engine/metrics"
	"nostrpfp/pfp"
	"nostrpfp/state/profiles"
)

type Handler struct {
	resolver *pfp.Resolver
	profiles *profiles.Directory
	metrics  *metrics.Metrics
}

func NewHandler(resolver *pfp.Resolver, directory *profiles.Directory, m *metrics.Metrics) *Handler {
	return &Handler{resolver: resolver, profiles: directory, metrics: m}
}

// NewRouter mounts the API. gatherer backs /metrics and may be nil to leave it out.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/pfp/{pubkey}", h.GetProfilePic)
	r.Get("/pfp/{pubkey}/image", h.RedirectToImage)
	r.Get("/color/{pubkey}", h.GetColor)
	r.Get("/profile/{pubkey}", h.GetProfile)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type pfpResponse struct {
	Pubkey           string  `json:"pubkey"`
	URL              string  `json:"url"`
	FallbackURL      string  `json:"fallback_url"`
	Source           string  `json:"source"`
	Policy           string  `json:"policy"`
	PlaceholderColor string  `json:"placeholder_color"`
	RingColor        string  `json:"ring_color"`
	RingWidth        float64 `json:"ring_width"`
}

type profileResponse struct {
	Pubkey      string          `json:"pubkey"`
	Profile     library.Profile `json:"profile"`
	Timestamp   int64           `json:"timestamp"`
	PayEndpoint string          `json:"pay_endpoint,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetProfilePic resolves the picture for {pubkey}. The optional highlight query is main, reply or none.
func (h *Handler) GetProfilePic(w http.ResponseWriter, r *http.Request) {
	pubkey, ok := h.pubkeyParam(w, r)
	if !ok {
		return
	}
	res := h.resolve(pubkey)
	highlight := pfp.ParseHighlight(r.URL.Query().Get("highlight"))
	writeJSON(w, http.StatusOK, pfpResponse{
		Pubkey:           pubkey,
		URL:              res.URL.String(),
		FallbackURL:      h.resolver.Fallback(pubkey).String(),
		Source:           string(res.Source),
		Policy:           string(h.resolver.Policy()),
		PlaceholderColor: pfp.HexString(pfp.IDToColor(pubkey)),
		RingColor:        pfp.HexString(pfp.HighlightColor(highlight)),
		RingWidth:        pfp.LineWidth(highlight),
	})
}

func (h *Handler) RedirectToImage(w http.ResponseWriter, r *http.Request) {
	pubkey, ok := h.pubkeyParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, h.resolve(pubkey).URL.String(), http.StatusFound)
}

// GetColor works on any identifier, not only valid pubkeys.
func (h *Handler) GetColor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pubkey")
	if pk, err := library.NormalizePubkey(id); err == nil {
		id = pk
	}
	writeJSON(w, http.StatusOK, map[string]string{"color": pfp.HexString(pfp.IDToColor(id))})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	pubkey, ok := h.pubkeyParam(w, r)
	if !ok {
		return
	}
	p, ok := h.profiles.LookupWithTimestamp(pubkey)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found"})
		return
	}
	resp := profileResponse{Pubkey: pubkey, Profile: p.Profile, Timestamp: p.Timestamp}
	if !pfp.ShowRealPicture(pubkey, h.resolver.Contacts, h.resolver.Policy()) {
		resp.Profile.Picture = ""
		resp.Profile.Banner = ""
	}
	if endpoint, ok := actors.PayEndpoint(p.Profile); ok {
		resp.PayEndpoint = endpoint
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resolve(pubkey library.Account) pfp.Resolution {
	res := h.resolver.Resolve(pubkey, "")
	if h.metrics != nil {
		h.metrics.Resolutions.WithLabelValues(string(res.Source), string(h.resolver.Policy())).Inc()
	}
	return res
}

func (h *Handler) pubkeyParam(w http.ResponseWriter, r *http.Request) (library.Account, bool) {
	pubkey, err := library.NormalizePubkey(chi.URLParam(r, "pubkey"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", false
	}
	return pubkey, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		actors.LogCLI(err, 2)
	}
}
