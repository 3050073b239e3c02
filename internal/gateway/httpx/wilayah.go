package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
	"github.com/jcmexdev/bizops-dashboard/internal/wilayah"
)

// regionCache is implemented by sources that keep what they fetched.
type regionCache interface {
	ClearCache(ctx context.Context) error
	CacheInfo(ctx context.Context) (wilayah.CacheInfo, error)
}

func (h *Handler) Provinces(w http.ResponseWriter, r *http.Request) {
	h.regionList(w, r, wilayah.LevelProvince, "")
}

// RegionChildren serves /api/wilayah/{level}/{code}.
func (h *Handler) RegionChildren(w http.ResponseWriter, r *http.Request) {
	level, err := wilayah.ParseLevel(chi.URLParam(r, "level"))
	if err != nil || level == wilayah.LevelProvince {
		writeError(w, http.StatusNotFound, apperr.NotFound, "unknown region level")
		return
	}
	h.regionList(w, r, level, chi.URLParam(r, "code"))
}

func (h *Handler) regionList(w http.ResponseWriter, r *http.Request, level wilayah.Level, parent string) {
	list, err := h.regions.Regions(r.Context(), level, parent)
	if err != nil {
		var fe *wilayah.FetchError
		if !errors.As(err, &fe) {
			h.fail(w, r, err, nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "region proxy failed", "level", string(level), "parent", parent, "error", err)
		writeError(w, http.StatusInternalServerError, apperr.Kind(err), "Failed to fetch "+string(level)+" data")
		return
	}
	writeJSON(w, http.StatusOK, wilayah.Response{Data: list})
}

func (h *Handler) RegionCacheInfo(w http.ResponseWriter, r *http.Request) {
	c, ok := h.regions.(regionCache)
	if !ok {
		writeJSON(w, http.StatusOK, wilayah.CacheInfo{Keys: []string{}})
		return
	}
	info, err := c.CacheInfo(r.Context())
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) ClearRegionCache(w http.ResponseWriter, r *http.Request) {
	if c, ok := h.regions.(regionCache); ok {
		if err := c.ClearCache(r.Context()); err != nil {
			h.fail(w, r, err, nil)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveAddress prefills a fresh cascade from saved codes and returns the
// selection it reached, the address text and the option lists.
func (h *Handler) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	var sel wilayah.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c := wilayah.NewCascade(h.regions, wilayah.WithWait(h.regionWait), wilayah.WithLogger(h.logger))
	if err := c.LoadProvinces(r.Context()); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	if err := c.SetSelections(r.Context(), sel); err != nil {
		h.fail(w, r, err, nil)
		return
	}

	state := c.Snapshot()
	writeJSON(w, http.StatusOK, AddressResponse{
		Selected:    state.Selected,
		FullAddress: c.FullAddress(),
		Options:     state,
	})
}
