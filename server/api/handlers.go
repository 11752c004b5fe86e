package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/instrumentd/typestore/x/typestore"
)

// KindSummary describes one registered kind.
type KindSummary struct {
	Name   string `json:"name"`
	Values int    `json:"values"`
}

// ValueView is the rendered form of one stored value.
type ValueView struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Rendered string `json:"rendered"`
}

// Handler serves the type store's enumeration read path.
type Handler struct {
	store typestore.TypeStore
	log   zerolog.Logger
}

// NewHandler creates the introspection handler over a type store.
func NewHandler(store typestore.TypeStore, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("component", "introspection-handler").Logger(),
	}
}

// Register mounts the read-only routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/v1/kinds", h.listKinds).Methods(http.MethodGet)
	r.HandleFunc("/v1/kinds/{kind}/values", h.listValues).Methods(http.MethodGet)
	r.HandleFunc("/v1/kinds/{kind}/values/{name}", h.getValue).Methods(http.MethodGet)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listKinds(w http.ResponseWriter, _ *http.Request) {
	kinds := make([]KindSummary, 0, h.store.Len())
	h.store.ForEachKind(func(k *typestore.Kind) {
		kinds = append(kinds, KindSummary{Name: k.Name(), Values: k.Len()})
	})
	WriteJSON(w, http.StatusOK, map[string]any{"kinds": kinds})
}

func (h *Handler) listValues(w http.ResponseWriter, r *http.Request) {
	kindName := mux.Vars(r)["kind"]

	k, found := h.store.LookupKind(kindName)
	if !found {
		WriteError(w, r, http.StatusNotFound, "kind_not_found", "no such kind: "+kindName)
		return
	}

	values := make([]ValueView, 0, k.Len())
	k.Walk(func(name string, payload any) {
		values = append(values, ValueView{
			Kind:     kindName,
			Name:     name,
			Rendered: renderPayload(k, payload),
		})
	})
	WriteJSON(w, http.StatusOK, map[string]any{"values": values})
}

func (h *Handler) getValue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kindName, valueName := vars["kind"], vars["name"]

	k, found := h.store.LookupKind(kindName)
	if !found {
		WriteError(w, r, http.StatusNotFound, "kind_not_found", "no such kind: "+kindName)
		return
	}
	payload, ok := h.store.Get(kindName, valueName)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "value_not_found",
			"no value "+valueName+" under kind "+kindName)
		return
	}

	WriteJSON(w, http.StatusOK, ValueView{
		Kind:     kindName,
		Name:     valueName,
		Rendered: renderPayload(k, payload),
	})
}

func renderPayload(k *typestore.Kind, payload any) string {
	var sb strings.Builder
	k.Render(&sb, payload)
	return sb.String()
}
