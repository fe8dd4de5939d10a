package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"slotwise/models"
	"slotwise/services/prospects"
)

// ProspectsHandler serves the prospects contact book.
type ProspectsHandler struct {
	prospects *prospects.Service
}

func NewProspectsHandler(prospectsSvc *prospects.Service) *ProspectsHandler {
	return &ProspectsHandler{prospects: prospectsSvc}
}

func (h *ProspectsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.prospects.List(r.Context())
	if err != nil {
		log.Printf("[prospects] list: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list prospects")
		return
	}
	if list == nil {
		list = []models.Prospect{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": list})
}

func (h *ProspectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.prospects.Get(r.Context(), mux.Vars(r)["prospectID"])
	if err != nil {
		if errors.Is(err, prospects.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prospect not found")
			return
		}
		log.Printf("[prospects] get: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load prospect")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProspectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in prospects.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.prospects.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		log.Printf("[prospects] create: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create prospect")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProspectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in prospects.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.prospects.Update(r.Context(), mux.Vars(r)["prospectID"], in)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			writeError(w, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, prospects.ErrNotFound):
			writeError(w, http.StatusNotFound, "prospect not found")
		default:
			log.Printf("[prospects] update: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to update prospect")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProspectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.prospects.Delete(r.Context(), mux.Vars(r)["prospectID"]); err != nil {
		if errors.Is(err, prospects.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prospect not found")
			return
		}
		log.Printf("[prospects] delete: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete prospect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "prospect deleted"})
}
