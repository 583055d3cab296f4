// internal/controller/lookup_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/service"
)

type LookupController struct {
	LookupService *service.LookupService
}

type lookupRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	Age       *int     `json:"age"`
	Sources   []string `json:"sources"`
	Save      bool     `json:"save"`
}

// Search runs one lookup batch. With save=true the envelope and its person
// records are persisted and the stored id is returned alongside.
func (c *LookupController) Search(w http.ResponseWriter, r *http.Request) {
	var body lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.FirstName == "" || body.LastName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name and last_name are required"})
		return
	}

	query := plugin.SearchQuery{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		City:      body.City,
		State:     body.State,
		Age:       body.Age,
	}

	resp := c.LookupService.SearchPerson(r.Context(), query, body.Sources)

	if !resp.Success {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	if body.Save {
		uid := userID(r)
		stored, err := c.LookupService.SaveResult(resp, &uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"lookup_id": stored.ID,
			"result":    resp,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (c *LookupController) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": c.LookupService.AvailableSources(),
	})
}

func (c *LookupController) GetLookup(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))

	result, err := c.LookupService.LookupRepo.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lookup result not found"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *LookupController) ListLookups(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	uid := userID(r)
	results, total, err := c.LookupService.LookupRepo.List(&uid, (page-1)*pageSize, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": results,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": (total + pageSize - 1) / pageSize,
		},
	})
}
