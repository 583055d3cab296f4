// internal/controller/generator_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/nfields/obscura-backend/internal/generator"
	"github.com/nfields/obscura-backend/internal/model"
)

type GeneratorController struct {
	Generator *generator.Generator
}

type previewRequest struct {
	Count    int                    `json:"count"`
	Template *model.ProfileTemplate `json:"template"`

	// When a target identity is given the preview shows poisoning profiles
	// instead of plain synthetic ones.
	TargetFirstName *string `json:"target_first_name"`
	TargetLastName  *string `json:"target_last_name"`
	TargetState     *string `json:"target_state"`
	TargetAge       *int    `json:"target_age"`
}

// Preview generates profiles without persisting anything, so callers can see
// what a campaign would submit.
func (c *GeneratorController) Preview(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	count := body.Count
	if count < 1 {
		count = 5
	}
	if count > generator.MaxBatchSize {
		count = generator.MaxBatchSize
	}

	var profiles []model.Profile
	// empty name parts mean "no target", same as the executor's check
	if body.TargetFirstName != nil && *body.TargetFirstName != "" &&
		body.TargetLastName != nil && *body.TargetLastName != "" {
		profiles = c.Generator.GeneratePoisoning(
			*body.TargetFirstName,
			*body.TargetLastName,
			count,
			body.TargetState,
			body.TargetAge,
		)
	} else {
		profiles = c.Generator.GenerateBatch(count, body.Template)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(profiles),
		"profiles": profiles,
	})
}
