package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/escform/escform/app"
	"github.com/escform/escform/httpx"
	"github.com/escform/escform/log"
	"github.com/escform/escform/model"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// CreateResponse persists a new response. Drafts carry partialSave; a
// create with status COMPLETED is the create-and-complete path of a
// single-step fill-through.
func CreateResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp := model.Response{}
		err := render.DecodeJSON(r.Body, &rsp)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if rsp.FormID == "" {
			respondError(w, r, http.StatusBadRequest, "Form ID is required")
			return
		}
		if rsp.Status == "" {
			rsp.Status = model.StatusDraft
		}

		now := time.Now().UTC()
		rsp.ID = uuid.NewString()
		rsp.Notified = false
		if rsp.StartedAt.IsZero() {
			rsp.StartedAt = now
		}
		rsp.UpdatedAt = now
		if rsp.Status == model.StatusCompleted {
			rsp.SubmittedAt = &now
		}
		if rsp.Data == nil {
			rsp.Data = model.AnswerMap{}
		}

		dataJson, err := json.Marshal(rsp.Data)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.parse_data", err)
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO response (id, form_id, user_id, status, data, partial_save, notified, started_at, updated_at, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rsp.ID,
			rsp.FormID,
			rsp.UserID,
			rsp.Status,
			string(dataJson),
			rsp.PartialSave,
			rsp.Notified,
			rsp.StartedAt,
			rsp.UpdatedAt,
			rsp.SubmittedAt,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.ResponseEnvelope{
			Success: true,
			Data:    &rsp,
			Message: "Form response saved successfully",
		})
	}
}

// UpdateResponse overwrites an existing response by id, transitioning it to
// COMPLETED at most once: submittedAt is set on the first completing write
// and kept on retries.
func UpdateResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp := model.Response{}
		err := render.DecodeJSON(r.Body, &rsp)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if rsp.ID == "" {
			respondError(w, r, http.StatusBadRequest, "Response ID is required for update")
			return
		}

		now := time.Now().UTC()
		rsp.Notified = false
		rsp.UpdatedAt = now
		if rsp.Data == nil {
			rsp.Data = model.AnswerMap{}
		}

		dataJson, err := json.Marshal(rsp.Data)
		if err != nil {
			httpx.LogInternalError(w, "db.update_response.parse_data", err)
			return
		}

		var submittedAt *time.Time
		if rsp.Status == model.StatusCompleted {
			submittedAt = &now
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE response
			SET user_id = ?,
				status = ?,
				data = ?,
				partial_save = ?,
				notified = ?,
				updated_at = ?,
				submitted_at = COALESCE(submitted_at, ?)
			WHERE id = ?`,
			rsp.UserID,
			rsp.Status,
			string(dataJson),
			rsp.PartialSave,
			rsp.Notified,
			rsp.UpdatedAt,
			submittedAt,
			rsp.ID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_response", err)
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_response.affected", err)
			return
		}
		if affected == 0 {
			respondError(w, r, http.StatusNotFound, "Response not found")
			return
		}

		err = app.QueryRowContext(r.Context(), `
			SELECT started_at, submitted_at FROM response WHERE id = ?`,
			rsp.ID,
		).Scan(&rsp.StartedAt, &rsp.SubmittedAt)
		if err != nil {
			httpx.LogInternalError(w, "db.update_response.read_back", err)
			return
		}

		render.JSON(w, r, model.ResponseEnvelope{
			Success: true,
			Data:    &rsp,
			Message: "Form response updated successfully",
		})
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	log.Debugf("response.%d: %s", status, message)
	render.Status(r, status)
	render.JSON(w, r, model.ResponseEnvelope{Message: message})
}
