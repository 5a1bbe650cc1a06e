package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/escform/escform/app"
	"github.com/escform/escform/httpx"
	"github.com/escform/escform/log"
	"github.com/escform/escform/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

var reNoSlug = regexp.MustCompile(`[^\w\s-]`)

// slugify derives a unique subdomain slug from the form name.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = reNoSlug.ReplaceAllLiteralString(slug, "")
	slug = strings.Join(strings.Fields(slug), "-")
	if slug == "" {
		slug = "form"
	}
	return slug + "-" + randomSuffix(6)
}

func randomSuffix(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if form.Name == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.form_name", "form name is required")
			return
		}
		if !checkQuestionTypes(w, app, form) {
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		now := time.Now().UTC()
		form.ID = uuid.NewString()
		if form.Slug == "" {
			form.Slug = slugify(form.Name)
		}
		if form.FormPageType == "" {
			form.FormPageType = model.PageTypeStepper
		}
		form.CreatedAt = now
		form.UpdatedAt = now

		metadataJson, err := json.Marshal(form.Metadata)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form.parse_metadata", err)
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO form (id, name, description, slug, logo_url, multiple_submissions, allow_anonymous, form_page_type, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			form.ID,
			form.Name,
			form.Description,
			form.Slug,
			form.LogoURL,
			form.MultipleSubmissions,
			form.AllowAnonymous,
			form.FormPageType,
			string(metadataJson),
			form.CreatedAt,
			form.UpdatedAt,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		if err := insertQuestions(r.Context(), tx, &form); err != nil {
			httpx.LogInternalError(w, "db.insert_form.questions", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.FormEnvelope{Success: true, Data: &form})
	}
}

// checkQuestionTypes rejects unknown question types when running with
// -strict-types. Lax deployments accept them and let fillers see a
// placeholder instead.
func checkQuestionTypes(w http.ResponseWriter, app app.App, form model.Form) bool {
	if !app.StrictTypes {
		return true
	}
	for _, q := range form.Questions {
		if !q.Type.Known() {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.question_type", "unknown question type: %s", q.Type)
			return false
		}
	}
	return true
}

func insertQuestions(ctx context.Context, tx *sql.Tx, form *model.Form) error {
	qStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (id, form_id, type, title, description, placeholder, required, ord, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer qStmt.Close()

	oStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question_option (id, question_id, value, label, ord)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer oStmt.Close()

	for i := range form.Questions {
		q := &form.Questions[i]
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.FormID = form.ID
		q.Order = i

		metadataJson, err := json.Marshal(q.Metadata)
		if err != nil {
			return err
		}
		_, err = qStmt.ExecContext(ctx, q.ID, form.ID, q.Type, q.Title, q.Description, q.Placeholder, q.Required, q.Order, string(metadataJson))
		if err != nil {
			return err
		}

		for j := range q.Options {
			o := &q.Options[j]
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			_, err = oStmt.ExecContext(ctx, o.ID, q.ID, o.Value, o.Label, j)
			if err != nil {
				return err
			}
		}
	}

	for i := range form.Edges {
		e := &form.Edges[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO form_edge (id, form_id, source_id, target_id)
			VALUES (?, ?, ?, ?)`,
			e.ID, form.ID, e.SourceID, e.TargetID)
		if err != nil {
			return err
		}
	}
	return nil
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, name, description, slug, logo_url, multiple_submissions, allow_anonymous, form_page_type, created_at, updated_at
			FROM form
			ORDER BY created_at DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}
		defer rows.Close()

		forms := []model.Form{}
		for rows.Next() {
			f := model.Form{}
			err = rows.Scan(&f.ID, &f.Name, &f.Description, &f.Slug, &f.LogoURL,
				&f.MultipleSubmissions, &f.AllowAnonymous, &f.FormPageType, &f.CreatedAt, &f.UpdatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_forms.scan", err)
				return
			}
			forms = append(forms, f)
		}
		if err := rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_forms.rows", err)
			return
		}

		render.JSON(w, r, forms)
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, err := loadForm(r.Context(), app, "id", formId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		// builders see labelless options too
		render.JSON(w, r, model.FormEnvelope{Success: true, Data: form})
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		form.ID = formId
		if !checkQuestionTypes(w, app, form) {
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		metadataJson, err := json.Marshal(form.Metadata)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.parse_metadata", err)
			return
		}

		form.UpdatedAt = time.Now().UTC()
		res, err := tx.ExecContext(r.Context(), `
			UPDATE form
			SET name = ?, description = ?, logo_url = ?,
				multiple_submissions = ?, allow_anonymous = ?, form_page_type = ?,
				metadata = ?, updated_at = ?
			WHERE id = ?`,
			form.Name,
			form.Description,
			form.LogoURL,
			form.MultipleSubmissions,
			form.AllowAnonymous,
			form.FormPageType,
			string(metadataJson),
			form.UpdatedAt,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.affected", err)
			return
		}
		if affected == 0 {
			httpx.LogNotFound(w, "update_form", formId)
			return
		}

		// replace the question graph wholesale
		_, err = tx.ExecContext(r.Context(), `DELETE FROM question WHERE form_id = ?`, formId)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.delete_questions", err)
			return
		}
		_, err = tx.ExecContext(r.Context(), `DELETE FROM form_edge WHERE form_id = ?`, formId)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.delete_edges", err)
			return
		}
		if err := insertQuestions(r.Context(), tx, &form); err != nil {
			httpx.LogInternalError(w, "db.update_form.questions", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.commit", err)
			return
		}

		render.JSON(w, r, model.FormEnvelope{Success: true, Data: &form})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		res, err := app.ExecContext(r.Context(), `DELETE FROM form WHERE id = ?`, formId)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.affected", err)
			return
		}
		if affected == 0 {
			httpx.LogNotFound(w, "delete_form", formId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, form_id, user_id, status, data, partial_save, notified, started_at, updated_at, submitted_at
			FROM response
			WHERE form_id = ?
			ORDER BY started_at`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}
		defer rows.Close()

		responses := []model.Response{}
		for rows.Next() {
			rsp := model.Response{}
			var dataJson string
			err = rows.Scan(&rsp.ID, &rsp.FormID, &rsp.UserID, &rsp.Status, &dataJson,
				&rsp.PartialSave, &rsp.Notified, &rsp.StartedAt, &rsp.UpdatedAt, &rsp.SubmittedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_responses.scan", err)
				return
			}
			if dataJson != "" {
				if err := json.Unmarshal([]byte(dataJson), &rsp.Data); err != nil {
					httpx.LogInternalError(w, "db.get_responses.parse_data", err)
					return
				}
			}
			responses = append(responses, rsp)
		}
		if err := rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_responses.rows", err)
			return
		}

		render.JSON(w, r, responses)
	}
}
