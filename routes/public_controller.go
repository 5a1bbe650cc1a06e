package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/escform/escform/app"
	"github.com/escform/escform/httpx"
	"github.com/escform/escform/log"
	"github.com/escform/escform/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveForm(w, r, app, "id", chi.URLParam(r, "id"))
	}
}

func PublicGetFormBySlug(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveForm(w, r, app, "slug", chi.URLParam(r, "slug"))
	}
}

func serveForm(w http.ResponseWriter, r *http.Request, app app.App, field, key string) {
	form, err := loadForm(r.Context(), app, field, key)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debugf("get_form: not found (%s)", key)
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, model.FormEnvelope{Message: "Form not found"})
		return
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_form", err)
		return
	}

	// fillers never see labelless options
	for i := range form.Questions {
		form.Questions[i].Options = form.Questions[i].VisibleOptions()
	}

	render.JSON(w, r, model.FormEnvelope{Success: true, Data: form})
}

// loadForm fetches one form with its ordered questions, options and edges.
// field is a trusted column name ("id" or "slug"), key the lookup value.
func loadForm(ctx context.Context, app app.App, field, key string) (*model.Form, error) {
	form := &model.Form{}
	var metadataJson string
	err := app.QueryRowContext(ctx, `
		SELECT id, name, description, slug, logo_url,
			multiple_submissions, allow_anonymous, form_page_type, metadata,
			created_at, updated_at
		FROM form
		WHERE `+field+` = ?`,
		key,
	).Scan(
		&form.ID, &form.Name, &form.Description, &form.Slug, &form.LogoURL,
		&form.MultipleSubmissions, &form.AllowAnonymous, &form.FormPageType, &metadataJson,
		&form.CreatedAt, &form.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if metadataJson != "" {
		if err := json.Unmarshal([]byte(metadataJson), &form.Metadata); err != nil {
			return nil, err
		}
	}

	rows, err := app.QueryContext(ctx, `
		SELECT id, type, title, description, placeholder, required, ord, metadata
		FROM question
		WHERE form_id = ?
		ORDER BY ord`,
		form.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questionIdx := map[string]int{}
	for rows.Next() {
		q := model.Question{FormID: form.ID}
		var qMetadataJson string
		err = rows.Scan(&q.ID, &q.Type, &q.Title, &q.Description, &q.Placeholder, &q.Required, &q.Order, &qMetadataJson)
		if err != nil {
			return nil, err
		}
		if qMetadataJson != "" {
			if err := json.Unmarshal([]byte(qMetadataJson), &q.Metadata); err != nil {
				return nil, err
			}
		}
		questionIdx[q.ID] = len(form.Questions)
		form.Questions = append(form.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	optRows, err := app.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.value, o.label
		FROM question_option o
		JOIN question q ON (o.question_id = q.id)
		WHERE q.form_id = ?
		ORDER BY o.question_id, o.ord`,
		form.ID,
	)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var o model.Option
		var questionId string
		err = optRows.Scan(&o.ID, &questionId, &o.Value, &o.Label)
		if err != nil {
			return nil, err
		}
		if i, ok := questionIdx[questionId]; ok {
			form.Questions[i].Options = append(form.Questions[i].Options, o)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := app.QueryContext(ctx, `
		SELECT id, source_id, target_id
		FROM form_edge
		WHERE form_id = ?`,
		form.ID,
	)
	if err != nil {
		return nil, err
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e model.Edge
		err = edgeRows.Scan(&e.ID, &e.SourceID, &e.TargetID)
		if err != nil {
			return nil, err
		}
		form.Edges = append(form.Edges, e)
	}
	return form, edgeRows.Err()
}
