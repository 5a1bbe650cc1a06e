package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/escform/escform/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraft(t *testing.T) {
	var got model.Response
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/response", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		got.ID = "rsp-1"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.ResponseEnvelope{
			Success: true,
			Data:    &got,
			Message: "Form response saved successfully",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	created, err := c.CreateDraft(context.Background(), model.Response{
		ID:          "stale-id", // must not leak into the create
		FormID:      "form-1",
		Status:      model.StatusDraft,
		Data:        model.AnswerMap{"q1": "a"},
		PartialSave: true,
		StartedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "rsp-1", created.ID)
	assert.Equal(t, "", got.ID, "create request carries no id")
	assert.Equal(t, "form-1", got.FormID)
	assert.True(t, got.PartialSave)
}

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)

		var rsp model.Response
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rsp))
		json.NewEncoder(w).Encode(model.ResponseEnvelope{Success: true, Data: &rsp})
	}))
	defer srv.Close()

	c := New(srv.URL)
	updated, err := c.Update(context.Background(), model.Response{
		ID:     "rsp-1",
		FormID: "form-1",
		Status: model.StatusDraft,
		Data:   model.AnswerMap{"q1": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "rsp-1", updated.ID)
}

func TestUpdateWithoutID(t *testing.T) {
	c := New("http://localhost:0")
	_, err := c.Update(context.Background(), model.Response{FormID: "form-1"})
	assert.Error(t, err)
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantMethod string
	}{
		{"with draft id", "rsp-1", http.MethodPut},
		{"create and complete", "", http.MethodPost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Response
			var method string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				if got.ID == "" {
					got.ID = "rsp-9"
				}
				now := time.Now().UTC()
				got.SubmittedAt = &now
				json.NewEncoder(w).Encode(model.ResponseEnvelope{Success: true, Data: &got})
			}))
			defer srv.Close()

			c := New(srv.URL)
			final, err := c.Finalize(context.Background(), model.Response{
				ID:          tt.id,
				FormID:      "form-1",
				Status:      model.StatusDraft, // forced to COMPLETED on the wire
				PartialSave: true,              // forced off
				Data:        model.AnswerMap{"q1": "a"},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, method)
			assert.Equal(t, model.StatusCompleted, got.Status)
			assert.False(t, got.PartialSave)
			assert.NotNil(t, final.SubmittedAt)
			assert.NotEmpty(t, final.ID)
		})
	}
}

func TestServerRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.ResponseEnvelope{Message: "Form ID is required"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateDraft(context.Background(), model.Response{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Form ID is required")
}

func TestForm(t *testing.T) {
	form := &model.Form{
		ID:   "form-1",
		Name: "Feedback",
		Slug: "feedback-abcdef",
		Questions: []model.Question{
			{ID: "q1", Type: model.TypeTextShort, Title: "Your name"},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/forms/form-1", "/api/forms/slug/feedback-abcdef":
			json.NewEncoder(w).Encode(model.FormEnvelope{Success: true, Data: form})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(model.FormEnvelope{Message: "Form not found"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	byID, err := c.Form(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Equal(t, "Feedback", byID.Name)

	bySlug, err := c.FormBySlug(context.Background(), "feedback-abcdef")
	require.NoError(t, err)
	assert.Equal(t, "form-1", bySlug.ID)

	_, err = c.Form(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Form not found")
}
