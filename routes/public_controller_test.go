package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/escform/escform/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surveyFixture() model.Form {
	return model.Form{
		Name:           "Customer Feedback",
		Description:    "Tell us how we did",
		AllowAnonymous: true,
		Questions: []model.Question{
			{Type: model.TypeScreenWelcome, Title: "Welcome"},
			{
				Type:     model.TypeChoiceSingle,
				Title:    "How was it?",
				Required: true,
				Options: []model.Option{
					{Value: "good", Label: "Good"},
					{Value: "bad", Label: "Bad"},
					{Value: "hidden", Label: "  "},
				},
			},
			{
				Type:     model.TypeTextLong,
				Title:    "Anything else?",
				Metadata: model.QuestionMetadata{Max: 500},
			},
			{Type: model.TypeScreenEnd, Title: "Thanks"},
		},
		Edges: []model.Edge{{SourceID: "a", TargetID: "b"}},
	}
}

func getForm(t *testing.T, api http.Handler, path string) (int, model.FormEnvelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	var envelope model.FormEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w.Code, envelope
}

func TestPublicGetFormById(t *testing.T) {
	a := newTestApp(t)
	api := apiRouter(a)
	form := seedForm(t, a, surveyFixture())

	code, envelope := getForm(t, api, "/forms/"+form.ID)
	require.Equal(t, http.StatusOK, code)
	require.True(t, envelope.Success)
	require.NotNil(t, envelope.Data)

	got := envelope.Data
	assert.Equal(t, form.ID, got.ID)
	assert.Equal(t, "Customer Feedback", got.Name)
	require.Len(t, got.Questions, 4)

	// questions come back in authored order
	assert.Equal(t, model.TypeScreenWelcome, got.Questions[0].Type)
	assert.Equal(t, model.TypeScreenEnd, got.Questions[3].Type)

	// labelless options are hidden from fillers
	choice := got.Questions[1]
	require.Len(t, choice.Options, 2)
	assert.Equal(t, "Good", choice.Options[0].Label)
	assert.Equal(t, "Bad", choice.Options[1].Label)

	// metadata round-trips
	max, present := got.Questions[2].Metadata.MaxNumber()
	require.True(t, present)
	assert.Equal(t, 500.0, max)

	require.Len(t, got.Edges, 1)
}

func TestPublicGetFormBySlug(t *testing.T) {
	a := newTestApp(t)
	api := apiRouter(a)
	form := seedForm(t, a, surveyFixture())
	require.NotEmpty(t, form.Slug)

	code, envelope := getForm(t, api, "/forms/slug/"+form.Slug)
	require.Equal(t, http.StatusOK, code)
	require.True(t, envelope.Success)
	assert.Equal(t, form.ID, envelope.Data.ID)
}

func TestPublicGetFormNotFound(t *testing.T) {
	a := newTestApp(t)
	api := apiRouter(a)

	code, envelope := getForm(t, api, "/forms/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Form not found", envelope.Message)

	code, envelope = getForm(t, api, "/forms/slug/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Form not found", envelope.Message)
}
