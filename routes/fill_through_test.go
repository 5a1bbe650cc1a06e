package routes

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/escform/escform/client"
	"github.com/escform/escform/fill"
	"github.com/escform/escform/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full loop: a fill session persisting through the REST client against
// the real router, drafts and all.
func TestFillThroughOverHTTP(t *testing.T) {
	a := newTestApp(t)
	seeded := seedForm(t, a, model.Form{
		Name:                "Customer Feedback",
		MultipleSubmissions: true,
		AllowAnonymous:      true,
		Questions: []model.Question{
			{Type: model.TypeScreenWelcome, Title: "Welcome"},
			{Type: model.TypeTextShort, Title: "Your name", Required: true},
			{Type: model.TypeInfoEmail, Title: "Your email"},
			{Type: model.TypeScreenEnd, Title: "Thanks"},
		},
	})

	srv := httptest.NewServer(Wire(a))
	defer srv.Close()
	c := client.New(srv.URL)

	ctx := context.Background()
	form, err := c.FormBySlug(ctx, seeded.Slug)
	require.NoError(t, err)

	s, err := fill.NewSession(form, fill.WithStore(c), fill.StrictTypes())
	require.NoError(t, err)
	require.NoError(t, s.Start())

	steps := form.Steps()
	require.Len(t, steps, 2)

	require.NoError(t, s.SetAnswer(steps[0].ID, "Ada"))
	require.NoError(t, s.Next(ctx))
	draftID := s.ResponseID()
	assert.NotEmpty(t, draftID, "first advance created a draft server-side")

	require.NoError(t, s.SetAnswer(steps[1].ID, "ada@example.com"))
	require.NoError(t, s.Submit(ctx))

	assert.Equal(t, fill.Completed, s.State())
	require.NotNil(t, s.Response())
	assert.Equal(t, draftID, s.Response().ID)
	assert.Equal(t, model.StatusCompleted, s.Response().Status)
	assert.NotNil(t, s.Response().SubmittedAt)

	// the completed response is on record
	var status model.ResponseStatus
	var partial bool
	err = a.QueryRowContext(ctx, `SELECT status, partial_save FROM response WHERE id = ?`, draftID).
		Scan(&status, &partial)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, status)
	assert.False(t, partial)
}
