package fill

import (
	"testing"

	"github.com/escform/escform/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesAllKnownTypes(t *testing.T) {
	r := NewRegistry()
	for typ := range map[model.QuestionType]bool{
		model.TypeTextShort: true, model.TypeTextLong: true, model.TypeNumber: true,
		model.TypeDate: true, model.TypeLegal: true, model.TypeChoiceBool: true,
		model.TypeChoiceSingle: true, model.TypeChoiceMultiple: true,
		model.TypeChoiceCheckbox: true, model.TypeChoiceDropdown: true,
		model.TypeChoicePicture: true, model.TypeFileAny: true,
		model.TypeFileImageOrVideo: true, model.TypeRatingStar: true,
		model.TypeRatingRank: true, model.TypeRatingZeroToTen: true,
		model.TypeInfoEmail: true, model.TypeInfoPhone: true, model.TypeInfoURL: true,
		model.TypeUserAddress: true, model.TypeUserDetail: true,
		model.TypeScreenWelcome: true, model.TypeScreenStatement: true,
		model.TypeScreenEnd: true,
	} {
		spec, err := r.Resolve(typ)
		require.NoError(t, err, "type %s", typ)
		assert.NotNil(t, spec.Render)
		assert.NotNil(t, spec.Validate)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("MATRIX")
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
}

func TestRegistryPlaceholder(t *testing.T) {
	r := NewRegistry()
	spec := r.ResolveOrPlaceholder("MATRIX")

	q := model.Question{ID: "q1", Type: "MATRIX", Title: "Rate these", Required: true}
	prompt := spec.Render(q, nil)
	assert.Equal(t, "placeholder", prompt.Control)
	assert.Equal(t, "no renderer for question type: MATRIX", prompt.Diagnostic)
	assert.Equal(t, "Rate these", prompt.Title)

	// the placeholder must never block navigation, even when marked required
	assert.True(t, spec.Validate(q, nil).OK)
}

func TestRenderPrompt(t *testing.T) {
	r := NewRegistry()
	spec, err := r.Resolve(model.TypeChoiceSingle)
	require.NoError(t, err)

	q := model.Question{
		ID:          "q1",
		Type:        model.TypeChoiceSingle,
		Title:       "Pick one",
		Description: "Only one",
		Placeholder: "choose",
		Required:    true,
		Options: []model.Option{
			{ID: "o1", Value: "a", Label: "Alpha"},
			{ID: "o2", Value: "b", Label: "   "},
			{ID: "o3", Value: "c", Label: "Gamma"},
		},
	}

	got := spec.Render(q, "a")
	want := Prompt{
		QuestionID:  "q1",
		Control:     "single-choice",
		Title:       "Pick one",
		Description: "Only one",
		Placeholder: "choose",
		Required:    true,
		Options: []model.Option{
			{ID: "o1", Value: "a", Label: "Alpha"},
			{ID: "o3", Value: "c", Label: "Gamma"},
		},
		Value: "a",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("prompt mismatch (-want +got):\n%s", diff)
	}
}
