package fill

import (
	"fmt"

	"github.com/escform/escform/model"
)

// Prompt is the render descriptor handed to the rendering surface. The
// surface owns presentation only; authoritative validation state stays with
// the session.
type Prompt struct {
	QuestionID  string                 `json:"questionId"`
	Control     string                 `json:"control"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty"`
	Required    bool                   `json:"required"`
	Options     []model.Option         `json:"options,omitempty"`
	Metadata    model.QuestionMetadata `json:"metadata,omitempty"`
	Value       any                    `json:"value,omitempty"`
	Diagnostic  string                 `json:"diagnostic,omitempty"`
}

type RenderFunc func(q model.Question, value any) Prompt

type ValidateFunc func(q model.Question, value any) Result

// FieldSpec pairs the renderer and validator of one question type.
type FieldSpec struct {
	Render   RenderFunc
	Validate ValidateFunc
}

// Registry maps question-type tags to field specs. Pure lookup, no side
// effects.
type Registry struct {
	specs map[model.QuestionType]FieldSpec
}

func NewRegistry() *Registry {
	r := &Registry{specs: make(map[model.QuestionType]FieldSpec)}

	register := func(t model.QuestionType, control string, validate ValidateFunc) {
		r.Register(t, FieldSpec{
			Render:   renderControl(control),
			Validate: validate,
		})
	}

	register(model.TypeTextShort, "text", validateText)
	register(model.TypeTextLong, "textarea", validateText)
	register(model.TypeNumber, "number", validateNumber)
	register(model.TypeDate, "date", validateDate)
	register(model.TypeLegal, "legal", validateBool)
	register(model.TypeChoiceBool, "boolean", validateBool)
	register(model.TypeChoiceSingle, "single-choice", validateRequiredOnly)
	register(model.TypeChoiceMultiple, "multi-choice", validateSelection)
	register(model.TypeChoiceCheckbox, "checkbox", validateSelection)
	register(model.TypeChoiceDropdown, "dropdown", validateRequiredOnly)
	register(model.TypeChoicePicture, "picture-choice", validateRequiredOnly)
	register(model.TypeFileAny, "file", validateRequiredOnly)
	register(model.TypeFileImageOrVideo, "file", validateRequiredOnly)
	register(model.TypeRatingStar, "rating", validateRequiredOnly)
	register(model.TypeRatingRank, "rating", validateRequiredOnly)
	register(model.TypeRatingZeroToTen, "rating", validateRequiredOnly)
	register(model.TypeInfoEmail, "email", validateEmail)
	register(model.TypeInfoPhone, "phone", validatePhone)
	register(model.TypeInfoURL, "url", validateURL)
	register(model.TypeUserAddress, "address", validateAddress)
	register(model.TypeUserDetail, "details", validateRequiredOnly)
	register(model.TypeScreenWelcome, "welcome", validateAlwaysOK)
	register(model.TypeScreenStatement, "statement", validateAlwaysOK)
	register(model.TypeScreenEnd, "end", validateAlwaysOK)

	return r
}

func (r *Registry) Register(t model.QuestionType, spec FieldSpec) {
	r.specs[t] = spec
}

// Resolve returns the field spec for a type tag, or ErrUnknownQuestionType
// when the tag is not registered.
func (r *Registry) Resolve(t model.QuestionType) (FieldSpec, error) {
	spec, ok := r.specs[t]
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %s", ErrUnknownQuestionType, t)
	}
	return spec, nil
}

// ResolveOrPlaceholder degrades an unknown type to a visible diagnostic
// placeholder so the rest of the form remains usable. The question is never
// silently dropped from the sequence; the placeholder validates as optional.
func (r *Registry) ResolveOrPlaceholder(t model.QuestionType) FieldSpec {
	spec, err := r.Resolve(t)
	if err != nil {
		return placeholderSpec(t)
	}
	return spec
}

func placeholderSpec(t model.QuestionType) FieldSpec {
	return FieldSpec{
		Render: func(q model.Question, value any) Prompt {
			p := renderControl("placeholder")(q, value)
			p.Diagnostic = fmt.Sprintf("no renderer for question type: %s", t)
			return p
		},
		Validate: validateAlwaysOK,
	}
}

func renderControl(control string) RenderFunc {
	return func(q model.Question, value any) Prompt {
		return Prompt{
			QuestionID:  q.ID,
			Control:     control,
			Title:       q.Title,
			Description: q.Description,
			Placeholder: q.Placeholder,
			Required:    q.Required,
			Options:     q.VisibleOptions(),
			Metadata:    q.Metadata,
			Value:       value,
		}
	}
}
