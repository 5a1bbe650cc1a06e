package model

import "time"

type FormPageType string

const (
	PageTypeStepper FormPageType = "STEPPER"
	PageTypeSingle  FormPageType = "SINGLE"
)

type Form struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description,omitempty"`
	Slug                string       `json:"slug"`
	LogoURL             string       `json:"logoUrl,omitempty"`
	MultipleSubmissions bool         `json:"multipleSubmissions"`
	AllowAnonymous      bool         `json:"allowAnonymous"`
	FormPageType        FormPageType `json:"formPageType,omitempty"`
	Metadata            FormMetadata `json:"metadata,omitempty"`
	Questions           []Question   `json:"questions"`
	Edges               []Edge       `json:"edges,omitempty"`
	CreatedAt           time.Time    `json:"createdAt,omitempty"`
	UpdatedAt           time.Time    `json:"updatedAt,omitempty"`
}

// FormMetadata carries presentation overrides. Opaque to the runtime logic
// except as a presentation context produced alongside navigation state.
type FormMetadata struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	ActionBtnSize  string `json:"actionBtnSize,omitempty"`
	BackBtnLabel   string `json:"backBtnLabel,omitempty"`
	NextBtnLabel   string `json:"nextBtnLabel,omitempty"`
	SubmitBtnLabel string `json:"submitBtnLabel,omitempty"`
}

// Edge links two questions in the builder's branching graph. It is persisted
// and served but not consumed by the linear navigation walk.
type Edge struct {
	ID       string `json:"id,omitempty"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// WelcomeScreen returns the form's welcome screen question, if any.
func (f *Form) WelcomeScreen() *Question {
	return f.screen(TypeScreenWelcome)
}

// EndScreen returns the form's end screen question, if any.
func (f *Form) EndScreen() *Question {
	return f.screen(TypeScreenEnd)
}

func (f *Form) screen(t QuestionType) *Question {
	for i := range f.Questions {
		if f.Questions[i].Type == t {
			return &f.Questions[i]
		}
	}
	return nil
}

// Steps returns the answerable/navigable question sequence, with welcome and
// end screens excluded.
func (f *Form) Steps() []Question {
	steps := make([]Question, 0, len(f.Questions))
	for _, q := range f.Questions {
		if !q.Type.IsScreen() {
			steps = append(steps, q)
		}
	}
	return steps
}
