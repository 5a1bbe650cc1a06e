package model

import "time"

type ResponseStatus string

const (
	StatusDraft     ResponseStatus = "DRAFT"
	StatusCompleted ResponseStatus = "COMPLETED"
)

// AnswerMap maps question id to the answer value. Value shapes are
// type-dependent: string, float64, bool, []string or an address object.
type AnswerMap map[string]any

func (a AnswerMap) Clone() AnswerMap {
	clone := make(AnswerMap, len(a))
	for k, v := range a {
		clone[k] = v
	}
	return clone
}

type Response struct {
	ID          string         `json:"id,omitempty"`
	FormID      string         `json:"formId"`
	UserID      *string        `json:"userId"`
	Status      ResponseStatus `json:"status"`
	Data        AnswerMap      `json:"data"`
	PartialSave bool           `json:"partialSave"`
	Notified    bool           `json:"notified"`
	StartedAt   time.Time      `json:"startedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
}

// AddressValue is the structured answer of a USER_ADDRESS question.
type AddressValue struct {
	Address    string `json:"address,omitempty"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a AddressValue) Empty() bool {
	return a == AddressValue{}
}

// AddressFromValue coerces an answer value into an AddressValue. JSON
// decoding yields map[string]any, in-process callers pass the struct.
func AddressFromValue(v any) (AddressValue, bool) {
	switch a := v.(type) {
	case AddressValue:
		return a, true
	case *AddressValue:
		return *a, true
	case map[string]any:
		str := func(key string) string {
			s, _ := a[key].(string)
			return s
		}
		return AddressValue{
			Address:    str("address"),
			Address2:   str("address2"),
			City:       str("city"),
			State:      str("state"),
			Zip:        str("zip"),
			PostalCode: str("postalCode"),
			Country:    str("country"),
		}, true
	}
	return AddressValue{}, false
}

// ResponseEnvelope is the wire envelope of the response store endpoints.
type ResponseEnvelope struct {
	Success bool      `json:"success"`
	Data    *Response `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

// FormEnvelope is the wire envelope of the form fetch endpoints.
type FormEnvelope struct {
	Success bool   `json:"success"`
	Data    *Form  `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
