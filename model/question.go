package model

import (
	"strconv"
	"strings"
	"time"
)

type QuestionType string

const (
	TypeTextShort        QuestionType = "TEXT_SHORT"
	TypeTextLong         QuestionType = "TEXT_LONG"
	TypeNumber           QuestionType = "NUMBER"
	TypeDate             QuestionType = "DATE"
	TypeLegal            QuestionType = "LEAGAL"
	TypeChoiceBool       QuestionType = "CHOICE_BOOL"
	TypeChoiceSingle     QuestionType = "CHOICE_SINGLE"
	TypeChoiceMultiple   QuestionType = "CHOICE_MULTIPLE"
	TypeChoiceCheckbox   QuestionType = "CHOICE_CHECKBOX"
	TypeChoiceDropdown   QuestionType = "CHOICE_DROPDOWN"
	TypeChoicePicture    QuestionType = "CHOICE_PICTURE"
	TypeFileAny          QuestionType = "FILE_ANY"
	TypeFileImageOrVideo QuestionType = "FILE_IMAGE_OR_VIDEO"
	TypeRatingStar       QuestionType = "RATING_STAR"
	TypeRatingRank       QuestionType = "RATING_RANK"
	TypeRatingZeroToTen  QuestionType = "RATING_ZERO_TO_TEN"
	TypeInfoEmail        QuestionType = "INFO_EMAIL"
	TypeInfoPhone        QuestionType = "INFO_PHONE"
	TypeInfoURL          QuestionType = "INFO_URL"
	TypeUserAddress      QuestionType = "USER_ADDRESS"
	TypeUserDetail       QuestionType = "USER_DETAIL"
	TypeScreenWelcome    QuestionType = "SCREEN_WELCOME"
	TypeScreenStatement  QuestionType = "SCREEN_STATEMENT"
	TypeScreenEnd        QuestionType = "SCREEN_END"
)

var questionTypes = map[QuestionType]bool{
	TypeTextShort: true, TypeTextLong: true, TypeNumber: true, TypeDate: true,
	TypeLegal: true, TypeChoiceBool: true, TypeChoiceSingle: true,
	TypeChoiceMultiple: true, TypeChoiceCheckbox: true, TypeChoiceDropdown: true,
	TypeChoicePicture: true, TypeFileAny: true, TypeFileImageOrVideo: true,
	TypeRatingStar: true, TypeRatingRank: true, TypeRatingZeroToTen: true,
	TypeInfoEmail: true, TypeInfoPhone: true, TypeInfoURL: true,
	TypeUserAddress: true, TypeUserDetail: true, TypeScreenWelcome: true,
	TypeScreenStatement: true, TypeScreenEnd: true,
}

func (t QuestionType) Known() bool {
	return questionTypes[t]
}

// IsScreen reports whether the type is a pre-flow or post-flow screen,
// excluded from the answerable question sequence.
func (t QuestionType) IsScreen() bool {
	return t == TypeScreenWelcome || t == TypeScreenEnd
}

type Question struct {
	ID          string           `json:"id"`
	FormID      string           `json:"formId,omitempty"`
	Type        QuestionType     `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required"`
	Order       int              `json:"order"`
	Metadata    QuestionMetadata `json:"metadata,omitempty"`
	Options     []Option         `json:"options,omitempty"`
}

// VisibleOptions filters out entries with an empty label: labelless options
// never count toward the available options.
func (q Question) VisibleOptions() []Option {
	visible := make([]Option, 0, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o.Label) != "" {
			visible = append(visible, o)
		}
	}
	return visible
}

type Option struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// QuestionMetadata is the declarative per-type constraint bag. Each field
// type reads only the subset it understands; unknown keys are ignored on
// decode. Min and Max are numbers for numeric/text/selection constraints and
// date strings for date constraints, so they stay loosely typed with
// accessors below.
type QuestionMetadata struct {
	Min                any      `json:"min,omitempty"`
	Max                any      `json:"max,omitempty"`
	Pattern            string   `json:"pattern,omitempty"`
	MaxSizeMB          float64  `json:"maxSizeMB,omitempty"`
	Randomize          bool     `json:"randomize,omitempty"`
	AnyFileType        bool     `json:"anyFileType,omitempty"`
	AllowedFileTypes   []string `json:"allowedFileTypes,omitempty"`
	AllowAnyCountry    bool     `json:"allowAnyCountry,omitempty"`
	AllowedCountries   []string `json:"allowedCountries,omitempty"`
	StarCount          int      `json:"starCount,omitempty"`
	DetailBtnText      string   `json:"detailBtnText,omitempty"`
	UserConsentText    string   `json:"userConsentText,omitempty"`
	UserConsentRequire bool     `json:"userConsentRequired,omitempty"`

	Address            bool `json:"address,omitempty"`
	AddressRequired    bool `json:"addressRequired,omitempty"`
	Address2           bool `json:"address2,omitempty"`
	Address2Required   bool `json:"address2Required,omitempty"`
	City               bool `json:"city,omitempty"`
	CityRequired       bool `json:"cityRequired,omitempty"`
	State              bool `json:"state,omitempty"`
	StateRequired      bool `json:"stateRequired,omitempty"`
	Zip                bool `json:"zip,omitempty"`
	ZipRequired        bool `json:"zipRequired,omitempty"`
	Country            bool `json:"country,omitempty"`
	CountryRequired    bool `json:"countryRequired,omitempty"`
	PostalCode         bool `json:"postalCode,omitempty"`
	PostalCodeRequired bool `json:"postalCodeRequired,omitempty"`
}

func (m QuestionMetadata) MinNumber() (float64, bool) {
	return toNumber(m.Min)
}

func (m QuestionMetadata) MaxNumber() (float64, bool) {
	return toNumber(m.Max)
}

func (m QuestionMetadata) MinDate() (time.Time, bool) {
	return toDate(m.Min)
}

func (m QuestionMetadata) MaxDate() (time.Time, bool) {
	return toDate(m.Max)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func toDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
