package model

// CountryOption describes a phone-field country choice.
type CountryOption struct {
	Code     string `json:"code"`     // ISO 2
	DialCode string `json:"dialCode"` // +1, +91 etc
	Name     string `json:"name"`
	Flag     string `json:"flag"`
}

var Countries = []CountryOption{
	{Code: "US", DialCode: "+1", Name: "United States", Flag: "🇺🇸"},
	{Code: "CA", DialCode: "+1", Name: "Canada", Flag: "🇨🇦"},
	{Code: "GB", DialCode: "+44", Name: "United Kingdom", Flag: "🇬🇧"},
	{Code: "DE", DialCode: "+49", Name: "Germany", Flag: "🇩🇪"},
	{Code: "FR", DialCode: "+33", Name: "France", Flag: "🇫🇷"},
	{Code: "IN", DialCode: "+91", Name: "India", Flag: "🇮🇳"},
	{Code: "AU", DialCode: "+61", Name: "Australia", Flag: "🇦🇺"},
	{Code: "JP", DialCode: "+81", Name: "Japan", Flag: "🇯🇵"},
	{Code: "CN", DialCode: "+86", Name: "China", Flag: "🇨🇳"},
	{Code: "BR", DialCode: "+55", Name: "Brazil", Flag: "🇧🇷"},
	{Code: "ZA", DialCode: "+27", Name: "South Africa", Flag: "🇿🇦"},
	{Code: "NG", DialCode: "+234", Name: "Nigeria", Flag: "🇳🇬"},
	{Code: "AE", DialCode: "+971", Name: "United Arab Emirates", Flag: "🇦🇪"},
	{Code: "SG", DialCode: "+65", Name: "Singapore", Flag: "🇸🇬"},
	{Code: "ES", DialCode: "+34", Name: "Spain", Flag: "🇪🇸"},
	{Code: "IT", DialCode: "+39", Name: "Italy", Flag: "🇮🇹"},
	{Code: "SE", DialCode: "+46", Name: "Sweden", Flag: "🇸🇪"},
	{Code: "NL", DialCode: "+31", Name: "Netherlands", Flag: "🇳🇱"},
	{Code: "CH", DialCode: "+41", Name: "Switzerland", Flag: "🇨🇭"},
	{Code: "MX", DialCode: "+52", Name: "Mexico", Flag: "🇲🇽"},
}

// CountryByCode looks up a country by its ISO 2 code.
func CountryByCode(code string) (CountryOption, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return CountryOption{}, false
}
