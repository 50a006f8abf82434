package universities

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Institution is a university record returned by the directory.
type Institution struct {
	AlphaTwoCode  string   `json:"alpha_two_code" yaml:"alpha_two_code" toml:"alpha_two_code"`
	Country       string   `json:"country" yaml:"country" toml:"country"`
	Domains       []string `json:"domains" yaml:"domains" toml:"domains"`
	Name          string   `json:"name" yaml:"name" toml:"name"`
	StateProvince *string  `json:"state_province" yaml:"state_province,omitempty" toml:"state_province,omitempty"`
	WebPages      []string `json:"web_pages" yaml:"web_pages" toml:"web_pages"`
}

// GetStateProvince returns the state or province, or empty string if not set.
func (i *Institution) GetStateProvince() string {
	if i.StateProvince == nil {
		return ""
	}
	return *i.StateProvince
}

// Website returns the canonical web page, or empty string if none.
func (i *Institution) Website() string {
	if len(i.WebPages) == 0 {
		return ""
	}
	return i.WebPages[0]
}

// institutionJSON accepts both spellings of the state key,
// the live API uses `state-province`.
type institutionJSON struct {
	AlphaTwoCode      string   `json:"alpha_two_code"`
	Country           string   `json:"country"`
	Domains           []string `json:"domains"`
	Name              string   `json:"name"`
	StateProvince     *string  `json:"state_province"`
	StateProvinceDash *string  `json:"state-province"`
	WebPages          []string `json:"web_pages"`
}

// UnmarshalJSON implements json.Unmarshaler
func (i *Institution) UnmarshalJSON(data []byte) error {
	var v institutionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.WithStack(err)
	}
	*i = Institution{
		AlphaTwoCode:  v.AlphaTwoCode,
		Country:       v.Country,
		Domains:       v.Domains,
		Name:          v.Name,
		StateProvince: v.StateProvince,
		WebPages:      v.WebPages,
	}
	if i.StateProvince == nil {
		i.StateProvince = v.StateProvinceDash
	}
	return nil
}
