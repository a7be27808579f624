package domain

import (
	"fmt"
	"strings"
)

// Brief is the product description submitted when a session starts.
// It is stored under "user_input" and never changes afterwards.
type Brief struct {
	ProductName        string `json:"productName" jsonschema:"description=Name of the product being launched"`
	ProductDescription string `json:"productDescription,omitempty"`
	USP                string `json:"usp,omitempty" jsonschema:"description=Unique selling proposition"`
	BrandVoice         string `json:"brandVoice,omitempty"`
	TargetLocation     string `json:"targetLocation,omitempty"`
	Competitors        string `json:"competitors,omitempty"`
	LaunchObjective    string `json:"launchObjective,omitempty"`
	CustomerHypothesis string `json:"customerHypothesis,omitempty"`
}

// Validate reports whether the brief carries enough to start a session.
func (b Brief) Validate() error {
	if strings.TrimSpace(b.ProductName) == "" {
		return fmt.Errorf("%w: productName is required", ErrInvalidBrief)
	}
	return nil
}

// Fields exposes the brief as ordered label/value pairs, skipping empty values.
func (b Brief) Fields() [][2]string {
	all := [][2]string{
		{"Product", b.ProductName},
		{"Description", b.ProductDescription},
		{"USP", b.USP},
		{"Brand voice", b.BrandVoice},
		{"Target location", b.TargetLocation},
		{"Competitors", b.Competitors},
		{"Launch objective", b.LaunchObjective},
		{"Customer hypothesis", b.CustomerHypothesis},
	}
	out := all[:0]
	for _, f := range all {
		if strings.TrimSpace(f[1]) != "" {
			out = append(out, f)
		}
	}
	return out
}

// Map applies fn to every free-text field of the brief.
func (b Brief) Map(fn func(string) string) Brief {
	return Brief{
		ProductName:        fn(b.ProductName),
		ProductDescription: fn(b.ProductDescription),
		USP:                fn(b.USP),
		BrandVoice:         fn(b.BrandVoice),
		TargetLocation:     fn(b.TargetLocation),
		Competitors:        fn(b.Competitors),
		LaunchObjective:    fn(b.LaunchObjective),
		CustomerHypothesis: fn(b.CustomerHypothesis),
	}
}

// String renders the brief as "Label: value" lines.
func (b Brief) String() string {
	var sb strings.Builder
	for _, f := range b.Fields() {
		fmt.Fprintf(&sb, "%s: %s\n", f[0], f[1])
	}
	return sb.String()
}
