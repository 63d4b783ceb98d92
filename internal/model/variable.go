package model

// DetailBin is one bracket of a detail-table breakdown. Fields are the raw
// survey fields whose counts fall in [Low, High].
type DetailBin struct {
	Low    float64  `yaml:"low" json:"low"`
	High   float64  `yaml:"high" json:"high"`
	Fields []string `yaml:"fields" json:"fields"`
}

// DetailSpec describes the finer-grained breakdown underlying a summary
// statistic, used to recompute the statistic from pooled neighbor data.
type DetailSpec struct {
	// TotalField is the raw field carrying the breakdown's sample count.
	TotalField string      `yaml:"total_field" json:"total_field"`
	Bins       []DetailBin `yaml:"bins" json:"bins"`
}

// VariableDef defines one derived variable: a ratio of summed numerator raw
// fields to summed denominator raw fields. An empty denominator list means a
// denominator of one. Inverse marks variables whose ratio is inversely
// related to vulnerability.
type VariableDef struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Numerator   []string    `yaml:"numerator" json:"numerator"`
	Denominator []string    `yaml:"denominator,omitempty" json:"denominator,omitempty"`
	Inverse     bool        `yaml:"inverse,omitempty" json:"inverse,omitempty"`
	Detail      *DetailSpec `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// RawFields returns every raw field the definition references.
func (d VariableDef) RawFields() []string {
	out := make([]string, 0, len(d.Numerator)+len(d.Denominator))
	out = append(out, d.Numerator...)
	out = append(out, d.Denominator...)
	return out
}
