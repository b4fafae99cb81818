package extract

import (
	"receiptlens/constants"
)

// Fields is the result of one extraction call. Each field is independently
// present (non-empty) or absent; no field depends on another having
// succeeded. Values are validated but unnormalized strings: the amount keeps
// its decimal component as extracted, the date keeps its source formatting.
type Fields struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	City   string `json:"city"`
}

// Missing returns the names of fields that could not be extracted.
func (f Fields) Missing() []string {
	var missing []string
	if f.Amount == "" {
		missing = append(missing, constants.FieldAmount)
	}
	if f.Date == "" {
		missing = append(missing, constants.FieldDate)
	}
	if f.City == "" {
		missing = append(missing, constants.FieldCity)
	}
	return missing
}

// Complete reports whether all three fields were extracted.
func (f Fields) Complete() bool {
	return f.Amount != "" && f.Date != "" && f.City != ""
}
