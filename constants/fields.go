package constants

// Field names reported back to the caller when extraction misses.
const (
	FieldAmount = "amount"
	FieldDate   = "date"
	FieldCity   = "city"
)

// CitySource identifies which strategy produced a city candidate.
type CitySource string

// Stable values, these end up in logs.
const (
	CitySourcePostal       CitySource = "postal-lookup"
	CitySourceNERPrimary   CitySource = "ner-primary"
	CitySourceNERSecondary CitySource = "ner-secondary"
)

// OCRMethod identifies which engine produced the recognized text.
const (
	OCRMethodPrimary  = "model-ocr"
	OCRMethodFallback = "tesseract-ocr"
)
