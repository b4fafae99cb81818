package extract

import (
	"context"
	"log/slog"
	"regexp"

	"receiptlens/constants"
	"receiptlens/internal/geo"
	"receiptlens/internal/ner"
)

var rePostalCode = regexp.MustCompile(`\b\d{6}\b`)

// PostalLookup maps a postal code to an administrative place name.
type PostalLookup interface {
	DistrictForCode(ctx context.Context, code string) (string, error)
}

// PlaceLookup checks whether a free-text name is a real settlement.
type PlaceLookup interface {
	Verify(ctx context.Context, name string) geo.Verification
}

// CityResolver finds and validates the city of purchase. The postal code is
// the most reliable signal when present (delivery receipts embed it); entity
// recognition is the fallback, with two independently trained recognizers
// tried in sequence because their error profiles differ. Place verification
// rejects recognizer false positives such as brand names.
type CityResolver struct {
	Postal      PostalLookup     // nil disables the postal shortcut
	Recognizers []ner.Recognizer // tried in order
	Places      PlaceLookup      // nil disables verification
	Logger      *slog.Logger
}

func NewCityResolver(postal PostalLookup, recognizers []ner.Recognizer, places PlaceLookup, logger *slog.Logger) *CityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CityResolver{Postal: postal, Recognizers: recognizers, Places: places, Logger: logger}
}

// Resolve returns the city of purchase, or absent if no strategy qualifies.
// External-lookup failures are swallowed and the next strategy tier is tried.
func (r *CityResolver) Resolve(ctx context.Context, text string) (string, bool) {
	if city, ok := r.fromPostalCode(ctx, text); ok {
		return city, true
	}

	for _, rec := range r.Recognizers {
		entities, err := rec.Recognize(ctx, text)
		if err != nil {
			r.Logger.Warn("city.ner.failed", "recognizer", rec.Name(), "error", err)
			continue
		}
		for _, ent := range entities {
			if !ner.IsLocation(ent.Group) {
				continue
			}
			if r.Places != nil {
				if v := r.Places.Verify(ctx, ent.Word); v == geo.VerifyRejected {
					r.Logger.Debug("city.candidate.rejected",
						"recognizer", rec.Name(), "candidate", ent.Word)
					continue
				}
				// Unknown is not a rejection: the lookup failed and
				// provided no evidence, so the candidate stands.
			}
			r.Logger.Debug("city.candidate.accepted", "recognizer", rec.Name(), "candidate", ent.Word)
			return ent.Word, true
		}
	}
	return "", false
}

func (r *CityResolver) fromPostalCode(ctx context.Context, text string) (string, bool) {
	if r.Postal == nil {
		return "", false
	}
	code := rePostalCode.FindString(text)
	if code == "" {
		return "", false
	}
	city, err := r.Postal.DistrictForCode(ctx, code)
	if err != nil {
		r.Logger.Warn("city.postal.failed", "code", code, "error", err)
		return "", false
	}
	r.Logger.Debug("city.postal.ok", "code", code, "city", city, "source", constants.CitySourcePostal)
	return city, true
}
