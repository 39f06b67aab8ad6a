package server

import (
	"context"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
	catalogsvc "github.com/joseph-ayodele/label-matcher/internal/services/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/services/match"
)

type fakeMatcher struct {
	last match.Request
	rid  string
}

func (f *fakeMatcher) Resolve(ctx context.Context, req match.Request) (resolver.Result, error) {
	f.last = req
	f.rid = common.RequestIDFromContext(ctx)
	switch req.Text {
	case "":
		return resolver.Result{}, common.NewAppError("INVALID_INPUT", "ocr_text is required", common.ErrValidation)
	case "DOWN":
		return resolver.Result{}, common.NewAppError("CATALOG_UNAVAILABLE", "catalog is not loaded", common.ErrCatalogUnavailable)
	case "PANIC":
		return resolver.Result{}, context.DeadlineExceeded
	case "NOTHING":
		return resolver.Result{Stage: constants.StageNone, DetectedCrop: "ROSA"}, nil
	}
	conf := 1.0
	return resolver.Result{
		Success:    true,
		Variety:    "PHOENIX 60-4",
		Crop:       "ROSA",
		Client:     "ACME",
		Confidence: &conf,
		Evidence:   "heuristic match (100%)",
		Stage:      constants.StageHeuristic,
		EntryID:    "1",
	}, nil
}

type fakeCatalog struct{ st catalogsvc.Status }

func (f *fakeCatalog) Status() catalogsvc.Status { return f.st }

type fakeOffers struct{}

func (fakeOffers) Transit(_ context.Context, day string) ([]repository.Offer, error) {
	if day == "bad" {
		return nil, common.NewAppError("INVALID_INPUT", "fecha must be YYYY-MM-DD", common.ErrInvalidInput)
	}
	return []repository.Offer{{ID: 1, Variety: "PHOENIX 60-4", Crop: "ROSA", Date: "2026-10-19", Location: "Tránsito"}}, nil
}

func (fakeOffers) Details(_ context.Context, id string) (*repository.OfferDetails, error) {
	switch id {
	case "1":
		return &repository.OfferDetails{ID: 1, Length: "50", Bunches: 4, StemsPerBunch: 25, TotalStems: 100}, nil
	case "abc":
		return nil, common.NewAppError("INVALID_INPUT", `invalid offer id "abc"`, common.ErrInvalidInput)
	}
	return nil, common.NewAppError("OFFER_NOT_FOUND", "offer 9 not found", common.ErrNotFound)
}

func loadedCatalog() *fakeCatalog {
	return &fakeCatalog{st: catalogsvc.Status{
		Source:   "json:ofertas.json",
		Version:  3,
		Entries:  2,
		Crops:    []string{"ROSA"},
		LoadedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}}
}
