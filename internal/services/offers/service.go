// Package offers exposes the offers table to transports.
package offers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
)

const dayLayout = "2006-01-02"

var errNoDatabase = common.NewAppError("OFFERS_UNAVAILABLE", "no offers database configured", common.ErrCatalogUnavailable)

type Service struct {
	repo   repository.OfferRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewService wraps repo. A nil repo makes every call report the offers
// database as unavailable, which is the case for file catalogs.
func NewService(repo repository.OfferRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// Transit lists in-transit offers for day (YYYY-MM-DD), today when empty.
func (s *Service) Transit(ctx context.Context, day string) ([]repository.Offer, error) {
	if s.repo == nil {
		return nil, errNoDatabase
	}
	d := s.now()
	if day = strings.TrimSpace(day); day != "" {
		parsed, err := time.Parse(dayLayout, day)
		if err != nil {
			return nil, common.NewAppError("INVALID_INPUT", "fecha must be YYYY-MM-DD", common.ErrInvalidInput)
		}
		d = parsed
	}
	out, err := s.repo.ListInTransit(ctx, d)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []repository.Offer{}
	}
	s.logger.Debug("offers.transit", "day", d.Format(dayLayout), "count", len(out))
	return out, nil
}

// Details loads packing figures for the offer with the given id.
func (s *Service) Details(ctx context.Context, rawID string) (*repository.OfferDetails, error) {
	if s.repo == nil {
		return nil, errNoDatabase
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if v := common.NewValidator().Field("id", id, common.Positive); v.HasErrors() {
		return nil, common.NewAppError("INVALID_INPUT", fmt.Sprintf("invalid offer id %q: %s", rawID, v.ErrorMessage()), common.ErrInvalidInput)
	}
	return s.repo.GetDetails(ctx, id)
}
