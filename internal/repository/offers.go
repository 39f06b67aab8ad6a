package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
)

const (
	offersTable     = "ofertas"
	transitLocation = "Tránsito"
	dayLayout       = "2006-01-02"
)

// Offer is one row of the offers table.
type Offer struct {
	ID        int64   `json:"id"`
	Article   string  `json:"articulo"`
	Variety   string  `json:"variedad"`
	Crop      string  `json:"cultivo"`
	Client    string  `json:"cliente"`
	Flight    string  `json:"vuelo"`
	Date      string  `json:"fecha"`
	Location  string  `json:"ubicacion"`
	Available float64 `json:"disponible"`
	Reserved  float64 `json:"reservado"`
}

// Entry converts the offer into a catalog entry.
func (o Offer) Entry() catalog.Entry {
	return catalog.Entry{
		ID:      strconv.FormatInt(o.ID, 10),
		Variety: o.Variety,
		Crop:    o.Crop,
		Client:  o.Client,
		Flight:  o.Flight,
	}
}

// OfferDetails carries the packing figures shown once a variety is detected.
type OfferDetails struct {
	ID            int64  `json:"id"`
	Length        string `json:"longitud"`
	Bunches       int64  `json:"paquetes"`
	StemsPerBunch int64  `json:"tallos_paquete"`
	TotalStems    int64  `json:"tallos_totales"`
}

type OfferRepository interface {
	ListInTransit(ctx context.Context, day time.Time) ([]Offer, error)
	ListAll(ctx context.Context) ([]Offer, error)
	GetDetails(ctx context.Context, id int64) (*OfferDetails, error)
}

type offerRepository struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

func NewOfferRepository(db *DB, logger *slog.Logger) OfferRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &offerRepository{db: db.SQL, dialect: db.Dialect, logger: logger}
}

var offerColumns = []string{"id", "articulo", "variedad", "cultivo", "cliente", "vuelo", "fecha", "ubicacion", "disponible", "reservado"}

func (r *offerRepository) selectOffers() (*entsql.Selector, *entsql.SelectTable) {
	b := entsql.Dialect(r.dialect)
	t := b.Table(offersTable)
	cols := make([]string, len(offerColumns))
	for i, c := range offerColumns {
		cols[i] = t.C(c)
	}
	return b.Select(cols...).From(t), t
}

// ListInTransit returns the day's non-outlet offers still in transit, ordered
// by crop, variety, client and id.
func (r *offerRepository) ListInTransit(ctx context.Context, day time.Time) ([]Offer, error) {
	s, t := r.selectOffers()
	s.Where(entsql.And(
		entsql.EQ(t.C("fecha"), day.Format(dayLayout)),
		entsql.EQ(t.C("ubicacion"), transitLocation),
		entsql.EQ(t.C("es_outlet"), 0),
	)).OrderBy(t.C("cultivo"), t.C("variedad"), t.C("cliente"), t.C("id"))
	return r.query(ctx, "list_in_transit", s)
}

// ListAll returns every offer in id order.
func (r *offerRepository) ListAll(ctx context.Context) ([]Offer, error) {
	s, t := r.selectOffers()
	s.OrderBy(t.C("id"))
	return r.query(ctx, "list_all", s)
}

func (r *offerRepository) query(ctx context.Context, op string, s *entsql.Selector) ([]Offer, error) {
	start := time.Now()
	q, args := s.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("offers.query_error", "op", op, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabase, op, err)
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		var (
			o                        Offer
			art, vari, crop, cli, fl sql.NullString
			fecha, loc               sql.NullString
			avail, reserved          sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &art, &vari, &crop, &cli, &fl, &fecha, &loc, &avail, &reserved); err != nil {
			return nil, fmt.Errorf("%w: scan offer: %v", common.ErrDatabase, err)
		}
		o.Article, o.Variety, o.Crop, o.Client, o.Flight = art.String, vari.String, crop.String, cli.String, fl.String
		o.Date, o.Location = dateOnly(fecha.String), loc.String
		o.Available, o.Reserved = avail.Float64, reserved.Float64
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s rows: %v", common.ErrDatabase, op, err)
	}
	r.logger.Debug("offers.query_ok", "op", op, "rows", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// GetDetails loads packing figures for one offer. Missing total stems are
// computed from bunches times stems per bunch.
func (r *offerRepository) GetDetails(ctx context.Context, id int64) (*OfferDetails, error) {
	b := entsql.Dialect(r.dialect)
	t := b.Table(offersTable)
	q, args := b.
		Select(t.C("id"), t.C("longitud"), t.C("paquetes"), t.C("tallos_paquete"), t.C("tallos_totales")).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Limit(1).
		Query()

	var (
		d                    OfferDetails
		length               sql.NullString
		bunches, per, totals sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&d.ID, &length, &bunches, &per, &totals)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("OFFER_NOT_FOUND", fmt.Sprintf("offer %d not found", id), common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("offers.details_error", "id", id, "error", err)
		return nil, fmt.Errorf("%w: offer details: %v", common.ErrDatabase, err)
	}
	d.Length = length.String
	d.Bunches = bunches.Int64
	d.StemsPerBunch = per.Int64
	d.TotalStems = totals.Int64
	if !totals.Valid {
		d.TotalStems = d.Bunches * d.StemsPerBunch
	}
	return &d, nil
}

// Entries maps offers onto catalog entries, preserving order.
func Entries(offers []Offer) []catalog.Entry {
	out := make([]catalog.Entry, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.Entry())
	}
	return out
}

func dateOnly(s string) string {
	if len(s) >= len(dayLayout) {
		if _, err := time.Parse(dayLayout, s[:len(dayLayout)]); err == nil {
			return s[:len(dayLayout)]
		}
	}
	return s
}
