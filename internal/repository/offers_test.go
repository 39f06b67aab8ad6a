package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
)

const offersSchema = `
CREATE TABLE ofertas (
	id INTEGER PRIMARY KEY,
	articulo TEXT,
	variedad TEXT,
	cultivo TEXT,
	cliente TEXT,
	vuelo TEXT,
	fecha TEXT,
	ubicacion TEXT,
	disponible REAL,
	reservado REAL,
	es_outlet INTEGER DEFAULT 0,
	longitud TEXT,
	paquetes INTEGER,
	tallos_paquete INTEGER,
	tallos_totales INTEGER
)`

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), constants.SourceSQLite, Config{DSN: ":memory:"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(slog.New(slog.NewTextHandler(io.Discard, nil))) })

	_, err = db.SQL.Exec(offersSchema)
	require.NoError(t, err)
	_, err = db.SQL.Exec(`INSERT INTO ofertas
		(id, articulo, variedad, cultivo, cliente, vuelo, fecha, ubicacion, disponible, reservado, es_outlet, longitud, paquetes, tallos_paquete, tallos_totales) VALUES
		(1, 'R-50', 'PHOENIX 60-4', 'ROSA', 'ACME', '123-4567 8901', '2026-10-19', 'Tránsito', 10, 2, 0, '50', 4, 25, NULL),
		(2, 'R-60', 'EXPLORER', 'ROSA', 'BLOOM', '123-4567 8901', '2026-10-19', 'Tránsito', 5, 0, 0, '60', 2, 25, 48),
		(3, 'C-01', 'NOBBIO', 'CLAVEL', 'ACME', NULL, '2026-10-19', 'Tránsito', 1, 0, 0, NULL, NULL, NULL, NULL),
		(4, 'R-70', 'FREEDOM', 'ROSA', 'ACME', NULL, '2026-10-19', 'Tránsito', 1, 0, 1, '70', 1, 25, 25),
		(5, 'R-80', 'VENDELA', 'ROSA', 'ACME', NULL, '2026-10-19', 'Bodega', 1, 0, 0, '80', 1, 25, 25),
		(6, 'R-90', 'MONDIAL', 'ROSA', 'ACME', NULL, '2026-10-18', 'Tránsito', 1, 0, 0, '90', 1, 25, 25)`)
	require.NoError(t, err)
	return db
}

func TestListInTransit(t *testing.T) {
	repo := NewOfferRepository(openTestDB(t), nil)
	day := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

	offers, err := repo.ListInTransit(context.Background(), day)
	require.NoError(t, err)

	var ids []int64
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int64{3, 2, 1}, ids, "ordered by crop, variety, client, id")
	assert.Equal(t, "2026-10-19", offers[2].Date)
	assert.Equal(t, "ROSA", offers[2].Crop)
	assert.Equal(t, 10.0, offers[2].Available)
	assert.Empty(t, offers[0].Flight)

	entries := Entries(offers)
	assert.Equal(t, "1", entries[2].ID)
	assert.Equal(t, "PHOENIX 60-4", entries[2].Variety)
}

func TestListAll(t *testing.T) {
	repo := NewOfferRepository(openTestDB(t), nil)
	offers, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 6)
	assert.Equal(t, int64(1), offers[0].ID)
}

func TestGetDetails(t *testing.T) {
	repo := NewOfferRepository(openTestDB(t), nil)
	ctx := context.Background()

	d, err := repo.GetDetails(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &OfferDetails{ID: 1, Length: "50", Bunches: 4, StemsPerBunch: 25, TotalStems: 100}, d)

	d, err = repo.GetDetails(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(48), d.TotalStems, "stored totals win")

	d, err = repo.GetDetails(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, d.TotalStems)

	_, err = repo.GetDetails(ctx, 404)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOpenRejectsUnknownKind(t *testing.T) {
	_, err := Open(context.Background(), constants.SourceJSON, Config{}, nil)
	assert.Error(t, err)
}
