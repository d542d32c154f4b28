package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"strings"

	"place_discovery/internal/domain"
)

const defaultListLimit = 500

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// jsonText marshals v for a JSON column; a marshal failure stores NULL
// rather than poisoning the whole upsert.
func jsonText(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

type Repo struct {
	db    *sql.DB
	limit int
}

// New wraps db. limit caps how many rows a proximity query may return;
// zero or negative picks the default.
func New(db *sql.DB, limit int) *Repo {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &Repo{db: db, limit: limit}
}

// EnsureSchema creates the places table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

func (r *Repo) UpsertPlaces(ctx context.Context, ps []domain.Place) error {
	if len(ps) == 0 {
		return nil
	}
	values := make([]string, 0, len(ps))
	args := make([]any, 0, len(ps)*10)
	for _, p := range ps {
		var cats, hours, ratings any
		if len(p.Categories) > 0 {
			cats = jsonText(p.Categories)
		}
		if p.Hours != nil {
			hours = jsonText(p.Hours)
		}
		if len(p.Ratings) > 0 {
			ratings = jsonText(p.Ratings)
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			p.ID,
			p.Name,
			p.Coord.Lat,
			p.Coord.Lon,
			cats,
			hours,
			ratings,
			valStr(p.Address),
			valStr(p.ImageURL),
			valJSON(p.RawJSON),
		)
	}
	sqlStr := insertPlacesPrefix + strings.Join(values, ",") + insertPlacesOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) GetPlace(ctx context.Context, id string) (domain.Place, error) {
	row := r.db.QueryRowContext(ctx, getPlaceSQL, id)
	p, err := scanPlace(row)
	if err == sql.ErrNoRows {
		return domain.Place{}, domain.ErrNotFound
	}
	return p, err
}

// GetPlaces returns every stored place within radiusKm of near. The SQL side
// prefilters with a bounding box; the exact haversine check happens here.
func (r *Repo) GetPlaces(ctx context.Context, near domain.Coordinate, radiusKm float64) ([]domain.Place, error) {
	latDelta := radiusKm / 111.32
	cos := math.Cos(near.Lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01 // near the poles the box degenerates; widen instead of dividing by ~0
	}
	lonDelta := radiusKm / (111.32 * cos)

	rows, err := r.db.QueryContext(ctx, listPlacesSQL,
		near.Lat-latDelta, near.Lat+latDelta,
		near.Lon-lonDelta, near.Lon+lonDelta,
		r.limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		if near.DistanceTo(p.Coord) <= radiusKm*1000 {
			out = append(out, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPlace(row rowScanner) (domain.Place, error) {
	var p domain.Place
	var categories, hours, ratings, raw []byte
	var address, imageURL sql.NullString

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Coord.Lat,
		&p.Coord.Lon,
		&categories,
		&hours,
		&ratings,
		&address,
		&imageURL,
		&raw,
	); err != nil {
		return domain.Place{}, err
	}

	if len(categories) > 0 {
		_ = json.Unmarshal(categories, &p.Categories)
	}
	if len(hours) > 0 {
		var ws domain.WeekSchedule
		if json.Unmarshal(hours, &ws) == nil {
			p.Hours = &ws
		}
	}
	if len(ratings) > 0 {
		_ = json.Unmarshal(ratings, &p.Ratings)
	}
	if address.Valid {
		a := address.String
		p.Address = &a
	}
	if imageURL.Valid {
		u := imageURL.String
		p.ImageURL = &u
	}
	if len(raw) > 0 {
		p.RawJSON = append([]byte(nil), raw...)
	}
	return p, nil
}
