package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/value"
)

// Record is one stored row.
type Record struct {
	Model  string
	ID     string
	Data   value.Object
	Digest string
	Seq    int64
}

// Find returns the stored fields of a record.
// A missing record wraps object.ErrNotFound.
func (r records) Find(ctx context.Context, model, id string) (value.Object, error) {
	var text string
	err := r.q.QueryRowContext(ctx, `
		SELECT data FROM records WHERE model = ? AND id = ?
	`, model, id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return value.Object{}, fmt.Errorf("find %s %s: %w", model, id, object.ErrNotFound)
	}
	if err != nil {
		return value.Object{}, fmt.Errorf("find %s %s: %w", model, id, err)
	}
	return unmarshalData(text)
}

// Exists reports whether a record of model other than excludeID stores v
// in field.
func (r records) Exists(ctx context.Context, model, field string, v value.Value, excludeID string) (bool, error) {
	arg, err := sqlArg(v)
	if err != nil {
		return false, fmt.Errorf("exists %s.%s: %w", model, field, err)
	}
	if arg == nil {
		return false, nil
	}

	var found int
	err = r.q.QueryRowContext(ctx, `
		SELECT 1 FROM records
		WHERE model = ? AND id != ? AND json_extract(data, ?) = ?
		LIMIT 1
	`, model, excludeID, jsonPath(field), arg).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s.%s: %w", model, field, err)
	}
	return true, nil
}

// List returns every record of model.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no records exist.
func (r records) List(ctx context.Context, model string) ([]Record, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT model, id, data, digest, seq
		FROM records
		WHERE model = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, model)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", model, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", model, err)
	}
	return out, nil
}

// Models returns every model name with stored records, alphabetically.
func (r records) Models(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT DISTINCT model FROM records
		ORDER BY model COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	models := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}
	return models, nil
}

// LastSeq returns the highest seq used in the store.
func (r records) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM records
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// Snapshot digests the whole store: every model's records keyed by id.
// Equal snapshots mean equal stored data regardless of write order.
func (r records) Snapshot(ctx context.Context) (string, error) {
	models, err := r.Models(ctx)
	if err != nil {
		return "", err
	}
	pairs := make([]value.Pair, 0, len(models))
	for _, m := range models {
		recs, err := r.List(ctx, m)
		if err != nil {
			return "", err
		}
		byID := make([]value.Pair, len(recs))
		for i, rec := range recs {
			byID[i] = value.O(rec.ID, value.String(rec.Digest))
		}
		pairs = append(pairs, value.O(m, value.NewObject(byID...)))
	}
	return value.Digest(value.DomainSnapshot, value.NewObject(pairs...))
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec  Record
		text string
	)
	if err := rows.Scan(&rec.Model, &rec.ID, &text, &rec.Digest, &rec.Seq); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	data, err := unmarshalData(text)
	if err != nil {
		return Record{}, err
	}
	rec.Data = data
	return rec, nil
}
