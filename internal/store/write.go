package store

import (
	"context"
	"fmt"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/value"
)

// records implements the object.Connection queries over a Store or a Tx.
type records struct {
	q querier
}

// Save inserts or replaces a record.
//
// Uses ON CONFLICT(model, id) DO UPDATE guarded by the digest, so an
// unchanged record keeps its seq.
func (r records) Save(ctx context.Context, model, id string, data value.Object) error {
	text, digest, err := marshalData(data)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", model, id, err)
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO records (model, id, data, digest, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records))
		ON CONFLICT(model, id) DO UPDATE SET
			data = excluded.data,
			digest = excluded.digest,
			seq = excluded.seq
		WHERE records.digest != excluded.digest
	`, model, id, text, digest)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", model, id, err)
	}
	return nil
}

// Delete removes a record. A missing record wraps object.ErrNotFound.
func (r records) Delete(ctx context.Context, model, id string) error {
	result, err := r.q.ExecContext(ctx, `
		DELETE FROM records WHERE model = ? AND id = ?
	`, model, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", model, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: rows affected: %w", model, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", model, id, object.ErrNotFound)
	}
	return nil
}
