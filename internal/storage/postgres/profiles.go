package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mealshare/mealshare-be/internal/storage"
)

// GetByUserID returns the profile row as a column-name keyed map. The
// map's key set reflects whatever columns the live table currently has,
// which is what the reconciliation service uses as its write allowlist.
func (s *Store) GetByUserID(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	rows, err := s.pool.Query(ctx, `SELECT * FROM profiles WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return row, nil
}

// Upsert issues a single INSERT ... ON CONFLICT (user_id) DO UPDATE
// built from the payload's keys. Payload keys are always drawn from the
// table's own column set, never raw caller input, and are still passed
// through pgx.Identifier before being interpolated. user_id and
// created_at are only ever written on the insert branch.
func (s *Store) Upsert(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if _, ok := payload["user_id"]; !ok {
		return nil, errors.New("upsert payload missing user_id")
	}

	cols := make([]string, 0, len(payload))
	for col := range payload {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	quoted := make([]string, 0, len(cols))
	placeholders := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	updates := make([]string, 0, len(cols))
	for i, col := range cols {
		ident := pgx.Identifier{col}.Sanitize()
		quoted = append(quoted, ident)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, payload[col])
		if col != "user_id" && col != "created_at" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", ident, ident))
		}
	}

	query := fmt.Sprintf(
		`INSERT INTO profiles (%s) VALUES (%s) ON CONFLICT (user_id) DO UPDATE SET %s RETURNING *;`,
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan upserted profile: %w", err)
	}
	return row, nil
}
