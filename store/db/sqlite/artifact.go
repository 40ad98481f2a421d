package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/sixdegrees/store"
)

var artifactColumns = []string{
	"id", "title", "maker", "maker_id", "maker_culture", "date",
	"medium", "department", "classification", "image_url",
	"created_ts", "updated_ts",
}

func (d *DB) UpsertArtifact(ctx context.Context, upsert *store.Artifact) (*store.Artifact, error) {
	fields := []string{"id", "title", "maker", "maker_id", "maker_culture", "date", "medium", "department", "classification", "image_url"}
	args := []any{upsert.ID, upsert.Title, upsert.Maker, upsert.MakerID, upsert.MakerCulture, upsert.Date, upsert.Medium, upsert.Department, upsert.Classification, upsert.ImageURL}

	updates := make([]string, 0, len(fields)-1)
	for _, field := range fields[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", field, field))
	}
	updates = append(updates, "updated_ts = strftime('%s', 'now')")

	stmt := "INSERT INTO artifact (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(len(args)) + ")" +
		" ON CONFLICT(id) DO UPDATE SET " + strings.Join(updates, ", ") +
		" RETURNING created_ts, updated_ts"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&upsert.CreatedTs, &upsert.UpdatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert artifact %d", upsert.ID)
	}

	// Embeddings are derived at build time for SQLite.
	upsert.Embedding = nil
	return upsert, nil
}

func (d *DB) ListArtifacts(ctx context.Context, find *store.FindArtifact) ([]*store.Artifact, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(find.IDs) > 0 {
		holders := make([]string, 0, len(find.IDs))
		for _, id := range find.IDs {
			holders = append(holders, placeholder(len(args)+1))
			args = append(args, id)
		}
		where = append(where, "id IN ("+strings.Join(holders, ", ")+")")
	}
	if find.RequireTitle {
		where = append(where, "TRIM(title) <> ''")
	}
	if find.RequireMaker {
		where = append(where, "TRIM(maker) <> ''")
	}

	query := "SELECT " + strings.Join(artifactColumns, ", ") + " FROM artifact WHERE " + strings.Join(where, " AND ") + " ORDER BY id ASC"
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artifacts")
	}
	defer rows.Close()

	list := []*store.Artifact{}
	for rows.Next() {
		artifact := &store.Artifact{}
		if err := rows.Scan(
			&artifact.ID,
			&artifact.Title,
			&artifact.Maker,
			&artifact.MakerID,
			&artifact.MakerCulture,
			&artifact.Date,
			&artifact.Medium,
			&artifact.Department,
			&artifact.Classification,
			&artifact.ImageURL,
			&artifact.CreatedTs,
			&artifact.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan artifact")
		}
		list = append(list, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) DeleteArtifacts(ctx context.Context, delete *store.DeleteArtifact) (int64, error) {
	stmt, args := "DELETE FROM artifact", []any{}
	if delete.ID != nil {
		stmt, args = stmt+" WHERE id = "+placeholder(1), append(args, *delete.ID)
	}
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete artifacts")
	}
	return result.RowsAffected()
}

func (d *DB) CountArtifacts(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifact").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count artifacts")
	}
	return count, nil
}
