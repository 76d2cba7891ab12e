package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Snapshot struct {
	Slot       string
	Payload    []byte
	OrderCount int64
	SavedAt    int64
}

const getSnapshot = `-- name: GetSnapshot :one
select slot, payload, order_count, saved_at from snapshot where slot = ?
`

func (q *Queries) GetSnapshot(ctx context.Context, slot string) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, getSnapshot, slot)
	var i Snapshot
	err := row.Scan(
		&i.Slot,
		&i.Payload,
		&i.OrderCount,
		&i.SavedAt,
	)
	return i, err
}

const upsertSnapshot = `-- name: UpsertSnapshot :exec
insert into snapshot(slot, payload, order_count, saved_at) values (?, ?, ?, ?)
on conflict(slot) do update set
    payload = excluded.payload,
    order_count = excluded.order_count,
    saved_at = excluded.saved_at
`

type UpsertSnapshotParams struct {
	Slot       string
	Payload    []byte
	OrderCount int64
	SavedAt    int64
}

func (q *Queries) UpsertSnapshot(ctx context.Context, arg UpsertSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, upsertSnapshot,
		arg.Slot,
		arg.Payload,
		arg.OrderCount,
		arg.SavedAt,
	)
	return err
}

const deleteSnapshot = `-- name: DeleteSnapshot :execrows
delete from snapshot where slot = ?
`

func (q *Queries) DeleteSnapshot(ctx context.Context, slot string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteSnapshot, slot)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listSnapshots = `-- name: ListSnapshots :many
select slot, order_count, saved_at from snapshot order by slot
`

type ListSnapshotsRow struct {
	Slot       string
	OrderCount int64
	SavedAt    int64
}

func (q *Queries) ListSnapshots(ctx context.Context) ([]ListSnapshotsRow, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListSnapshotsRow
	for rows.Next() {
		var i ListSnapshotsRow
		if err := rows.Scan(&i.Slot, &i.OrderCount, &i.SavedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
