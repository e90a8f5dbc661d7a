// Package outbox tracks in-flight object-storage writes. The upload and
// generation handlers record an entry before writing the object and clear it
// after the metadata row is inserted; entries left behind mark orphaned
// objects for the sweeper.
package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Entry struct {
	ID        string
	Bucket    string
	ObjectKey string
	CreatedAt time.Time
}

func (r *Repo) Add(ctx context.Context, bucket, key string) (string, error) {
	const q = `
insert into storage_outbox (bucket, object_key)
values ($1, $2)
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, bucket, key).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repo) Clear(ctx context.Context, id string) error {
	const q = `delete from storage_outbox where id = $1::uuid;`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

// ListOlderThan returns entries whose storage write happened at least maxAge
// ago and whose metadata insert evidently never completed.
func (r *Repo) ListOlderThan(ctx context.Context, maxAge time.Duration) ([]Entry, error) {
	const q = `
select id::text, bucket, object_key, created_at
from storage_outbox
where created_at < $1
order by created_at;
`
	cutoff := time.Now().Add(-maxAge)
	rows, err := r.db.Query(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, 8)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Bucket, &e.ObjectKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
