package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Repo) Create(ctx context.Context, userDBID, name, description string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	const q = `
insert into voice_projects (user_id, name, description)
values ($1::uuid, $2, nullif($3, ''))
returning id::text, name, description, created_at;
`
	var p Project
	err := r.db.QueryRow(ctx, q, userDBID, name, description).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, userDBID string) ([]Project, error) {
	const q = `
select id::text, name, description, created_at
from voice_projects
where user_id = $1::uuid
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, userDBID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userDBID, id string) (*Project, error) {
	const q = `
select id::text, name, description, created_at
from voice_projects
where user_id = $1::uuid and id = $2::uuid;
`
	var p Project
	err := r.db.QueryRow(ctx, q, userDBID, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
