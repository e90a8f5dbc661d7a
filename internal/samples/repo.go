package samples

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

type VoiceSample struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Name            string    `json:"name"`
	AudioURL        string    `json:"audio_url"`
	DurationSeconds *int      `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

type NewSample struct {
	ProjectID       string
	Name            string
	AudioURL        string
	DurationSeconds *int
}

func (r *Repo) Insert(ctx context.Context, s NewSample) (*VoiceSample, error) {
	const q = `
insert into voice_samples (project_id, name, audio_url, duration_seconds)
values ($1::uuid, $2, $3, $4)
returning id::text, project_id::text, name, audio_url, duration_seconds, created_at;
`
	var out VoiceSample
	err := r.db.QueryRow(ctx, q, s.ProjectID, s.Name, s.AudioURL, s.DurationSeconds).
		Scan(&out.ID, &out.ProjectID, &out.Name, &out.AudioURL, &out.DurationSeconds, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]VoiceSample, error) {
	const q = `
select id::text, project_id::text, name, audio_url, duration_seconds, created_at
from voice_samples
where project_id = $1::uuid
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]VoiceSample, 0, 16)
	for rows.Next() {
		var s VoiceSample
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.AudioURL, &s.DurationSeconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
