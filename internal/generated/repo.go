package generated

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

type GeneratedAudio struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	TextInput string    `json:"text_input"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

type NewAudio struct {
	ProjectID string
	TextInput string
	AudioURL  string
}

func (r *Repo) Insert(ctx context.Context, a NewAudio) (*GeneratedAudio, error) {
	const q = `
insert into generated_audio (project_id, text_input, audio_url)
values ($1::uuid, $2, $3)
returning id::text, project_id::text, text_input, audio_url, created_at;
`
	var out GeneratedAudio
	err := r.db.QueryRow(ctx, q, a.ProjectID, a.TextInput, a.AudioURL).
		Scan(&out.ID, &out.ProjectID, &out.TextInput, &out.AudioURL, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]GeneratedAudio, error) {
	const q = `
select id::text, project_id::text, text_input, audio_url, created_at
from generated_audio
where project_id = $1::uuid
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GeneratedAudio, 0, 16)
	for rows.Next() {
		var a GeneratedAudio
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TextInput, &a.AudioURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
