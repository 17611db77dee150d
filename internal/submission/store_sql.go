package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("submission not found")

type Summary struct {
	ID        int64  `json:"id"`
	UserEmail string `json:"user_email"`
	QuizName  string `json:"quiz_name"`
	Score     int    `json:"score"`
	Pass      bool   `json:"pass"`
	CreatedAt int64  `json:"created_at"`
}

type ListOpts struct {
	UserEmail string
	QuizName  string
	Limit     int
	Offset    int
}

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Save(ctx context.Context, id int64, r Record) error {
	mj, err := json.Marshal(r.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions
		(id,user_email,quiz_name,n_total,n_correct,n_wrong,score,pass,passing_score,missed_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		id, r.UserEmail, r.QuizName, r.NTotal, r.NCorrect, r.NWrong, r.Score, r.Pass, r.PassingScore,
		string(mj), time.Now().Unix())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_email,quiz_name,n_total,n_correct,n_wrong,score,pass,passing_score,missed_json
		FROM submissions WHERE id=$1`, id)
	var r Record
	var mj string
	if err := row.Scan(&r.UserEmail, &r.QuizName, &r.NTotal, &r.NCorrect, &r.NWrong, &r.Score, &r.Pass, &r.PassingScore, &mj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(mj), &r.Questions); err != nil {
		return Record{}, err
	}
	return r, nil
}

// List returns submissions newest first.
func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_email,quiz_name,score,pass,created_at FROM submissions
		WHERE ($1 = '' OR user_email = $1) AND ($2 = '' OR quiz_name = $2)
		ORDER BY id DESC LIMIT $3 OFFSET $4`,
		opts.UserEmail, opts.QuizName, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.UserEmail, &sm.QuizName, &sm.Score, &sm.Pass, &sm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}
