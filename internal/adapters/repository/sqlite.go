package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/challwatch/challwatch/internal/domain/model"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store on a single SQLite database file.
// WAL mode keeps reads concurrent with the single writer connection.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at path and applies the schema.
// Safe to call on an existing database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY on the solve-recording transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) UpsertChallenge(ctx context.Context, ch model.Challenge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, title, category, difficulty, score)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			difficulty = excluded.difficulty`,
		ch.ID, ch.Title, ch.Category, ch.Difficulty, ch.Score)
	if err != nil {
		return fmt.Errorf("upsert challenge %d: %w", ch.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Challenge(ctx context.Context, id int) (model.Challenge, error) {
	var ch model.Challenge
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, category, difficulty, score FROM challenges WHERE id = ?`, id).
		Scan(&ch.ID, &ch.Title, &ch.Category, &ch.Difficulty, &ch.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Challenge{}, ErrNotFound
	}
	if err != nil {
		return model.Challenge{}, fmt.Errorf("get challenge %d: %w", id, err)
	}

	solves, err := s.SolvesByChallenge(ctx, id)
	if err != nil {
		return model.Challenge{}, err
	}
	ch.Solves = solves
	return ch, nil
}

func (s *SQLiteStore) SearchChallenges(ctx context.Context, title string) ([]model.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, difficulty, score FROM challenges
		WHERE title LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY id`, title)
	if err != nil {
		return nil, fmt.Errorf("search challenges %q: %w", title, err)
	}
	defer rows.Close()

	var out []model.Challenge
	for rows.Next() {
		var ch model.Challenge
		if err := rows.Scan(&ch.ID, &ch.Title, &ch.Category, &ch.Difficulty, &ch.Score); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountChallenges(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM challenges`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count challenges: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) UpsertAuteur(ctx context.Context, aut model.Auteur) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auteurs (id, username, score)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			score = MAX(auteurs.score, excluded.score)`,
		aut.ID, aut.Username, aut.Score)
	if err != nil {
		return fmt.Errorf("upsert auteur %d: %w", aut.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Auteur(ctx context.Context, id int) (model.Auteur, error) {
	var aut model.Auteur
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, score FROM auteurs WHERE id = ?`, id).
		Scan(&aut.ID, &aut.Username, &aut.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auteur{}, ErrNotFound
	}
	if err != nil {
		return model.Auteur{}, fmt.Errorf("get auteur %d: %w", id, err)
	}
	return aut, nil
}

func (s *SQLiteStore) SearchAuteurs(ctx context.Context, username string) ([]model.Auteur, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, score FROM auteurs
		WHERE username LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY id`, username)
	if err != nil {
		return nil, fmt.Errorf("search auteurs %q: %w", username, err)
	}
	defer rows.Close()
	return scanAuteurs(rows)
}

func (s *SQLiteStore) DeleteAuteur(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auteurs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete auteur %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete auteur %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AuteursByScoreDesc(ctx context.Context) ([]model.Auteur, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, score FROM auteurs ORDER BY score DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list auteurs by score: %w", err)
	}
	defer rows.Close()
	return scanAuteurs(rows)
}

func scanAuteurs(rows *sql.Rows) ([]model.Auteur, error) {
	var out []model.Auteur
	for rows.Next() {
		var aut model.Auteur
		if err := rows.Scan(&aut.ID, &aut.Username, &aut.Score); err != nil {
			return nil, fmt.Errorf("scan auteur: %w", err)
		}
		out = append(out, aut)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordSolve(ctx context.Context, solve model.Solve, scoreDelta int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin solve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO solves (auteur_id, challenge_id, validated_at) VALUES (?, ?, ?)`,
		solve.AuteurID, solve.ChallengeID, solve.ValidatedAt.UTC())
	if isConstraintErr(err) {
		return ErrDuplicateSolve
	}
	if err != nil {
		return fmt.Errorf("insert solve %s: %w", solve.Key(), err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE auteurs SET score = score + ? WHERE id = ?`,
		scoreDelta, solve.AuteurID); err != nil {
		return fmt.Errorf("bump score for auteur %d: %w", solve.AuteurID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit solve %s: %w", solve.Key(), err)
	}
	return nil
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func (s *SQLiteStore) HasSolve(ctx context.Context, auteurID, challengeID int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM solves WHERE auteur_id = ? AND challenge_id = ?`,
		auteurID, challengeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check solve %s: %w", model.SolveKey(auteurID, challengeID), err)
	}
	return true, nil
}

func (s *SQLiteStore) SolvesByChallenge(ctx context.Context, challengeID int) ([]model.Solve, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT auteur_id, challenge_id, validated_at FROM solves
		WHERE challenge_id = ? ORDER BY validated_at, auteur_id`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list solves for challenge %d: %w", challengeID, err)
	}
	defer rows.Close()
	return scanSolves(rows)
}

func (s *SQLiteStore) SolvesByAuteur(ctx context.Context, auteurID int) ([]model.Solve, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT auteur_id, challenge_id, validated_at FROM solves
		WHERE auteur_id = ? ORDER BY validated_at, challenge_id`, auteurID)
	if err != nil {
		return nil, fmt.Errorf("list solves for auteur %d: %w", auteurID, err)
	}
	defer rows.Close()
	return scanSolves(rows)
}

func scanSolves(rows *sql.Rows) ([]model.Solve, error) {
	var out []model.Solve
	for rows.Next() {
		var sv model.Solve
		var ts time.Time
		if err := rows.Scan(&sv.AuteurID, &sv.ChallengeID, &ts); err != nil {
			return nil, fmt.Errorf("scan solve: %w", err)
		}
		sv.ValidatedAt = ts
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateScoreboard(ctx context.Context, sb model.Scoreboard) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scoreboards (id, name) VALUES (?, ?)`, sb.ID, sb.Name)
	if err != nil {
		return fmt.Errorf("create scoreboard %q: %w", sb.Name, err)
	}
	for _, auteurID := range sb.AuteurIDs {
		if err := s.AddScoreboardMember(ctx, sb.Name, auteurID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Scoreboard(ctx context.Context, name string) (model.Scoreboard, error) {
	var sb model.Scoreboard
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM scoreboards WHERE name = ?`, name).
		Scan(&sb.ID, &sb.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scoreboard{}, ErrNotFound
	}
	if err != nil {
		return model.Scoreboard{}, fmt.Errorf("get scoreboard %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT auteur_id FROM scoreboard_members WHERE scoreboard_id = ? ORDER BY auteur_id`, sb.ID)
	if err != nil {
		return model.Scoreboard{}, fmt.Errorf("list scoreboard members %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var auteurID int
		if err := rows.Scan(&auteurID); err != nil {
			return model.Scoreboard{}, fmt.Errorf("scan scoreboard member: %w", err)
		}
		sb.AuteurIDs = append(sb.AuteurIDs, auteurID)
	}
	return sb, rows.Err()
}

func (s *SQLiteStore) AddScoreboardMember(ctx context.Context, name string, auteurID int) error {
	sb, err := s.Scoreboard(ctx, name)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scoreboard_members (scoreboard_id, auteur_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING`, sb.ID, auteurID)
	if err != nil {
		return fmt.Errorf("add member %d to scoreboard %q: %w", auteurID, name, err)
	}
	return nil
}
