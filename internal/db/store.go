package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanakrit/slipbook/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Type     string // "income", "expense" or "" for both
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type ListResult struct {
	Entries []models.Entry `json:"entries"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

const entryCols = `id, user_id, type, amount, category, note, datetime, image_url, created_at, updated_at`

func scanEntry(scan func(dest ...interface{}) error) (models.Entry, error) {
	var e models.Entry
	err := scan(
		&e.ID, &e.UserID, &e.Type, &e.Amount, &e.Category, &e.Note,
		&e.Datetime, &e.ImageURL, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// buildEntryFilter constructs the WHERE clause shared by list, count and
// stats queries. userID is always the first argument.
func buildEntryFilter(userID string, params ListParams) (string, []interface{}) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}
	argIdx := 2

	if params.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, params.Type)
		argIdx++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, params.Category)
		argIdx++
	}
	if params.From != nil {
		where += fmt.Sprintf(" AND datetime >= $%d", argIdx)
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		where += fmt.Sprintf(" AND datetime < $%d", argIdx)
		args = append(args, *params.To)
		argIdx++
	}

	return where, args
}

func (s *Store) ListEntries(ctx context.Context, userID string, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildEntryFilter(userID, params)

	var total int
	countSQL := "SELECT COUNT(*) FROM entries " + where
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := fmt.Sprintf(
		"SELECT %s FROM entries %s ORDER BY datetime DESC, created_at DESC LIMIT $%d OFFSET $%d",
		entryCols, where, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if entries == nil {
		entries = []models.Entry{}
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}, nil
}

func (s *Store) GetEntry(ctx context.Context, userID, id string) (*models.Entry, error) {
	sql := fmt.Sprintf("SELECT %s FROM entries WHERE id = $1 AND user_id = $2", entryCols)
	row := s.pool.QueryRow(ctx, sql, id, userID)

	e, err := scanEntry(row.Scan)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry failed: %w", err)
	}

	return &e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO entries (user_id, type, amount, category, note, datetime, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, entryCols), e.UserID, e.Type, e.Amount, e.Category, e.Note, e.Datetime, e.ImageURL)

	created, err := scanEntry(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	return &created, nil
}

// UpdateParams carries the partial update; nil fields are left untouched.
type UpdateParams struct {
	Type     *string
	Amount   *float64
	Category *string
	Note     *string
	Datetime *time.Time
	ImageURL *string
}

func (s *Store) UpdateEntry(ctx context.Context, userID, id string, params UpdateParams) (*models.Entry, error) {
	var sets []string
	var args []interface{}
	argIdx := 1

	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if params.Type != nil {
		add("type", *params.Type)
	}
	if params.Amount != nil {
		add("amount", *params.Amount)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.Note != nil {
		add("note", *params.Note)
	}
	if params.Datetime != nil {
		add("datetime", *params.Datetime)
	}
	if params.ImageURL != nil {
		add("image_url", *params.ImageURL)
	}

	if len(sets) == 0 {
		return s.GetEntry(ctx, userID, id)
	}

	sets = append(sets, "updated_at = NOW()")

	sql := fmt.Sprintf(
		"UPDATE entries SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(sets, ", "), argIdx, argIdx+1, entryCols,
	)
	args = append(args, id, userID)

	e, err := scanEntry(s.pool.QueryRow(ctx, sql, args...).Scan)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}

	return &e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM entries WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryTotal is one slice of the per-category expense breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Stats summarizes a user's entries over an optional datetime range.
type Stats struct {
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

func (s *Store) GetStats(ctx context.Context, userID string, params ListParams) (*Stats, error) {
	// Type/category filters do not apply to totals; only the range does.
	params.Type = ""
	params.Category = ""
	where, args := buildEntryFilter(userID, params)

	stats := &Stats{}
	sumSQL := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0),
			COUNT(*)
		FROM entries %s
	`, where)
	if err := s.pool.QueryRow(ctx, sumSQL, args...).Scan(&stats.Income, &stats.Expense, &stats.Count); err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	stats.Balance = stats.Income - stats.Expense

	catSQL := fmt.Sprintf(`
		SELECT category, SUM(amount)
		FROM entries %s AND type = 'expense'
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`, where)
	rows, err := s.pool.Query(ctx, catSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("category breakdown failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	if stats.ByCategory == nil {
		stats.ByCategory = []CategoryTotal{}
	}

	return stats, nil
}
