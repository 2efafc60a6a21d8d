package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/video-rental/internal/model"
)

// MovieSearchQuery defines filters, ordering and pagination for
// searching movies.
type MovieSearchQuery struct {
	Title    string
	GenreID  uint64
	Sort     string
	Order    string
	Page     int
	PageSize int
}

// sortable maps the public sort keys onto columns.
var sortable = map[string]string{
	"title":           "title",
	"dailyRentalRate": "daily_rental_rate",
	"numberInStock":   "number_in_stock",
}

// searchClauses returns the WHERE condition with its arguments and the
// ORDER BY clause for q.  Unknown sort keys fall back to title.
func searchClauses(q MovieSearchQuery) (cond string, args []any, orderBy string) {
	var where []string
	if q.Title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, escapeLike(strings.ToLower(q.Title))+"%")
	}
	if q.GenreID != 0 {
		where = append(where, "genre_id = ?")
		args = append(args, q.GenreID)
	}
	cond = "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	col, ok := sortable[q.Sort]
	if !ok {
		col = "title"
	}
	dir := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		dir = "DESC"
	}
	return cond, args, col + " " + dir + ", id ASC"
}

// Search returns one page of movies matching q and the total number of
// matches.  Title is a case-insensitive prefix match.
func (r *MovieRepo) Search(ctx context.Context, q MovieSearchQuery) ([]model.Movie, int64, error) {
	cond, args, orderBy := searchClauses(q)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := "SELECT " + movieColumns + " FROM movies WHERE " + cond +
		" ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
