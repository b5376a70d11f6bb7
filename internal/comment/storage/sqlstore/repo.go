package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
)

type Repo struct {
	db    *sql.DB
	d     Dialect
	table string
}

func New(db *sql.DB, d Dialect) *Repo {
	return &Repo{db: db, d: d, table: "comments"}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *Repo) ListByAuthor(ctx context.Context, uid string) ([]model.Comment, error) {
	q := r.ranked(r.selectComments().Where(sq.Eq{"uid": uid}))
	return r.query(ctx, q)
}

func (r *Repo) ListTopByAuthors(ctx context.Context, uids []string, limit int) ([]model.Comment, error) {
	uids = dedupe(uids)
	if len(uids) == 0 || limit <= 0 {
		return []model.Comment{}, nil
	}
	q := r.ranked(r.selectComments().Where(sq.Eq{"uid": uids})).Limit(uint64(limit))
	return r.query(ctx, q)
}

func (r *Repo) FindByID(ctx context.Context, cid string) (model.Comment, bool, error) {
	query, args, err := r.selectComments().Where(sq.Eq{"cid": cid}).Limit(1).ToSql()
	if err != nil {
		return model.Comment{}, false, err
	}

	c, err := scanComment(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, false, nil
	}
	if err != nil {
		return model.Comment{}, false, err
	}
	return c, true, nil
}

func (r *Repo) selectComments() sq.SelectBuilder {
	return sq.Select("cid", "uid", "parent_id", "subreddit", "content", "ups", "downs", `"timestamp"`).
		From(r.table).
		PlaceholderFormat(r.d.Placeholder)
}

func (r *Repo) ranked(b sq.SelectBuilder) sq.SelectBuilder {
	return b.OrderBy("ups DESC", fmt.Sprintf(`"timestamp" COLLATE %s DESC`, r.d.Collation))
}

func (r *Repo) query(ctx context.Context, b sq.SelectBuilder) ([]model.Comment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(s rowScanner) (model.Comment, error) {
	var (
		c      model.Comment
		parent sql.NullString
	)
	if err := s.Scan(&c.CID, &c.UID, &parent, &c.Subreddit, &c.Content, &c.Ups, &c.Downs, &c.Timestamp); err != nil {
		return model.Comment{}, err
	}
	if parent.Valid {
		p := parent.String
		c.ParentID = &p
	}
	return c, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
