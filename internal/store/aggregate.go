package store

import (
	"context"
	"database/sql"
	"fmt"
)

const selectPostSQL = `
SELECT id, slug, title, html, feature_image, status, visibility,
       created_at, updated_at, published_at, url, excerpt
FROM posts
`

func scanPost(row interface{ Scan(...interface{}) error }) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.HTML, &p.FeatureImage, &p.Status,
		&p.Visibility, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt,
		&p.URL, &p.Excerpt,
	)
	return p, err
}

// Cross-reference joins order by the association rowid so the stored
// insertion order is what callers see.
func postAuthorsTx(tx *sql.Tx, postID string) ([]Author, error) {
	rows, err := tx.Query(`
	SELECT a.id, a.name, a.profile_image, a.slug
	FROM authors a
	JOIN post_author_cross_ref r ON r.author_id = a.id
	WHERE r.post_id = ?
	ORDER BY r.rowid`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.ProfileImage, &a.Slug); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func postTagsTx(tx *sql.Tx, postID string) ([]Tag, error) {
	rows, err := tx.Query(`
	SELECT t.id, t.name, t.slug
	FROM tags t
	JOIN post_tag_cross_ref r ON r.tag_id = t.id
	WHERE r.post_id = ?
	ORDER BY r.rowid`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetAggregate reads one post with its joined author and tag sets inside a
// single transaction. Returns (nil, nil) when the post does not exist.
func (s *Store) GetAggregate(ctx context.Context, postID string) (*Aggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPost(tx.QueryRow(selectPostSQL+`WHERE id = ?`, postID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	agg := &Aggregate{Post: p}
	if agg.Authors, err = postAuthorsTx(tx, postID); err != nil {
		return nil, fmt.Errorf("get post authors: %w", err)
	}
	if agg.Tags, err = postTagsTx(tx, postID); err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return agg, nil
}

// GetAggregatePage reads one window of joined posts, ordered stably by
// insertion. The whole window is observed at one consistent point in time.
func (s *Store) GetAggregatePage(ctx context.Context, offset, limit int) ([]Aggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(selectPostSQL+`ORDER BY rowid LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("page posts: %w", err)
	}

	var page []Aggregate
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan post: %w", err)
		}
		page = append(page, Aggregate{Post: p})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range page {
		id := page[i].Post.ID
		if page[i].Authors, err = postAuthorsTx(tx, id); err != nil {
			return nil, fmt.Errorf("page post authors: %w", err)
		}
		if page[i].Tags, err = postTagsTx(tx, id); err != nil {
			return nil, fmt.Errorf("page post tags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return page, nil
}

// ReplaceAggregate persists one reconciled post as a single atomic unit:
// scalar rewrite, parent upserts, then a clear-and-reinsert of the post's
// tag cross-reference set. Placeholder tag ids never survive this step
// because the tag links are rebuilt from the aggregate's tag rows.
func (s *Store) ReplaceAggregate(ctx context.Context, agg Aggregate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := upsertPostTx(tx, agg.Post); err != nil {
		return fmt.Errorf("upsert post: %w", translateErr(err))
	}
	for _, a := range agg.Authors {
		if _, err := tx.Exec(upsertAuthorSQL, a.ID, a.Name, a.ProfileImage, a.Slug); err != nil {
			return fmt.Errorf("upsert author %s: %w", a.ID, translateErr(err))
		}
	}
	for _, t := range agg.Tags {
		if _, err := tx.Exec(upsertTagSQL, t.ID, t.Name, t.Slug); err != nil {
			return fmt.Errorf("upsert tag %s: %w", t.ID, translateErr(err))
		}
	}

	if _, err := tx.Exec(`DELETE FROM post_tag_cross_ref WHERE post_id = ?`, agg.Post.ID); err != nil {
		return fmt.Errorf("clear tag refs: %w", err)
	}
	for _, t := range agg.Tags {
		if _, err := tx.Exec(
			`INSERT INTO post_tag_cross_ref (post_id, tag_id) VALUES (?, ?)`,
			agg.Post.ID, t.ID,
		); err != nil {
			return fmt.Errorf("link tag %s: %w", t.ID, translateErr(err))
		}
	}
	for _, a := range agg.Authors {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO post_author_cross_ref (post_id, author_id) VALUES (?, ?)`,
			agg.Post.ID, a.ID,
		); err != nil {
			return fmt.Errorf("link author %s: %w", a.ID, translateErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.changed()
	return nil
}

// OrphanRefCount counts cross-reference rows whose post no longer exists.
// Zero after any committed operation is an invariant of the store.
func (s *Store) OrphanRefCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
	SELECT
		(SELECT COUNT(*) FROM post_tag_cross_ref r
		 WHERE NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = r.post_id)) +
		(SELECT COUNT(*) FROM post_author_cross_ref r
		 WHERE NOT EXISTS (SELECT 1 FROM posts p WHERE p.id = r.post_id))
	`).Scan(&count)
	return count, err
}
