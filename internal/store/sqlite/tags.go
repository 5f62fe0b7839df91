package sqlite

import (
	"context"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, owner_id, name, created_at`

func scanTag(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)

	dest := append([]any{&t.ID, &t.OwnerID, &t.Name, &createdAt}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns every tag owned by userID, ordered by name, with the
// number of notes carrying each tag.
func (s *Store) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.owner_id, t.name, t.created_at, COUNT(nt.note_id)
		FROM tags t
		LEFT JOIN note_tags nt ON nt.tag_id = t.id
		WHERE t.owner_id = ?
		GROUP BY t.id
		ORDER BY t.name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		var count int
		t, err := scanTag(rows, &count)
		if err != nil {
			return nil, err
		}
		t.NoteCount = count
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTagByName retrieves a tag by its exact stored name.
func (s *Store) GetTagByName(ctx context.Context, userID, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? AND name = ?`, userID, name)
	t, err := scanTag(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// connectOrCreateTags links noteID to a tag for every name, creating tags
// the owner does not have yet. The (owner_id, name) unique key makes the
// insert a no-op for existing tags, so repeated calls never duplicate rows.
func connectOrCreateTags(ctx context.Context, q querier, noteID int64, ownerID string, names []string) error {
	createdAt := formatTime(now())

	for _, name := range names {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO tags (owner_id, name, created_at) VALUES (?, ?, ?)
			ON CONFLICT (owner_id, name) DO NOTHING`,
			ownerID, name, createdAt); err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		var tagID int64
		if err := q.QueryRowContext(ctx,
			`SELECT id FROM tags WHERE owner_id = ? AND name = ?`, ownerID, name).Scan(&tagID); err != nil {
			return fmt.Errorf("select tag %q: %w", name, err)
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)
			ON CONFLICT (note_id, tag_id) DO NOTHING`,
			noteID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

// noteTagBatch bounds the number of bound parameters per tag query.
const noteTagBatch = 500

// loadNoteTags returns the tags of each note, sorted by name.
func loadNoteTags(ctx context.Context, q querier, noteIDs []int64) (map[int64][]domain.Tag, error) {
	out := make(map[int64][]domain.Tag, len(noteIDs))

	for start := 0; start < len(noteIDs); start += noteTagBatch {
		batch := noteIDs[start:min(start+noteTagBatch, len(noteIDs))]
		if err := loadNoteTagBatch(ctx, q, batch, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadNoteTagBatch(ctx context.Context, q querier, noteIDs []int64, out map[int64][]domain.Tag) error {
	args := make([]any, len(noteIDs))
	for i, id := range noteIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
		SELECT nt.note_id, t.id, t.owner_id, t.name, t.created_at
		FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id IN (`+placeholders(len(noteIDs))+`)
		ORDER BY t.name ASC`, args...)
	if err != nil {
		return fmt.Errorf("query note tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID int64
		t, err := scanTagWithNote(rows, &noteID)
		if err != nil {
			return err
		}
		out[noteID] = append(out[noteID], *t)
	}
	return rows.Err()
}

func scanTagWithNote(rows interface{ Scan(dest ...any) error }, noteID *int64) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := rows.Scan(noteID, &t.ID, &t.OwnerID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}
