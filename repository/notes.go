package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"main/model"
	"main/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// ErrNoteNotFound is returned when no row matches a note lookup. A note
// owned by someone else reports the same error as a missing one.
var ErrNoteNotFound = errors.New("note not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var noteColumns = []string{
	"id", "user_id", "title", "content", "category", "tags",
	"pinned", "created_at", "updated_at",
}

type NotesRepo struct {
	DB *sqlx.DB
}

func GetNotesRepo(db *sqlx.DB) *NotesRepo {
	return &NotesRepo{DB: db}
}

// CreateNote inserts a new note row. All fields are stamped by the caller.
func (r *NotesRepo) CreateNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("insert", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Insert("notes").
		Columns(noteColumns...).
		Values(note.ID, note.UserID, note.Title, note.Content, note.Category,
			note.Tags, note.Pinned, note.CreatedAt, note.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		utils.TrackError("database", "note_insert_failed")
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetNote fetches a single note, unconditionally scoped to its owner.
func (r *NotesRepo) GetNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"id": noteID, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var note model.Note
	if err := r.DB.GetContext(ctx, &note, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		utils.TrackError("database", "note_fetch_failed")
		return nil, fmt.Errorf("failed to fetch note: %w", err)
	}
	return &note, nil
}

// GetUserNotes retrieves all notes for a user, pinned first, newest first.
func (r *NotesRepo) GetUserNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("pinned DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	notes := []*model.Note{}
	if err := r.DB.SelectContext(ctx, &notes, query, args...); err != nil {
		utils.TrackError("database", "notes_fetch_failed")
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	return notes, nil
}

// UpdateNote replaces the mutable fields of an owned note and returns the
// stored row.
func (r *NotesRepo) UpdateNote(ctx context.Context, note *model.Note) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Update("notes").
		Set("title", note.Title).
		Set("content", note.Content).
		Set("category", note.Category).
		Set("tags", note.Tags).
		Set("pinned", note.Pinned).
		Set("updated_at", note.UpdatedAt).
		Where(sq.Eq{"id": note.ID, "user_id": note.UserID}).
		Suffix("RETURNING " + strings.Join(noteColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var updated model.Note
	if err := r.DB.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		utils.TrackError("database", "note_update_failed")
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return &updated, nil
}

// TogglePin flips the pinned flag in a single atomic update so concurrent
// toggles of the same note cannot interleave a stale read.
func (r *NotesRepo) TogglePin(ctx context.Context, noteID, userID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Update("notes").
		Set("pinned", sq.Expr("NOT pinned")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": noteID, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(noteColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var note model.Note
	if err := r.DB.GetContext(ctx, &note, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		utils.TrackError("database", "note_pin_failed")
		return nil, fmt.Errorf("failed to toggle pin: %w", err)
	}
	return &note, nil
}

// DeleteNote removes an owned note and returns the deleted row.
func (r *NotesRepo) DeleteNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("delete", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Delete("notes").
		Where(sq.Eq{"id": noteID, "user_id": userID}).
		Suffix("RETURNING " + strings.Join(noteColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var note model.Note
	if err := r.DB.GetContext(ctx, &note, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		utils.TrackError("database", "note_delete_failed")
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}
	return &note, nil
}

// SearchNotes matches the term as a case-insensitive substring of title or
// content, scoped to the owner, same ordering as GetUserNotes.
func (r *NotesRepo) SearchNotes(ctx context.Context, userID, term string) ([]*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	pattern := "%" + escapeLike(term) + "%"
	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"user_id": userID}).
		Where("(title ILIKE ? OR content ILIKE ?)", pattern, pattern).
		OrderBy("pinned DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	notes := []*model.Note{}
	if err := r.DB.SelectContext(ctx, &notes, query, args...); err != nil {
		utils.TrackError("database", "notes_search_failed")
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	return notes, nil
}

// GetNotesByCategory retrieves a user's notes with an exact category match.
func (r *NotesRepo) GetNotesByCategory(ctx context.Context, userID, category string) ([]*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	query, args, err := psql.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"user_id": userID, "category": category}).
		OrderBy("pinned DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	notes := []*model.Note{}
	if err := r.DB.SelectContext(ctx, &notes, query, args...); err != nil {
		utils.TrackError("database", "notes_fetch_failed")
		return nil, fmt.Errorf("failed to fetch notes by category: %w", err)
	}
	return notes, nil
}

// escapeLike neutralizes LIKE metacharacters so the search term is treated
// as a literal substring.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
