package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"main/dto"
	"main/model"
	"main/utils"

	"github.com/google/uuid"
)

// ErrValidation marks a rejected request body. Handlers map it to 400.
var ErrValidation = errors.New("validation failed")

const (
	defaultCategory  = "General"
	maxTitleLength   = 200
	maxContentLength = 50000
)

// NotesRepository is the ownership-scoped persistence contract under the
// service. Every method filters by the owner id.
type NotesRepository interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, noteID, userID string) (*model.Note, error)
	GetUserNotes(ctx context.Context, userID string) ([]*model.Note, error)
	UpdateNote(ctx context.Context, note *model.Note) (*model.Note, error)
	TogglePin(ctx context.Context, noteID, userID string) (*model.Note, error)
	DeleteNote(ctx context.Context, noteID, userID string) (*model.Note, error)
	SearchNotes(ctx context.Context, userID, term string) ([]*model.Note, error)
	GetNotesByCategory(ctx context.Context, userID, category string) ([]*model.Note, error)
}

// NotesService validates input, derives computed fields and keeps every
// operation scoped to the caller's identity. The owner id always comes
// from the authenticated session, never from request input.
type NotesService struct {
	NotesRepo NotesRepository
}

// GetUserNotes returns all of a user's notes, pinned first, then newest
// first. The ordering is part of the contract, not a storage accident.
func (svc *NotesService) GetUserNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	return svc.NotesRepo.GetUserNotes(ctx, userID)
}

func (svc *NotesService) GetNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	return svc.NotesRepo.GetNote(ctx, noteID, userID)
}

func (svc *NotesService) CreateNote(ctx context.Context, userID string, req *dto.CreateNoteRequest) (*model.Note, error) {
	title, content, err := normalizeTitleContent(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}

	now := time.Now()
	note := &model.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Category:  category,
		Tags:      normalizeTags(req.Tags),
		Pinned:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.NotesRepo.CreateNote(ctx, note); err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("create")
	return note, nil
}

// UpdateNote replaces title and content and applies the optional fields
// only when present. The ownership check happens before any mutation.
func (svc *NotesService) UpdateNote(ctx context.Context, noteID, userID string, req *dto.UpdateNoteRequest) (*model.Note, error) {
	title, content, err := normalizeTitleContent(req.Title, req.Content)
	if err != nil {
		return nil, err
	}

	existing, err := svc.NotesRepo.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}

	existing.Title = title
	existing.Content = content
	if req.Category != nil {
		existing.Category = *req.Category
	}
	if req.Tags != nil {
		existing.Tags = normalizeTags(*req.Tags)
	}
	if req.Pinned != nil {
		existing.Pinned = *req.Pinned
	}
	existing.UpdatedAt = time.Now()

	updated, err := svc.NotesRepo.UpdateNote(ctx, existing)
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("update")
	return updated, nil
}

// TogglePin flips the pin flag through a single atomic update in the
// repository, so two concurrent toggles always land on opposite states.
func (svc *NotesService) TogglePin(ctx context.Context, noteID, userID string) (*model.Note, error) {
	note, err := svc.NotesRepo.TogglePin(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	utils.TrackNoteOperation("toggle_pin")
	return note, nil
}

// DeleteNote removes an owned note and returns the deleted record.
func (svc *NotesService) DeleteNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	note, err := svc.NotesRepo.DeleteNote(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	utils.TrackNoteOperation("delete")
	return note, nil
}

// SearchNotes matches the term case-insensitively against title or
// content, same ordering as GetUserNotes.
func (svc *NotesService) SearchNotes(ctx context.Context, userID, term string) ([]*model.Note, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []*model.Note{}, nil
	}
	return svc.NotesRepo.SearchNotes(ctx, userID, term)
}

func (svc *NotesService) GetNotesByCategory(ctx context.Context, userID, category string) ([]*model.Note, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	return svc.NotesRepo.GetNotesByCategory(ctx, userID, category)
}

// normalizeTitleContent trims both required fields; whitespace-only input
// counts as absent, on create and on full-replace update alike.
func normalizeTitleContent(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	if len(title) > maxTitleLength {
		return "", "", fmt.Errorf("%w: title exceeds maximum length", ErrValidation)
	}
	if len(content) > maxContentLength {
		return "", "", fmt.Errorf("%w: content exceeds maximum length", ErrValidation)
	}
	return title, content, nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
