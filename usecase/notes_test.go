package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"main/dto"
	"main/model"
	"main/repository"
)

// fakeNotesRepo keeps notes in memory but honors the same contract as the
// SQL repository: every operation is owner-scoped and listing is ordered
// pinned-first, newest-first.
type fakeNotesRepo struct {
	notes map[string]*model.Note
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{notes: make(map[string]*model.Note)}
}

func (f *fakeNotesRepo) CreateNote(_ context.Context, note *model.Note) error {
	stored := *note
	f.notes[note.ID] = &stored
	return nil
}

func (f *fakeNotesRepo) GetNote(_ context.Context, noteID, userID string) (*model.Note, error) {
	note, ok := f.notes[noteID]
	if !ok || note.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNotesRepo) GetUserNotes(_ context.Context, userID string) ([]*model.Note, error) {
	var notes []*model.Note
	for _, note := range f.notes {
		if note.UserID == userID {
			copied := *note
			notes = append(notes, &copied)
		}
	}
	sortNotes(notes)
	return notes, nil
}

func (f *fakeNotesRepo) UpdateNote(_ context.Context, note *model.Note) (*model.Note, error) {
	existing, ok := f.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return nil, repository.ErrNoteNotFound
	}
	stored := *note
	f.notes[note.ID] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeNotesRepo) TogglePin(_ context.Context, noteID, userID string) (*model.Note, error) {
	note, ok := f.notes[noteID]
	if !ok || note.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	note.Pinned = !note.Pinned
	note.UpdatedAt = time.Now()
	copied := *note
	return &copied, nil
}

func (f *fakeNotesRepo) DeleteNote(_ context.Context, noteID, userID string) (*model.Note, error) {
	note, ok := f.notes[noteID]
	if !ok || note.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	delete(f.notes, noteID)
	return note, nil
}

func (f *fakeNotesRepo) SearchNotes(_ context.Context, userID, term string) ([]*model.Note, error) {
	lowered := strings.ToLower(term)
	var notes []*model.Note
	for _, note := range f.notes {
		if note.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(note.Title), lowered) ||
			strings.Contains(strings.ToLower(note.Content), lowered) {
			copied := *note
			notes = append(notes, &copied)
		}
	}
	sortNotes(notes)
	return notes, nil
}

func (f *fakeNotesRepo) GetNotesByCategory(_ context.Context, userID, category string) ([]*model.Note, error) {
	var notes []*model.Note
	for _, note := range f.notes {
		if note.UserID == userID && note.Category == category {
			copied := *note
			notes = append(notes, &copied)
		}
	}
	sortNotes(notes)
	return notes, nil
}

func sortNotes(notes []*model.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Pinned != notes[j].Pinned {
			return notes[i].Pinned
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

func newTestService() (*NotesService, *fakeNotesRepo) {
	repo := newFakeNotesRepo()
	return &NotesService{NotesRepo: repo}, repo
}

func mustCreate(t *testing.T, svc *NotesService, userID, title, content string) *model.Note {
	t.Helper()
	note, err := svc.CreateNote(context.Background(), userID, &dto.CreateNoteRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	return note
}

func TestCreateNote_DefaultsAndTrimming(t *testing.T) {
	svc, _ := newTestService()

	note, err := svc.CreateNote(context.Background(), "user-1", &dto.CreateNoteRequest{
		Title:   "  Groceries  ",
		Content: "  milk, eggs  ",
		Tags:    []string{" errands ", "", "  "},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if note.ID == "" {
		t.Error("expected generated id")
	}
	if note.Title != "Groceries" || note.Content != "milk, eggs" {
		t.Errorf("expected trimmed fields, got %q / %q", note.Title, note.Content)
	}
	if note.Category != "General" {
		t.Errorf("expected default category, got %q", note.Category)
	}
	if len(note.Tags) != 1 || note.Tags[0] != "errands" {
		t.Errorf("expected normalized tags, got %v", note.Tags)
	}
	if note.Pinned {
		t.Error("new notes must start unpinned")
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}

	stored, err := svc.GetNote(context.Background(), note.ID, "user-1")
	if err != nil {
		t.Fatalf("GetNote after create failed: %v", err)
	}
	if stored.Title != note.Title || stored.Content != note.Content {
		t.Error("stored note does not match created note")
	}
}

func TestCreateNote_AssignsDistinctIDs(t *testing.T) {
	svc, _ := newTestService()

	first := mustCreate(t, svc, "user-1", "One", "a")
	second := mustCreate(t, svc, "user-1", "Two", "b")
	if first.ID == second.ID {
		t.Error("note ids must be unique")
	}
}

func TestCreateNote_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name    string
		title   string
		content string
	}{
		{"missing title", "", "content"},
		{"missing content", "title", ""},
		{"whitespace title", "   ", "content"},
		{"whitespace content", "title", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateNote(context.Background(), "user-1", &dto.CreateNoteRequest{
				Title:   tt.title,
				Content: tt.content,
			})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateNote_FullReplaceValidation(t *testing.T) {
	svc, _ := newTestService()
	note := mustCreate(t, svc, "user-1", "Original", "original content")

	_, err := svc.UpdateNote(context.Background(), note.ID, "user-1", &dto.UpdateNoteRequest{
		Title: "Only title",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The stored note must be untouched by the rejected update.
	stored, err := svc.GetNote(context.Background(), note.ID, "user-1")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if stored.Title != "Original" || stored.Content != "original content" {
		t.Error("rejected update must leave the note unchanged")
	}
}

func TestUpdateNote_OptionalFieldsAppliedOnlyWhenPresent(t *testing.T) {
	svc, _ := newTestService()
	note, err := svc.CreateNote(context.Background(), "user-1", &dto.CreateNoteRequest{
		Title:    "Original",
		Content:  "content",
		Category: "Work",
		Tags:     []string{"a"},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	updated, err := svc.UpdateNote(context.Background(), note.ID, "user-1", &dto.UpdateNoteRequest{
		Title:   "Renamed",
		Content: "new content",
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Category != "Work" {
		t.Errorf("absent category must be preserved, got %q", updated.Category)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "a" {
		t.Errorf("absent tags must be preserved, got %v", updated.Tags)
	}

	pinned := true
	newCategory := "Personal"
	updated, err = svc.UpdateNote(context.Background(), note.ID, "user-1", &dto.UpdateNoteRequest{
		Title:    "Renamed",
		Content:  "new content",
		Category: &newCategory,
		Pinned:   &pinned,
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if updated.Category != "Personal" || !updated.Pinned {
		t.Error("present optional fields must be applied")
	}
	if !updated.UpdatedAt.After(note.UpdatedAt) && !updated.UpdatedAt.Equal(note.UpdatedAt) {
		t.Error("updated_at must be re-stamped")
	}
}

func TestUpdateNote_NotFoundBeforeMutation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateNote(context.Background(), "missing", "user-1", &dto.UpdateNoteRequest{
		Title:   "t",
		Content: "c",
	})
	if !errors.Is(err, repository.ErrNoteNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTogglePin_Involution(t *testing.T) {
	svc, _ := newTestService()
	note := mustCreate(t, svc, "user-1", "Note", "content")

	once, err := svc.TogglePin(context.Background(), note.ID, "user-1")
	if err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if !once.Pinned {
		t.Fatal("first toggle should pin")
	}

	twice, err := svc.TogglePin(context.Background(), note.ID, "user-1")
	if err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if twice.Pinned != note.Pinned {
		t.Fatal("two toggles must return the note to its original pin state")
	}
}

func TestListOrdering_PinnedFirstThenNewest(t *testing.T) {
	svc, repo := newTestService()

	base := time.Now()
	for i, id := range []string{"n1", "n2", "n3"} {
		repo.notes[id] = &model.Note{
			ID:        id,
			UserID:    "user-1",
			Title:     id,
			Content:   "c",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	if _, err := svc.TogglePin(context.Background(), "n2", "user-1"); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}

	notes, err := svc.GetUserNotes(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetUserNotes failed: %v", err)
	}

	var got []string
	for _, n := range notes {
		got = append(got, n.ID)
	}
	want := []string{"n2", "n3", "n1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "owner-a", &dto.CreateNoteRequest{
		Title:   "Secret",
		Content: "xyzABCdef",
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if _, err := svc.GetNote(ctx, note.ID, "owner-b"); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("get: expected not found for other owner, got %v", err)
	}
	if _, err := svc.UpdateNote(ctx, note.ID, "owner-b", &dto.UpdateNoteRequest{Title: "t", Content: "c"}); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("update: expected not found for other owner, got %v", err)
	}
	if _, err := svc.DeleteNote(ctx, note.ID, "owner-b"); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("delete: expected not found for other owner, got %v", err)
	}
	if _, err := svc.TogglePin(ctx, note.ID, "owner-b"); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Errorf("toggle: expected not found for other owner, got %v", err)
	}

	listed, err := svc.GetUserNotes(ctx, "owner-b")
	if err != nil {
		t.Fatalf("GetUserNotes failed: %v", err)
	}
	if len(listed) != 0 {
		t.Error("list: other owner must not see the note")
	}

	found, err := svc.SearchNotes(ctx, "owner-b", "abc")
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(found) != 0 {
		t.Error("search: other owner must not see the note")
	}

	// The owner still sees everything, including via case-insensitive search.
	found, err = svc.SearchNotes(ctx, "owner-a", "abc")
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(found) != 1 {
		t.Error("search: owner must match case-insensitive substring")
	}
}

func TestDeleteNote_ReturnsRecordAndFailsSecondTime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	note := mustCreate(t, svc, "user-1", "Doomed", "content")

	deleted, err := svc.DeleteNote(ctx, note.ID, "user-1")
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if deleted.ID != note.ID {
		t.Error("delete must return the removed record")
	}

	if _, err := svc.DeleteNote(ctx, note.ID, "user-1"); !errors.Is(err, repository.ErrNoteNotFound) {
		t.Fatalf("second delete must report not found, got %v", err)
	}
}

func TestSearchNotes_EmptyTermReturnsNothing(t *testing.T) {
	svc, _ := newTestService()
	mustCreate(t, svc, "user-1", "Note", "content")

	notes, err := svc.SearchNotes(context.Background(), "user-1", "   ")
	if err != nil {
		t.Fatalf("SearchNotes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Error("blank search term should match nothing")
	}
}

func TestGetNotesByCategory_ExactMatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "user-1", &dto.CreateNoteRequest{
		Title: "A", Content: "c", Category: "Work",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "user-1", &dto.CreateNoteRequest{
		Title: "B", Content: "c", Category: "Workout",
	}); err != nil {
		t.Fatal(err)
	}

	notes, err := svc.GetNotesByCategory(ctx, "user-1", "Work")
	if err != nil {
		t.Fatalf("GetNotesByCategory failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "A" {
		t.Errorf("expected exact category match only, got %d notes", len(notes))
	}
}
