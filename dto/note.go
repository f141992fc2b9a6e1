package dto

type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// UpdateNoteRequest carries full-replace semantics for title/content;
// the pointer fields are applied only when present in the request body.
type UpdateNoteRequest struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Pinned   *bool     `json:"pinned"`
}
