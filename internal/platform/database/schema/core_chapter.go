package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table      string
	ID         string
	MangaID    string
	UploaderID string
	Number     string
	Title      string
	Slug       string
	IsApproved string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:      "core.chapter",
	ID:         "id",
	MangaID:    "mangaid",
	UploaderID: "uploaderid",
	Number:     "number",
	Title:      "title",
	Slug:       "slug",
	IsApproved: "isapproved",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.MangaID, t.UploaderID, t.Number, t.Title, t.Slug,
		t.IsApproved, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
