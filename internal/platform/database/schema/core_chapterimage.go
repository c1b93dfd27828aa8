package schema

// CoreChapterImageTable represents the 'core.chapterimage' table
type CoreChapterImageTable struct {
	Table     string
	ID        string
	ChapterID string
	Position  string
	Path      string
	CreatedAt string
	UpdatedAt string
}

// CoreChapterImage is the schema definition for core.chapterimage
var CoreChapterImage = CoreChapterImageTable{
	Table:     "core.chapterimage",
	ID:        "id",
	ChapterID: "chapterid",
	Position:  "position",
	Path:      "path",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreChapterImageTable) Columns() []string {
	return []string{t.ID, t.ChapterID, t.Position, t.Path, t.CreatedAt, t.UpdatedAt}
}
