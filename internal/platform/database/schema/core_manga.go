package schema

// CoreMangaTable represents the 'core.manga' table
type CoreMangaTable struct {
	Table         string
	ID            string
	Title         string
	AltTitles     string
	Slug          string
	Description   string
	Status        string
	CoverImage    string
	ViewCount     string
	AverageRating string
	CreatedAt     string
	UpdatedAt     string
	DeletedAt     string
}

// CoreManga is the schema definition for core.manga
var CoreManga = CoreMangaTable{
	Table:         "core.manga",
	ID:            "id",
	Title:         "title",
	AltTitles:     "alttitles",
	Slug:          "slug",
	Description:   "description",
	Status:        "status",
	CoverImage:    "coverimage",
	ViewCount:     "viewcount",
	AverageRating: "averagerating",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
	DeletedAt:     "deletedat",
}

func (t CoreMangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.AltTitles, t.Slug, t.Description, t.Status,
		t.CoverImage, t.ViewCount, t.AverageRating, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
