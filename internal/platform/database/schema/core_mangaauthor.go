package schema

// CoreMangaAuthorTable represents the 'core.mangaauthor' join table
type CoreMangaAuthorTable struct {
	Table    string
	MangaID  string
	AuthorID string
}

// CoreMangaAuthor is the schema definition for core.mangaauthor
var CoreMangaAuthor = CoreMangaAuthorTable{
	Table:    "core.mangaauthor",
	MangaID:  "mangaid",
	AuthorID: "authorid",
}
