package schema

// CoreMangaGenreTable represents the 'core.mangagenre' join table
type CoreMangaGenreTable struct {
	Table   string
	MangaID string
	GenreID string
}

// CoreMangaGenre is the schema definition for core.mangagenre
var CoreMangaGenre = CoreMangaGenreTable{
	Table:   "core.mangagenre",
	MangaID: "mangaid",
	GenreID: "genreid",
}
