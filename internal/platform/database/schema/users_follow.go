package schema

// UsersFollowTable represents the 'users.follow' table
type UsersFollowTable struct {
	Table     string
	UserID    string
	MangaID   string
	CreatedAt string
}

// UsersFollow is the schema definition for users.follow
var UsersFollow = UsersFollowTable{
	Table:     "users.follow",
	UserID:    "userid",
	MangaID:   "mangaid",
	CreatedAt: "createdat",
}
