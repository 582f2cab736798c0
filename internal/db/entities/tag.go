package entities

import "slices"

// Tag is identified by its name, compared ignoring case.
type Tag struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex:idx_tag_name;uniqueIndex:idx_tag_name_lower,expression:LOWER(name)"`

	Posts []*Post `gorm:"-"`
}

func (Tag) TableName() string { return "tag" }

func (t *Tag) Equal(other *Tag) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.Name == other.Name
}

func (t *Tag) addPost(p *Post) {
	if !slices.ContainsFunc(t.Posts, p.Equal) {
		t.Posts = append(t.Posts, p)
	}
}

func (t *Tag) removePost(p *Post) {
	if i := slices.IndexFunc(t.Posts, p.Equal); i >= 0 {
		t.Posts = slices.Delete(t.Posts, i, i+1)
	}
}

// PostTag is a row of the post/tag join table.
type PostTag struct {
	PostID int64 `gorm:"primaryKey"`
	TagID  int64 `gorm:"primaryKey;index"`
}

func (PostTag) TableName() string { return "post_tag" }

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&Tag{},
		&Post{},
		&PostDetails{},
		&PostComment{},
		&PostTag{},
	}
}
