package entities

import "time"

type PostComment struct {
	ID        int64  `gorm:"primaryKey"`
	Review    string `gorm:"type:text"`
	PostID    *int64 `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Post is the in-memory owner; PostID is what gets persisted.
	Post *Post `gorm:"-"`
}

func (PostComment) TableName() string { return "post_comment" }

// Equal reports whether c and other are the same comment: the same pointer,
// or two persisted comments with the same id.
func (c *PostComment) Equal(other *PostComment) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.ID != 0 && c.ID == other.ID
}

func (c *PostComment) attach(p *Post) {
	c.Post = p
	if p != nil && p.ID != 0 {
		id := p.ID
		c.PostID = &id
	}
}

func (c *PostComment) detach() {
	c.Post = nil
	c.PostID = nil
}

// SyncPostID copies the owner's id into PostID once the owner is persisted.
func (c *PostComment) SyncPostID() {
	if c.Post != nil && c.Post.ID != 0 {
		id := c.Post.ID
		c.PostID = &id
	}
}
