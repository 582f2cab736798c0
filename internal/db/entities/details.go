package entities

import "time"

// PostDetails shares its primary key with the owning post.
type PostDetails struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false"`
	Description string `gorm:"size:5000"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Post *Post `gorm:"-"`
}

func (PostDetails) TableName() string { return "post_details" }

// PostID is the id of the owning post, which is also the details' id.
func (d *PostDetails) PostID() int64 {
	if d.Post != nil && d.Post.ID != 0 {
		return d.Post.ID
	}
	return d.ID
}
