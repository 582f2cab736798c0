package entities

import (
	"slices"
	"time"
)

// Post is the aggregate root of the blog model. Comments, details and tags
// hang off it; the helpers below keep both sides of each association in sync.
type Post struct {
	ID        int64          `gorm:"primaryKey"`
	Title     string         `gorm:"size:255;not null"`
	Details   *PostDetails   `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE"`
	Comments  []*PostComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Tags      []*Tag         `gorm:"many2many:post_tag;joinForeignKey:PostID;joinReferences:TagID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string { return "post" }

// Equal reports whether p and other denote the same post: the same pointer,
// or two persisted posts with the same id.
func (p *Post) Equal(other *Post) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return p.ID != 0 && p.ID == other.ID
}

// AddComment appends c and points it back at p. Duplicates are allowed.
func (p *Post) AddComment(c *PostComment) {
	if c == nil {
		return
	}
	p.Comments = append(p.Comments, c)
	c.attach(p)
}

// RemoveComment drops the first comment equal to c and clears its back-pointer.
// The back-pointer is cleared even when c was not in the list.
func (p *Post) RemoveComment(c *PostComment) {
	if c == nil {
		return
	}
	if i := slices.IndexFunc(p.Comments, c.Equal); i >= 0 {
		p.Comments = slices.Delete(p.Comments, i, i+1)
	}
	c.detach()
}

// AddTag links t to p on both sides; tags are a set keyed by name.
func (p *Post) AddTag(t *Tag) {
	if t == nil {
		return
	}
	if !slices.ContainsFunc(p.Tags, t.Equal) {
		p.Tags = append(p.Tags, t)
	}
	t.addPost(p)
}

func (p *Post) RemoveTag(t *Tag) {
	if t == nil {
		return
	}
	if i := slices.IndexFunc(p.Tags, t.Equal); i >= 0 {
		p.Tags = slices.Delete(p.Tags, i, i+1)
	}
	t.removePost(p)
}

// HasTag reports whether a tag with the same name is linked to p.
func (p *Post) HasTag(t *Tag) bool {
	return t != nil && slices.ContainsFunc(p.Tags, t.Equal)
}

// ReplaceTags unlinks every current tag and links tags in order.
func (p *Post) ReplaceTags(tags []*Tag) {
	for _, t := range slices.Clone(p.Tags) {
		p.RemoveTag(t)
	}
	for _, t := range tags {
		p.AddTag(t)
	}
}

// SetDetails replaces the one-to-one details. The previous details lose
// their back-pointer; nil removes the association.
func (p *Post) SetDetails(d *PostDetails) {
	if p.Details != nil && p.Details != d {
		p.Details.Post = nil
	}
	if d != nil {
		d.Post = p
		if p.ID != 0 {
			d.ID = p.ID
		}
	}
	p.Details = d
}

// SyncBackReferences restores the transient back-pointers after p has been
// loaded with its associations.
func (p *Post) SyncBackReferences() {
	for _, c := range p.Comments {
		c.attach(p)
	}
	if p.Details != nil {
		p.Details.Post = p
	}
	for _, t := range p.Tags {
		t.addPost(p)
	}
}

// TagNames lists the names of the linked tags in order.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}
