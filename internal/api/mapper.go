package api

import "github.com/sampleprojects/postandcomments/internal/db/entities"

func toPostDTO(p *entities.Post) *PostDTO {
	dto := &PostDTO{
		ID:          p.ID,
		Title:       p.Title,
		PostDetails: toPostDetailsDTO(p.Details),
		Comments:    make([]*PostCommentDTO, 0, len(p.Comments)),
		Tags:        toTagDTOs(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, c := range p.Comments {
		dto.Comments = append(dto.Comments, toPostCommentDTO(c))
	}
	return dto
}

func toPostDTOs(posts []*entities.Post) []*PostDTO {
	out := make([]*PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	return out
}

func toPostCommentDTO(c *entities.PostComment) *PostCommentDTO {
	if c == nil {
		return nil
	}
	c.SyncPostID()
	return &PostCommentDTO{
		ID:        c.ID,
		Review:    c.Review,
		PostID:    c.PostID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toPostCommentDTOs(comments []*entities.PostComment) []*PostCommentDTO {
	out := make([]*PostCommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, toPostCommentDTO(c))
	}
	return out
}

func toPostDetailsDTO(d *entities.PostDetails) *PostDetailsDTO {
	if d == nil {
		return nil
	}
	return &PostDetailsDTO{
		ID:          d.ID,
		PostID:      d.PostID(),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toPostDetailsDTOs(details []*entities.PostDetails) []*PostDetailsDTO {
	out := make([]*PostDetailsDTO, 0, len(details))
	for _, d := range details {
		out = append(out, toPostDetailsDTO(d))
	}
	return out
}

func toTagDTO(t *entities.Tag) *TagDTO {
	return &TagDTO{ID: t.ID, Name: t.Name}
}

func toTagDTOs(tags []*entities.Tag) []*TagDTO {
	out := make([]*TagDTO, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagDTO(t))
	}
	return out
}
