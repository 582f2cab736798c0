package api

import (
	"net/http"

	"github.com/sampleprojects/postandcomments/internal/blog"
)

const (
	msgCommentCreated    = "Comment created successfully"
	msgCommentRetrieved  = "Comment retrieved successfully"
	msgCommentsRetrieved = "Comments retrieved successfully"
	msgCommentUpdated    = "Comment updated successfully"
	msgCommentDeleted    = "Comment deleted successfully"
)

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req PostCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(true); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	comment, err := h.comments.Save(r.Context(), blog.CommentInput{PostID: *req.PostID, Review: req.text()})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusCreated, msgCommentCreated, toPostCommentDTO(comment)))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	comments, total, err := h.comments.FindAll(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgCommentsRetrieved, toPostCommentDTOs(comments))
	env.Meta = listMeta(q, total, len(comments))
	writeEnvelope(w, env)
}

func (h *Handler) ListCommentsByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	comments, err := h.comments.FindByPostID(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgCommentsRetrieved, toPostCommentDTOs(comments)))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	comment, err := h.comments.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgCommentRetrieved, toPostCommentDTO(comment)))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req PostCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(false); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	comment, err := h.comments.Update(r.Context(), id, req.text())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgCommentUpdated, toPostCommentDTO(comment)))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.comments.DeleteByID(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgCommentDeleted, nil))
}
