package api

import (
	"net/http"

	"github.com/sampleprojects/postandcomments/internal/blog"
)

const (
	msgDetailsCreated   = "Post detail created successfully"
	msgDetailsRetrieved = "Post detail retrieved successfully"
	msgDetailsListed    = "Post details retrieved successfully"
	msgDetailsUpdated   = "Post detail updated successfully"
	msgDetailsDeleted   = "Post detail deleted successfully"
)

func (h *Handler) CreatePostDetails(w http.ResponseWriter, r *http.Request) {
	var req PostDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(true); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	details, err := h.details.Save(r.Context(), blog.DetailsInput{PostID: *req.PostID, Description: req.Description})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusCreated, msgDetailsCreated, toPostDetailsDTO(details)))
}

func (h *Handler) ListPostDetails(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	details, total, err := h.details.FindAll(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgDetailsListed, toPostDetailsDTOs(details))
	env.Meta = listMeta(q, total, len(details))
	writeEnvelope(w, env)
}

func (h *Handler) GetPostDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	details, err := h.details.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgDetailsRetrieved, toPostDetailsDTO(details)))
}

func (h *Handler) GetPostDetailsByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	details, err := h.details.FindByPostID(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgDetailsRetrieved, toPostDetailsDTO(details)))
}

func (h *Handler) UpdatePostDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req PostDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(false); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	details, err := h.details.Update(r.Context(), id, req.Description)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgDetailsUpdated, toPostDetailsDTO(details)))
}

func (h *Handler) DeletePostDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.details.DeleteByID(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgDetailsDeleted, nil))
}
