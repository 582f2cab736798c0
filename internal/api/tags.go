package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	msgTagCreated    = "Tag created successfully"
	msgTagExists     = "Tag already exists"
	msgTagRetrieved  = "Tag retrieved successfully"
	msgTagsRetrieved = "Tags retrieved successfully"
	msgTagUpdated    = "Tag updated successfully"
	msgTagDeleted    = "Tag deleted successfully"
)

// CreateTag answers 201 for a new tag and 200 with the stored tag when one
// with the same name, ignoring case, already exists.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	tag, created, err := h.tags.Save(r.Context(), req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status, msg := http.StatusOK, msgTagExists
	if created {
		status, msg = http.StatusCreated, msgTagCreated
	}
	writeEnvelope(w, successEnvelope(r, status, msg, toTagDTO(tag)))
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	tags, total, err := h.tags.FindAll(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgTagsRetrieved, toTagDTOs(tags))
	env.Meta = listMeta(q, total, len(tags))
	writeEnvelope(w, env)
}

func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	tag, err := h.tags.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgTagRetrieved, toTagDTO(tag)))
}

func (h *Handler) GetTagByName(w http.ResponseWriter, r *http.Request) {
	tag, err := h.tags.FindByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgTagRetrieved, toTagDTO(tag)))
}

func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req TagRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	tag, err := h.tags.Update(r.Context(), id, req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgTagUpdated, toTagDTO(tag)))
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.tags.DeleteByID(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgTagDeleted, nil))
}
