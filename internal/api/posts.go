package api

import "net/http"

const (
	msgPostCreated    = "Post created successfully"
	msgPostRetrieved  = "Post retrieved successfully"
	msgPostsRetrieved = "Posts retrieved successfully"
	msgPostUpdated    = "Post updated successfully"
	msgPostDeleted    = "Post deleted successfully"
)

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	post, err := h.posts.Save(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusCreated, msgPostCreated, toPostDTO(post))
	h.attachExplanation(r, env, post)
	writeEnvelope(w, env)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	posts, total, err := h.posts.FindAll(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgPostsRetrieved, toPostDTOs(posts))
	env.Meta = listMeta(q, total, len(posts))
	writeEnvelope(w, env)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	post, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgPostRetrieved, toPostDTO(post))
	h.attachExplanation(r, env, post)
	writeEnvelope(w, env)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var req PostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if problems := req.Validate(); len(problems) > 0 {
		h.writeServiceError(w, r, badRequest(problems...))
		return
	}

	post, err := h.posts.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	env := successEnvelope(r, http.StatusOK, msgPostUpdated, toPostDTO(post))
	h.attachExplanation(r, env, post)
	writeEnvelope(w, env)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.posts.DeleteByID(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, successEnvelope(r, http.StatusOK, msgPostDeleted, nil))
}
