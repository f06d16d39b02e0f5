package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/poster"
)

type posterView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       posterImageView `json:"image"`
	Sizes       []string        `json:"sizes,omitempty"`
}

type posterImageView struct {
	Thumbnail string `json:"thumbnail"`
	Full      string `json:"full"`
}

func (h *Handler) listPosters(w http.ResponseWriter, r *http.Request) {
	posters, err := h.posters.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]posterView, len(posters))
	for i, p := range posters {
		views[i] = h.posterView(p)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getPoster(w http.ResponseWriter, r *http.Request) {
	p, err := h.posters.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.posterView(*p))
}

func (h *Handler) posterView(p poster.Poster) posterView {
	return posterView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image: posterImageView{
			Thumbnail: h.imageURL(p.Image.Thumbnail),
			Full:      h.imageURL(p.Image.Full),
		},
		Sizes: p.Sizes,
	}
}
