package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

type productView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	DeveloperID   string     `json:"developer_id"`
	Price         int64      `json:"price"`
	DiscountPrice int64      `json:"discount_price,omitempty"`
	Thumbnail     string     `json:"thumbnail"`
	Downloads     int64      `json:"downloads"`
	Views         int64      `json:"views"`
	Featured      bool       `json:"featured"`
	Status        string     `json:"status"`
	RatingAverage float64    `json:"rating_average"`
	RatingCount   int        `json:"rating_count"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
}

// The download URL is deliberately absent: file delivery goes through an
// entitlement-checked endpoint, not the public listing.
func toProductView(p *model.Product) productView {
	return productView{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      string(p.Category),
		DeveloperID:   p.DeveloperID,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Thumbnail:     p.Thumbnail,
		Downloads:     p.Downloads,
		Views:         p.Views,
		Featured:      p.Featured,
		Status:        string(p.Status),
		RatingAverage: p.Rating.Average,
		RatingCount:   p.Rating.Count,
		Tags:          p.Tags,
		CreatedAt:     p.CreatedAt,
		ApprovedAt:    p.ApprovedAt,
	}
}

func toProductViews(ps []*model.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductView(p))
	}
	return out
}

type pagedProducts struct {
	Items []productView `json:"items"`
	Total int           `json:"total"`
}

func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	minPrice, _ := strconv.ParseInt(q.Get("min_price"), 10, 64)
	maxPrice, _ := strconv.ParseInt(q.Get("max_price"), 10, 64)

	f := repository.ProductFilter{
		Status:   model.ProductStatus(q.Get("status")),
		Category: model.ProductCategory(q.Get("category")),
		Search:   q.Get("search"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		SortBy:   q.Get("sort"),
		SortAsc:  q.Get("order") == "asc",
		Offset:   offset,
		Limit:    limit,
	}

	role := model.RoleUser
	if claims, ok := ClaimsFrom(r.Context()); ok {
		role = model.Role(claims.Role)
	}

	items, total, err := s.productUC.List(r.Context(), f, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedProducts{Items: toProductViews(items), Total: total})
}

func (s *Server) handleProductGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.productUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(p))
}

func (s *Server) handleProductFeatured(w http.ResponseWriter, r *http.Request) {
	items, err := s.productUC.Featured(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductViews(items))
}

func (s *Server) handleProductSuggest(w http.ResponseWriter, r *http.Request) {
	items, err := s.productUC.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductViews(items))
}

func (s *Server) handleProductsByDeveloper(w http.ResponseWriter, r *http.Request) {
	items, err := s.productUC.ByDeveloper(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductViews(items))
}

type productSubmitRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       int64    `json:"price"`
	Thumbnail   string   `json:"thumbnail"`
	FileURL     string   `json:"file_url"`
	FileSize    int64    `json:"file_size"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleProductSubmit(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	caller, err := s.authUC.Me(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	var req productSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.productUC.Submit(r.Context(), caller, req.Title, req.Description, req.Category, req.Price, req.Thumbnail, req.FileURL, req.FileSize, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(p))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.productUC.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	type categoryView struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
		Type string `json:"type"`
		Icon string `json:"icon,omitempty"`
	}
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, Type: string(c.Type), Icon: c.Icon})
	}
	writeJSON(w, http.StatusOK, out)
}

type reviewCreateRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

type reviewView struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewView(r *model.Review) reviewView {
	return reviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Server) handleReviewCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	var req reviewCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := s.reviewUC.Create(r.Context(), claims.Subject, chi.URLParam(r, "id"), req.Rating, req.Title, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewView(review))
}

func (s *Server) handleReviewList(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviewUC.ListByProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reviewView, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, toReviewView(rv))
	}
	writeJSON(w, http.StatusOK, out)
}
