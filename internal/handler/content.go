package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
)

// ContentHandler serves the website content: blog posts, FAQs and the
// contact form.
type ContentHandler struct {
	Blogs    *repository.BlogRepo
	FAQs     *repository.FAQRepo
	Contacts *repository.ContactRepo
	Cache    CacheInvalidator
}

func NewContentHandler(blogs *repository.BlogRepo, faqs *repository.FAQRepo, contacts *repository.ContactRepo, cache CacheInvalidator) *ContentHandler {
	if blogs == nil || faqs == nil || contacts == nil {
		panic("nil repository passed to NewContentHandler")
	}
	return &ContentHandler{Blogs: blogs, FAQs: faqs, Contacts: contacts, Cache: orNop(cache)}
}

// ----- blog posts -----

type blogReq struct {
	Title     string `json:"title" validate:"required,max=200"`
	Content   string `json:"content" validate:"required"`
	Author    string `json:"author" validate:"omitempty,max=120"`
	Published bool   `json:"published"`
}

// ListBlogs handles GET /v1/blogs (published posts only).
func (h *ContentHandler) ListBlogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Blogs.List(ctx, true, pageFrom(c))
	if err != nil {
		return dbError(c, err, "blog post")
	}
	return c.JSON(http.StatusOK, list)
}

// GetBlog handles GET /v1/blogs/:slug.
func (h *ContentHandler) GetBlog(c echo.Context) error {
	s := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if s == "" || !slug.IsSlug(s) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "blog post not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	b, err := h.Blogs.GetBySlug(ctx, s)
	if err != nil {
		return dbError(c, err, "blog post")
	}
	return c.JSON(http.StatusOK, b)
}

// CreateBlog handles POST /v1/blogs.  The slug is derived from the title;
// a short random suffix is appended once if it is already taken.
func (h *ContentHandler) CreateBlog(c echo.Context) error {
	var req blogReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	base := slug.Make(req.Title)
	if base == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must contain letters or digits"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b := model.BlogPost{Title: req.Title, Slug: base, Content: req.Content, Author: req.Author, Published: req.Published}
	err := h.Blogs.Create(ctx, &b)
	if errors.Is(err, repository.ErrDuplicate) {
		b.Slug = base + "-" + uuid.NewString()[:8]
		err = h.Blogs.Create(ctx, &b)
	}
	if err != nil {
		return dbError(c, err, "blog post")
	}
	h.Cache.Invalidate(ctx, middleware.CacheBlogs)
	return c.JSON(http.StatusCreated, b)
}

// UpdateBlog handles PUT /v1/blogs/:id.  The slug is kept so published
// links stay valid.
func (h *ContentHandler) UpdateBlog(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "blog post")
	}
	var req blogReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, id)
	if err != nil {
		return dbError(c, err, "blog post")
	}
	b.Title, b.Content, b.Author, b.Published = req.Title, req.Content, req.Author, req.Published
	if err := h.Blogs.Update(ctx, &b); err != nil {
		return dbError(c, err, "blog post")
	}
	h.Cache.Invalidate(ctx, middleware.CacheBlogs)
	return c.JSON(http.StatusOK, b)
}

// DeleteBlog handles DELETE /v1/blogs/:id.
func (h *ContentHandler) DeleteBlog(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "blog post")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blogs.Delete(ctx, id); err != nil {
		return dbError(c, err, "blog post")
	}
	h.Cache.Invalidate(ctx, middleware.CacheBlogs)
	return c.NoContent(http.StatusNoContent)
}

// ----- FAQs -----

type faqReq struct {
	Question string `json:"question" validate:"required,max=500"`
	Answer   string `json:"answer" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// ListFAQs handles GET /v1/faqs.
func (h *ContentHandler) ListFAQs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.FAQs.List(ctx)
	if err != nil {
		return dbError(c, err, "faq")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateFAQ handles POST /v1/faqs.
func (h *ContentHandler) CreateFAQ(c echo.Context) error {
	var req faqReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f := model.FAQ{Question: req.Question, Answer: req.Answer, Position: req.Position}
	if err := h.FAQs.Create(ctx, &f); err != nil {
		return dbError(c, err, "faq")
	}
	h.Cache.Invalidate(ctx, middleware.CacheFAQs)
	return c.JSON(http.StatusCreated, f)
}

// UpdateFAQ handles PUT /v1/faqs/:id.
func (h *ContentHandler) UpdateFAQ(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "faq")
	}
	var req faqReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	f := model.FAQ{ID: id, Question: req.Question, Answer: req.Answer, Position: req.Position}
	if err := h.FAQs.Update(ctx, &f); err != nil {
		return dbError(c, err, "faq")
	}
	h.Cache.Invalidate(ctx, middleware.CacheFAQs)
	return c.JSON(http.StatusOK, f)
}

// DeleteFAQ handles DELETE /v1/faqs/:id.
func (h *ContentHandler) DeleteFAQ(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "faq")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.FAQs.Delete(ctx, id); err != nil {
		return dbError(c, err, "faq")
	}
	h.Cache.Invalidate(ctx, middleware.CacheFAQs)
	return c.NoContent(http.StatusNoContent)
}

// ----- contact messages -----

type contactReq struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=190"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// CreateContact handles the public POST /v1/contacts.
func (h *ContentHandler) CreateContact(c echo.Context) error {
	var req contactReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	m := model.ContactMessage{Name: req.Name, Email: strings.ToLower(req.Email), Subject: req.Subject, Message: req.Message}
	if err := h.Contacts.Create(ctx, &m); err != nil {
		return dbError(c, err, "contact message")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID})
}

// ListContacts handles GET /v1/contacts?unhandled=true.
func (h *ContentHandler) ListContacts(c echo.Context) error {
	unhandled, _ := strconv.ParseBool(c.QueryParam("unhandled"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	list, err := h.Contacts.List(ctx, unhandled, pageFrom(c))
	if err != nil {
		return dbError(c, err, "contact message")
	}
	return c.JSON(http.StatusOK, list)
}

// MarkContactHandled handles PATCH /v1/contacts/:id/handled.
func (h *ContentHandler) MarkContactHandled(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "contact message")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Contacts.MarkHandled(ctx, id); err != nil {
		return dbError(c, err, "contact message")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteContact handles DELETE /v1/contacts/:id.
func (h *ContentHandler) DeleteContact(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badID(c, "contact message")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Contacts.Delete(ctx, id); err != nil {
		return dbError(c, err, "contact message")
	}
	return c.NoContent(http.StatusNoContent)
}
