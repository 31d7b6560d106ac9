package routes

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/related"
	"legal-reader/internal/search"
	"legal-reader/internal/slug"
	"legal-reader/services"
	"legal-reader/utils"
)

// DocumentSummary is one entry of the document listing
type DocumentSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	SectionCount int    `json:"section_count"`
}

// PointView is a point with its formatted fragments
type PointView struct {
	ID        content.PointID   `json:"id"`
	Text      string            `json:"text"`
	Fragments []search.Fragment `json:"fragments"`
}

// SectionView is a section prepared for display
type SectionView struct {
	Title      string              `json:"title"`
	Slug       string              `json:"slug"`
	Fragments  []search.Fragment   `json:"title_fragments"`
	Points     []PointView         `json:"points"`
	Paragraphs [][]search.Fragment `json:"paragraphs"`
	Metadata   content.Metadata    `json:"metadata"`
}

// SearchHit is one ranked search result
type SearchHit struct {
	Score int `json:"score"`
	SectionView
}

// RelatedLink points at a related section of the same document
type RelatedLink struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type RelatedResponse struct {
	Titles []string      `json:"titles"`
	Links  []RelatedLink `json:"links"`
}

type documentHandler struct {
	library     *content.Library
	related     *related.Service
	highlighter *search.Highlighter
	relatedWait time.Duration
}

// SetupDocumentRoutes registers the reader API. relatedWait bounds how long a
// request waits for a related-sections lookup; zero leaves it to the request context.
func SetupDocumentRoutes(router *gin.Engine, lib *content.Library, relatedSvc *related.Service, highlighter *search.Highlighter, relatedWait time.Duration) {
	h := &documentHandler{
		library:     lib,
		related:     relatedSvc,
		highlighter: highlighter,
		relatedWait: relatedWait,
	}

	api := router.Group("/api/documents")
	{
		api.GET("", h.listDocuments)
		api.GET("/:docID", h.getDocument)
		api.GET("/:docID/toc", h.getTOC)
		api.GET("/:docID/search", h.searchDocument)
		api.GET("/:docID/sections/:slug", h.getSection)
		api.GET("/:docID/sections/:slug/related", h.getRelated)
		api.GET("/:docID/export.xlsx", h.exportDocument)
	}
}

func (h *documentHandler) listDocuments(c *gin.Context) {
	docs := h.library.Documents()
	out := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentSummary{
			ID:           d.ID,
			Title:        d.Title,
			SectionCount: len(d.Introductions) + len(d.Sections),
		})
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (h *documentHandler) document(c *gin.Context) (*content.Document, bool) {
	doc, ok := h.library.Document(c.Param("docID"))
	if !ok {
		utils.RespondWithNotFound(c, "document_not_found", "Document not found")
		return nil, false
	}
	return doc, true
}

func (h *documentHandler) section(c *gin.Context, doc *content.Document) (content.Section, bool) {
	sec, ok := doc.Section(c.Param("slug"))
	if !ok {
		utils.RespondWithNotFound(c, "section_not_found", "Section not found")
		return content.Section{}, false
	}
	return sec, true
}

func (h *documentHandler) getDocument(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *documentHandler) getTOC(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_id": doc.ID, "entries": content.TOC(doc)})
}

func (h *documentHandler) searchDocument(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	ranked := search.Rank(doc.AllSections(), query)

	hits := make([]SearchHit, 0, len(ranked))
	for _, r := range ranked {
		hits = append(hits, SearchHit{Score: r.Score, SectionView: h.view(r.Section, query)})
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "count": len(hits), "results": hits})
}

func (h *documentHandler) getSection(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	sec, ok := h.section(c, doc)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.view(sec, strings.TrimSpace(c.Query("q"))))
}

func (h *documentHandler) getRelated(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}
	sec, ok := h.section(c, doc)
	if !ok {
		return
	}
	cache, ok := h.related.Cache(doc.ID)
	if !ok {
		utils.RespondWithNotFound(c, "document_not_found", "Document not found")
		return
	}

	ctx := c.Request.Context()
	if h.relatedWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.relatedWait)
		defer cancel()
	}

	titles, err := cache.GetRelated(ctx, sec, doc.AllSections())
	if err != nil {
		// Only our own wait running out means pending; a timed-out remote call is a failure.
		if ctx.Err() != nil {
			utils.RespondWithGatewayTimeout(c, "related_lookup_pending", "Related sections are still being computed")
			return
		}
		logger.Error("Related lookup failed", "document", doc.ID, "section", sec.Title, "error", err)
		utils.RespondWithBadGateway(c, "related_lookup_failed", "Failed to find related sections", err.Error())
		return
	}

	links := make([]RelatedLink, 0, len(titles))
	for _, t := range titles {
		links = append(links, RelatedLink{Title: t, Slug: slug.Slugify(t)})
	}
	c.JSON(http.StatusOK, RelatedResponse{Titles: titles, Links: links})
}

func (h *documentHandler) exportDocument(c *gin.Context) {
	doc, ok := h.document(c)
	if !ok {
		return
	}

	data, err := services.ExportDocumentExcel(doc)
	if err != nil {
		logger.Error("Excel export failed", "document", doc.ID, "error", err)
		utils.RespondWithInternalError(c, "Failed to export document", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, doc.ID))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *documentHandler) view(sec content.Section, query string) SectionView {
	v := SectionView{
		Title:      sec.Title,
		Slug:       slug.Slugify(sec.Title),
		Fragments:  h.highlighter.Highlight(sec.Title, query),
		Points:     make([]PointView, 0, len(sec.Points)),
		Paragraphs: make([][]search.Fragment, 0, len(sec.Paragraphs)),
		Metadata:   sec.Metadata,
	}
	for _, p := range sec.Points {
		v.Points = append(v.Points, PointView{ID: p.ID, Text: p.Text, Fragments: h.highlighter.Highlight(p.Text, query)})
	}
	for _, para := range sec.Paragraphs {
		v.Paragraphs = append(v.Paragraphs, h.highlighter.Highlight(para, query))
	}
	return v
}
