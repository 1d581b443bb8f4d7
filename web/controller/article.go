package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/web/service"
)

// maxSubmissionBytes bounds a whole article request: the largest image plus
// room for the text fields.
const maxSubmissionBytes = service.MaxAssetSize + 1<<20

type ArticleController struct {
	svc *service.ArticleService
}

// NewArticleController registers the article routes on g. Reads are public,
// writes go through auth.
func NewArticleController(g *gin.RouterGroup, svc *service.ArticleService, auth ...gin.HandlerFunc) *ArticleController {
	a := &ArticleController{svc: svc}

	articles := g.Group("/articles")
	articles.GET("", a.list)
	articles.GET("/:slug", a.getBySlug)

	write := articles.Group("", auth...)
	write.POST("", a.create)
	write.PUT("/:id", a.update)
	write.PATCH("/:id/toggle", a.toggle)

	return a
}

func (a *ArticleController) list(c *gin.Context) {
	opts := service.ListOptions{ActiveOnly: c.Query("active") == "true"}
	articles, err := a.svc.List(opts)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", articles)
}

func (a *ArticleController) getBySlug(c *gin.Context) {
	article, err := a.svc.GetBySlugActive(c.Param("slug"))
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", article)
}

func (a *ArticleController) create(c *gin.Context) {
	sub, upload, _, closeFn, err := readSubmission(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	defer closeFn()

	article, err := a.svc.Publish(sub, upload)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusCreated, "Article created", article)
}

func (a *ArticleController) update(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	sub, upload, removeImage, closeFn, err := readSubmission(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	defer closeFn()

	article, err := a.svc.Revise(id, sub, upload, removeImage)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "Article updated", article)
}

func (a *ArticleController) toggle(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonError(c, err)
		return
	}
	article, err := a.svc.ToggleActive(id)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, "", article)
}

type jsonSubmission struct {
	service.Submission
	RemoveImage bool `json:"removeImage"`
}

// readSubmission decodes an article from a JSON body or a (multipart) form.
// The returned close function releases the uploaded file, if any.
func readSubmission(c *gin.Context) (service.Submission, *service.Upload, bool, func(), error) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmissionBytes)

	if c.ContentType() == gin.MIMEJSON {
		var body jsonSubmission
		if err := c.ShouldBindJSON(&body); err != nil {
			return service.Submission{}, nil, false, noop, requestError(err)
		}
		return body.Submission, nil, body.RemoveImage, noop, nil
	}

	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := c.Request.ParseMultipartForm(maxSubmissionBytes); err != nil {
			return service.Submission{}, nil, false, noop, requestError(err)
		}
	}

	sub := service.Submission{
		Slug:     c.PostForm("name"),
		Title:    c.PostForm("title"),
		IsActive: service.ParseActiveFlag(c.PostForm("isActive")),
	}
	switch values := c.PostFormArray("content"); len(values) {
	case 0:
	case 1:
		sub.Content = service.TextContent(values[0])
	default:
		sub.Content = service.ListContent(values)
	}
	removeImage := c.PostForm("removeImage") == "true"

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return sub, nil, removeImage, noop, nil
	} else if err != nil {
		return service.Submission{}, nil, false, noop, requestError(err)
	}
	return openUpload(sub, header, removeImage)
}

func openUpload(sub service.Submission, header *multipart.FileHeader, removeImage bool) (service.Submission, *service.Upload, bool, func(), error) {
	file, err := header.Open()
	if err != nil {
		return service.Submission{}, nil, false, func() {}, err
	}
	upload := &service.Upload{Filename: header.Filename, Size: header.Size, Content: file}
	return sub, upload, removeImage, func() { _ = file.Close() }, nil
}

func requestError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &common.InvalidAssetError{Reason: "request exceeds " + common.FormatBytes(service.MaxAssetSize), TooLarge: true}
	}
	return bindError(err)
}
