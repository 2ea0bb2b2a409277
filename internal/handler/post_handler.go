package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"miniblog/internal/middleware"
	"miniblog/internal/model"
	"miniblog/internal/pkg"
	"miniblog/internal/service"

	"github.com/gin-gonic/gin"
)

// titlePreviewLen is how many characters of the text the detail page
// shows as its title.
const titlePreviewLen = 30

type PostHandler struct {
	svc      *service.PostService
	comments *service.CommentService
	groups   *service.GroupService
	mediaDir string
}

func NewPostHandler(producer *pkg.KafkaProducer, mediaDir string) *PostHandler {
	return &PostHandler{
		svc:      service.NewPostService(producer),
		comments: service.NewCommentService(producer),
		groups:   service.NewGroupService(),
		mediaDir: mediaDir,
	}
}

// Index lists all posts, newest first, ten per page.
func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.svc.ListAll()
	if err != nil {
		serverError(c, err)
		return
	}
	page := pkg.Paginate(posts, pkg.DefaultPageSize, pkg.PageNumber(c.Query("page")))
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Page":     page,
		"Username": c.GetString(middleware.ContextUsernameKey),
	})
}

// GroupPosts lists one group's posts.
func (h *PostHandler) GroupPosts(c *gin.Context) {
	group, posts, err := h.svc.ListByGroup(c.Param("slug"))
	if err != nil {
		if isRecordNotFound(err) {
			NotFoundPage(c)
			return
		}
		serverError(c, err)
		return
	}
	page := pkg.Paginate(posts, pkg.DefaultPageSize, pkg.PageNumber(c.Query("page")))
	c.HTML(http.StatusOK, "group_list.html", gin.H{
		"Group":    group,
		"Page":     page,
		"Username": c.GetString(middleware.ContextUsernameKey),
	})
}

// Profile lists one author's posts.
func (h *PostHandler) Profile(c *gin.Context) {
	author, posts, err := h.svc.ListByAuthor(c.Param("username"))
	if err != nil {
		if isRecordNotFound(err) {
			NotFoundPage(c)
			return
		}
		serverError(c, err)
		return
	}
	page := pkg.Paginate(posts, pkg.DefaultPageSize, pkg.PageNumber(c.Query("page")))
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"Author":   author,
		"Count":    len(posts),
		"Page":     page,
		"Username": c.GetString(middleware.ContextUsernameKey),
	})
}

// Detail shows a single post with its comments and an empty comment
// form.
func (h *PostHandler) Detail(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}

	count, err := h.svc.CountByAuthor(post.AuthorID)
	if err != nil {
		serverError(c, err)
		return
	}
	comments, err := h.comments.ListForPost(post.ID)
	if err != nil {
		serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "post_detail.html", gin.H{
		"Post":         post,
		"Title":        titlePreview(post.Text),
		"CountOfPosts": count,
		"Comments":     comments,
		"Username":     c.GetString(middleware.ContextUsernameKey),
	})
}

// CreateForm shows the empty post form.
func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, false, 0, "", "", nil)
}

// Create validates the submission and persists a post stamped with the
// session identity as its author, then redirects to that profile.
func (h *PostHandler) Create(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserIDKey)
	text := c.PostForm("text")
	groupSlug := c.PostForm("group")

	image, err := h.saveImage(c)
	if err != nil {
		serverError(c, err)
		return
	}

	_, fieldErrs, err := h.svc.Create(userID, text, groupSlug, image)
	if err != nil {
		serverError(c, err)
		return
	}
	if fieldErrs != nil {
		h.renderForm(c, false, 0, text, groupSlug, fieldErrs)
		return
	}

	username := c.GetString(middleware.ContextUsernameKey)
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", username))
}

// EditForm shows the pre-filled form to the author; anyone else is sent
// back to the detail view.
func (h *PostHandler) EditForm(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	if post.AuthorID != c.GetUint64(middleware.ContextUserIDKey) {
		c.Redirect(http.StatusFound, detailPath(post.ID))
		return
	}

	groupSlug := ""
	if post.Group != nil {
		groupSlug = post.Group.Slug
	}
	h.renderForm(c, true, post.ID, post.Text, groupSlug, nil)
}

// Edit mutates text/group/image of the author's own post. Non-authors
// are silently redirected to the detail view, nothing modified.
func (h *PostHandler) Edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		NotFoundPage(c)
		return
	}

	text := c.PostForm("text")
	groupSlug := c.PostForm("group")
	image, err := h.saveImage(c)
	if err != nil {
		serverError(c, err)
		return
	}

	userID := c.GetUint64(middleware.ContextUserIDKey)
	_, fieldErrs, err := h.svc.Update(userID, id, text, groupSlug, image)
	switch {
	case err == service.ErrNotAuthor:
		c.Redirect(http.StatusFound, detailPath(id))
		return
	case err != nil && isRecordNotFound(err):
		NotFoundPage(c)
		return
	case err != nil:
		serverError(c, err)
		return
	}
	if fieldErrs != nil {
		h.renderForm(c, true, id, text, groupSlug, fieldErrs)
		return
	}

	c.Redirect(http.StatusFound, detailPath(id))
}

// AddComment appends a comment to a post. Empty text is a no-op; either
// way the user lands back on the detail view.
func (h *PostHandler) AddComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		NotFoundPage(c)
		return
	}

	userID := c.GetUint64(middleware.ContextUserIDKey)
	_, err = h.comments.Add(userID, id, c.PostForm("text"))
	switch {
	case err == service.ErrEmptyComment:
		// fall through to the redirect, nothing persisted
	case err != nil && isRecordNotFound(err):
		NotFoundPage(c)
		return
	case err != nil:
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(id))
}

// lookupPost resolves the :id param, rendering 404 for a bad or unknown
// id. The bool reports whether the caller should proceed.
func (h *PostHandler) lookupPost(c *gin.Context) (*model.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		NotFoundPage(c)
		return nil, false
	}
	post, err := h.svc.Get(id)
	if err != nil {
		if isRecordNotFound(err) {
			NotFoundPage(c)
		} else {
			serverError(c, err)
		}
		return nil, false
	}
	return post, true
}

func (h *PostHandler) renderForm(c *gin.Context, isEdit bool, postID uint64, text, groupSlug string, fieldErrs service.FieldErrors) {
	groups, err := h.groups.List()
	if err != nil {
		serverError(c, err)
		return
	}
	c.HTML(http.StatusOK, "create_post.html", gin.H{
		"IsEdit":    isEdit,
		"PostID":    postID,
		"Text":      text,
		"GroupSlug": groupSlug,
		"Groups":    groups,
		"Errors":    fieldErrs,
		"Username":  c.GetString(middleware.ContextUsernameKey),
	})
}

// saveImage stores an optional upload under the media dir and returns
// its public path, or "" when nothing was uploaded. Only a missing file
// or a plain non-multipart form counts as "nothing"; a broken multipart
// body is the caller's error to surface.
func (h *PostHandler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.mediaDir, name)); err != nil {
		return "", err
	}
	return "/media/" + name, nil
}

func detailPath(id uint64) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func titlePreview(text string) string {
	r := []rune(text)
	if len(r) > titlePreviewLen {
		return string(r[:titlePreviewLen])
	}
	return text
}
