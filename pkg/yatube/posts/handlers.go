package posts

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kasaress/yatube/pkg/yatube/auth"
	"github.com/kasaress/yatube/pkg/yatube/models"
	"github.com/kasaress/yatube/pkg/yatube/pagecache"
	"github.com/kasaress/yatube/pkg/yatube/pagination"
)

// Handler handles post pages: listings, detail with comments, and the
// create/edit/delete flows
type Handler struct {
	db       *gorm.DB
	cache    *pagecache.Store
	mediaDir string
}

// NewHandler creates a new posts handler. Uploaded images land under
// mediaDir; cache holds rendered index pages.
func NewHandler(db *gorm.DB, cache *pagecache.Store, mediaDir string) *Handler {
	return &Handler{db: db, cache: cache, mediaDir: mediaDir}
}

// PostForm represents the post create/edit submission
type PostForm struct {
	Text    string `form:"text" json:"text"`
	GroupID *uint  `form:"group" json:"group"`
}

// CommentForm represents the comment submission
type CommentForm struct {
	Text string `form:"text" json:"text"`
}

// AuthorResponse represents a post author in API responses
type AuthorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID        uint           `json:"id"`
	Text      string         `json:"text"`
	Author    AuthorResponse `json:"author"`
	Group     *GroupResponse `json:"group,omitempty"`
	Image     string         `json:"image,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uint           `json:"id"`
	Author    AuthorResponse `json:"author"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"created_at"`
}

// PageResponse represents one page of posts plus navigation data
type PageResponse struct {
	Items       []PostResponse `json:"items"`
	Number      int            `json:"number"`
	TotalPages  int            `json:"total_pages"`
	TotalCount  int64          `json:"total_count"`
	HasPrevious bool           `json:"has_previous"`
	HasNext     bool           `json:"has_next"`
}

func authorToResponse(user models.User) AuthorResponse {
	return AuthorResponse{ID: user.ID, Username: user.Username}
}

func groupToResponse(group models.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func postToResponse(post models.Post) PostResponse {
	resp := PostResponse{
		ID:        post.ID,
		Text:      post.Text,
		Author:    authorToResponse(post.Author),
		Image:     post.Image,
		CreatedAt: post.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if post.Group != nil {
		g := groupToResponse(*post.Group)
		resp.Group = &g
	}
	return resp
}

func commentToResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Author:    authorToResponse(comment.Author),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// NewPageResponse converts a pagination result into its API shape.
func NewPageResponse(page pagination.Page[models.Post]) PageResponse {
	items := make([]PostResponse, len(page.Items))
	for i, post := range page.Items {
		items[i] = postToResponse(post)
	}
	return PageResponse{
		Items:       items,
		Number:      page.Number,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
		HasPrevious: page.HasPrevious(),
		HasNext:     page.HasNext(),
	}
}

// postQuery returns the base listing query: newest first, author and
// group ready for rendering.
func (h *Handler) postQuery() *gorm.DB {
	return h.db.Model(&models.Post{}).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC")
}

func postPath(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// findPost resolves the :id parameter. On an unknown or malformed id it
// writes the 404 response and reports false.
func (h *Handler) findPost(c *gin.Context) (models.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}
	var post models.Post
	if err := h.db.Preload("Author").Preload("Group").First(&post, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}
	return post, true
}

// Index returns the paginated post index
// @Summary Post index
// @Description All posts, newest first. The rendered page is cached per
// @Description path for a fixed duration, so fresh posts may lag behind.
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	key := c.Request.URL.RequestURI()
	if body, ok := h.cache.Get(c.Request.Context(), key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	page, err := pagination.Paginate[models.Post](h.postQuery(), pagination.PageNumber(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	body, err := json.Marshal(gin.H{"page": NewPageResponse(page)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render page"})
		return
	}
	h.cache.Set(c.Request.Context(), key, body)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GroupList returns the paginated posts of one group
// @Summary Group listing
// @Tags posts
// @Produce json
// @Param slug path string true "Group slug"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Group not found"
// @Router /group/{slug}/ [get]
func (h *Handler) GroupList(c *gin.Context) {
	var group models.Group
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	page, err := pagination.Paginate[models.Post](h.postQuery().Where("group_id = ?", group.ID), pagination.PageNumber(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": groupToResponse(group),
		"page":  NewPageResponse(page),
	})
}

// Profile returns the paginated posts of one author
// @Summary Profile listing
// @Description An author's posts, their total count, and whether the
// @Description current viewer follows them (false for anonymous viewers).
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "User not found"
// @Router /profile/{username}/ [get]
func (h *Handler) Profile(c *gin.Context) {
	var author models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	page, err := pagination.Paginate[models.Post](h.postQuery().Where("author_id = ?", author.ID), pagination.PageNumber(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	following := false
	if viewerID, ok := auth.GetUserID(c); ok {
		var count int64
		h.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewerID, author.ID).
			Count(&count)
		following = count > 0
	}

	c.JSON(http.StatusOK, gin.H{
		"author":       authorToResponse(author),
		"page":         NewPageResponse(page),
		"posts_amount": page.TotalCount,
		"following":    following,
	})
}

// Detail returns one post with its comments and a blank comment form
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Post not found"
// @Router /posts/{id}/ [get]
func (h *Handler) Detail(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var comments []models.Comment
	h.db.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at DESC, id DESC").
		Find(&comments)
	commentList := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		commentList[i] = commentToResponse(comment)
	}

	var postsAmount int64
	h.db.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&postsAmount)

	c.JSON(http.StatusOK, gin.H{
		"post":         postToResponse(post),
		"title":        post.ShortText(),
		"posts_amount": postsAmount,
		"comments":     commentList,
		"form":         CommentForm{},
	})
}

// AddComment creates a comment on a post and returns to its detail page
// @Summary Add a comment
// @Tags posts
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path int true "Post ID"
// @Param text formData string true "Comment text"
// @Success 302 {string} string "Redirect to the post detail"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/comment/ [post]
func (h *Handler) AddComment(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserID(c)

	var form CommentForm
	_ = c.ShouldBind(&form)
	if strings.TrimSpace(form.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": gin.H{"text": "This field is required."},
			"form":   form,
		})
		return
	}

	comment := models.Comment{PostID: post.ID, AuthorID: viewerID, Text: form.Text}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}

// CreateForm returns the blank post form with the available groups
// @Summary Post creation form
// @Tags posts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /create/ [get]
func (h *Handler) CreateForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":   PostForm{},
		"groups": h.groupChoices(),
	})
}

// Create creates a post owned by the current viewer
// @Summary Create a post
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Illustration"
// @Success 302 {string} string "Redirect to the author's profile"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Security BearerAuth
// @Router /create/ [post]
func (h *Handler) Create(c *gin.Context) {
	viewerID, _ := auth.GetUserID(c)

	form, imagePath, ok := h.bindPostForm(c)
	if !ok {
		return
	}

	post := models.Post{
		Text:     form.Text,
		AuthorID: viewerID,
		GroupID:  form.GroupID,
		Image:    imagePath,
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	username, _ := auth.GetUsername(c)
	c.Redirect(http.StatusFound, "/profile/"+username+"/")
}

// EditForm returns the pre-filled form for an existing post
// @Summary Post edit form
// @Description Only the author may edit; anyone else is sent back to the
// @Description detail page without an error.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/edit/ [get]
func (h *Handler) EditForm(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	if viewerID, _ := auth.GetUserID(c); post.AuthorID != viewerID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form":    PostForm{Text: post.Text, GroupID: post.GroupID},
		"groups":  h.groupChoices(),
		"is_edit": true,
	})
}

// Edit applies changes to an existing post
// @Summary Edit a post
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param id path int true "Post ID"
// @Param text formData string true "Post text"
// @Param group formData int false "Group ID"
// @Param image formData file false "Illustration"
// @Success 302 {string} string "Redirect to the post detail"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/edit/ [post]
func (h *Handler) Edit(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	if viewerID, _ := auth.GetUserID(c); post.AuthorID != viewerID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	form, imagePath, ok := h.bindPostForm(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"text":     form.Text,
		"group_id": form.GroupID,
	}
	if imagePath != "" {
		updates["image"] = imagePath
	}
	if err := h.db.Model(&post).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.Redirect(http.StatusFound, postPath(post.ID))
}

// DeleteConfirm returns the confirmation context before a delete
// @Summary Post delete confirmation
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/delete/ [get]
func (h *Handler) DeleteConfirm(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	if viewerID, _ := auth.GetUserID(c); post.AuthorID != viewerID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postToResponse(post)})
}

// Delete removes a post and returns to the index
// @Summary Delete a post
// @Description Author-only, mirroring the edit rule: anyone else is sent
// @Description back to the detail page untouched.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 302 {string} string "Redirect to the index"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/delete/ [post]
func (h *Handler) Delete(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}
	if viewerID, _ := auth.GetUserID(c); post.AuthorID != viewerID {
		c.Redirect(http.StatusFound, postPath(post.ID))
		return
	}

	if err := h.db.Delete(&models.Post{}, post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) groupChoices() []GroupResponse {
	var groups []models.Group
	h.db.Order("title").Find(&groups)
	choices := make([]GroupResponse, len(groups))
	for i, group := range groups {
		choices[i] = groupToResponse(group)
	}
	return choices
}

// bindPostForm binds and validates the post form, storing an uploaded
// image if one is attached. On failure it writes the 400 response with
// field-level messages and reports false.
func (h *Handler) bindPostForm(c *gin.Context) (PostForm, string, bool) {
	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": gin.H{"group": "Select a valid choice."},
			"form":   form,
		})
		return form, "", false
	}

	errs := gin.H{}
	if strings.TrimSpace(form.Text) == "" {
		errs["text"] = "This field is required."
	}
	if form.GroupID != nil {
		var group models.Group
		if err := h.db.First(&group, *form.GroupID).Error; err != nil {
			errs["group"] = "Select a valid choice."
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "form": form})
		return form, "", false
	}

	imagePath, err := h.saveImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": gin.H{"image": "Could not store the uploaded image."},
			"form":   form,
		})
		return form, "", false
	}
	return form, imagePath, true
}

// saveImage stores an uploaded image under the media directory with a
// collision-free name. No attached image is not an error.
func (h *Handler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	name := uuid.New().String() + filepath.Ext(file.Filename)
	rel := filepath.Join("posts", name)
	if err := c.SaveUploadedFile(file, filepath.Join(h.mediaDir, rel)); err != nil {
		return "", err
	}
	return rel, nil
}

// RegisterRoutes registers post routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Index)
	rg.GET("/group/:slug/", h.GroupList)
	rg.GET("/profile/:username/", auth.OptionalAuth(), h.Profile)

	rg.GET("/posts/:id/", h.Detail)
	rg.POST("/posts/:id/", auth.LoginRequired(), h.AddComment)
	rg.POST("/posts/:id/comment/", auth.LoginRequired(), h.AddComment)

	rg.GET("/create/", auth.LoginRequired(), h.CreateForm)
	rg.POST("/create/", auth.LoginRequired(), h.Create)
	rg.GET("/posts/:id/edit/", auth.LoginRequired(), h.EditForm)
	rg.POST("/posts/:id/edit/", auth.LoginRequired(), h.Edit)
	rg.GET("/posts/:id/delete/", auth.LoginRequired(), h.DeleteConfirm)
	rg.POST("/posts/:id/delete/", auth.LoginRequired(), h.Delete)
}
