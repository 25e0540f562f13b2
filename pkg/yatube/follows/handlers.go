package follows

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasaress/yatube/pkg/yatube/auth"
	"github.com/kasaress/yatube/pkg/yatube/models"
	"github.com/kasaress/yatube/pkg/yatube/pagination"
	"github.com/kasaress/yatube/pkg/yatube/posts"
)

// Handler handles the follow feed and the follow/unfollow toggles
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new follows handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// findAuthor resolves the :username parameter. On an unknown username it
// writes the 404 response and reports false.
func (h *Handler) findAuthor(c *gin.Context) (models.User, bool) {
	var author models.User
	if err := h.db.Where("username = ?", c.Param("username")).First(&author).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return author, true
}

// Feed returns the paginated posts of every author the viewer follows
// @Summary Follow feed
// @Tags follows
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /follow/ [get]
func (h *Handler) Feed(c *gin.Context) {
	viewerID, _ := auth.GetUserID(c)

	followed := h.db.Model(&models.Follow{}).
		Select("author_id").
		Where("user_id = ?", viewerID)
	query := h.db.Model(&models.Post{}).
		Preload("Author").
		Preload("Group").
		Where("author_id IN (?)", followed).
		Order("created_at DESC, id DESC")

	page, err := pagination.Paginate[models.Post](query, pagination.PageNumber(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"page": posts.NewPageResponse(page)})
}

// Follow creates a follow edge from the viewer to an author
// @Summary Follow an author
// @Description Idempotent: following an already-followed author writes
// @Description nothing. Following yourself is ignored.
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 302 {string} string "Redirect to the author's profile"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /profile/{username}/follow/ [post]
func (h *Handler) Follow(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserID(c)

	if viewerID != author.ID {
		follow := models.Follow{UserID: viewerID, AuthorID: author.ID}
		// the pair's unique index makes a repeat follow a no-op
		if err := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
			return
		}
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// Unfollow removes the viewer's follow edge to an author
// @Summary Unfollow an author
// @Description Idempotent: unfollowing someone you don't follow is a no-op.
// @Tags follows
// @Produce json
// @Param username path string true "Author username"
// @Success 302 {string} string "Redirect to the author's profile"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /profile/{username}/unfollow/ [post]
func (h *Handler) Unfollow(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}
	viewerID, _ := auth.GetUserID(c)

	if err := h.db.
		Where("user_id = ? AND author_id = ?", viewerID, author.ID).
		Delete(&models.Follow{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// RegisterRoutes registers follow routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/follow/", auth.LoginRequired(), h.Feed)
	rg.GET("/profile/:username/follow/", auth.LoginRequired(), h.Follow)
	rg.POST("/profile/:username/follow/", auth.LoginRequired(), h.Follow)
	rg.GET("/profile/:username/unfollow/", auth.LoginRequired(), h.Unfollow)
	rg.POST("/profile/:username/unfollow/", auth.LoginRequired(), h.Unfollow)
}
