package models

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) User {
	user := User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashed_password",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	tables := []string{"users", "groups", "posts", "comments", "follows"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUsernameUnique(t *testing.T) {
	db := setupTestDB(t)
	createUser(t, db, "leo")

	dup := User{Username: "leo", Email: "other@example.com", PasswordHash: "x"}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected unique constraint error for duplicate username")
	}
}

func TestGroupSlugUnique(t *testing.T) {
	db := setupTestDB(t)

	group := Group{Title: "Cats", Slug: "cats", Description: "About cats"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	dup := Group{Title: "Other cats", Slug: "cats"}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected unique constraint error for duplicate slug")
	}
}

func TestPostShortText(t *testing.T) {
	short := Post{Text: "short text"}
	if got := short.ShortText(); got != "short text" {
		t.Errorf("Expected full text for short posts, got %q", got)
	}

	long := Post{Text: strings.Repeat("a", 100)}
	if got := long.ShortText(); len([]rune(got)) != TextPreviewLen {
		t.Errorf("Expected %d runes, got %d", TextPreviewLen, len([]rune(got)))
	}

	// multi-byte text must not be cut mid-rune
	cyrillic := Post{Text: strings.Repeat("ы", 50)}
	if got := cyrillic.ShortText(); got != strings.Repeat("ы", TextPreviewLen) {
		t.Errorf("Unexpected truncation of multi-byte text: %q", got)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")

	post := Post{Text: "post body", AuthorID: author.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	comment := Comment{PostID: post.ID, AuthorID: reader.ID, Text: "nice"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	follow := Follow{UserID: reader.ID, AuthorID: author.ID}
	if err := db.Create(&follow).Error; err != nil {
		t.Fatalf("Failed to create follow: %v", err)
	}

	if err := db.Delete(&User{}, author.ID).Error; err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	var posts, comments, follows int64
	db.Model(&Post{}).Count(&posts)
	db.Model(&Comment{}).Count(&comments)
	db.Model(&Follow{}).Count(&follows)
	if posts != 0 {
		t.Errorf("Expected author's posts to be deleted, %d remain", posts)
	}
	if comments != 0 {
		t.Errorf("Expected comments on deleted posts to be gone, %d remain", comments)
	}
	if follows != 0 {
		t.Errorf("Expected follow edges to the author to be gone, %d remain", follows)
	}
}

func TestDeleteGroupDetachesPosts(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author")

	group := Group{Title: "Cats", Slug: "cats"}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}
	post := Post{Text: "grouped post", AuthorID: author.ID, GroupID: &group.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}

	if err := db.Delete(&Group{}, group.ID).Error; err != nil {
		t.Fatalf("Failed to delete group: %v", err)
	}

	var got Post
	if err := db.First(&got, post.ID).Error; err != nil {
		t.Fatalf("Post should survive group deletion: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("Expected group reference to be cleared, got %v", *got.GroupID)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author")

	post := Post{Text: "post body", AuthorID: author.ID}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	comment := Comment{PostID: post.ID, AuthorID: author.ID, Text: "self reply"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}

	if err := db.Delete(&Post{}, post.ID).Error; err != nil {
		t.Fatalf("Failed to delete post: %v", err)
	}

	var comments int64
	db.Model(&Comment{}).Count(&comments)
	if comments != 0 {
		t.Errorf("Expected comments to be deleted with the post, %d remain", comments)
	}
}

func TestFollowPairUnique(t *testing.T) {
	db := setupTestDB(t)
	follower := createUser(t, db, "follower")
	author := createUser(t, db, "author")

	first := Follow{UserID: follower.ID, AuthorID: author.ID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create follow: %v", err)
	}

	// a direct insert bypassing the handler guard still cannot duplicate
	dup := Follow{UserID: follower.ID, AuthorID: author.ID}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected unique constraint error for duplicate follow pair")
	}

	// the reverse direction is a distinct edge
	reverse := Follow{UserID: author.ID, AuthorID: follower.ID}
	if err := db.Create(&reverse).Error; err != nil {
		t.Errorf("Reverse follow should be allowed: %v", err)
	}
}
