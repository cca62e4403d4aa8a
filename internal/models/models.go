package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	UserID       string     `json:"userId" db:"user_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

type Post struct {
	PostID      string         `json:"id" db:"post_id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Content     Content        `json:"content" db:"content"`
	MediaURL    *string        `json:"mediaUrl" db:"media_url"`
	MediaKey    *string        `json:"-" db:"media_key"`
	Email       string         `json:"email" db:"author_email"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
	Likes       int            `json:"likes" db:"likes"`
	LikedUsers  pq.StringArray `json:"likedUsers" db:"liked_users"`
	Comments    []Comment      `json:"comments" db:"-"`
}

type Comment struct {
	CommentID string    `json:"id" db:"comment_id"`
	PostID    string    `json:"postId" db:"post_id"`
	UserID    string    `json:"userId" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Text      string    `json:"text" db:"text"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// HasLiked reports whether identity is in the liked set.
func (p *Post) HasLiked(identity string) bool {
	for _, u := range p.LikedUsers {
		if u == identity {
			return true
		}
	}
	return false
}
