package api

import "time"

// Auth Request Types
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"inviteCode,omitempty"`
}

type ProfileSetupRequest struct {
	Gender string `json:"gender"`
	Course string `json:"course"`
	Year   string `json:"year"`
	Bio    string `json:"bio,omitempty"`
}

// User is the shape shared by profiles, search results and list entries.
type User struct {
	ID               string    `json:"_id"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName,omitempty"`
	Email            string    `json:"email,omitempty"`
	Avatar           string    `json:"avatar,omitempty"`
	Role             string    `json:"role,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	Course           string    `json:"course,omitempty"`
	Year             string    `json:"year,omitempty"`
	ProfileCompleted bool      `json:"profileCompleted"`
	FollowersCount   int       `json:"followersCount"`
	FollowingCount   int       `json:"followingCount"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// DisplayName falls back to the username when no full name is set.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

type Media struct {
	URL string `json:"mediaURL"`
}

// Post Response Types
type Post struct {
	ID            string    `json:"_id"`
	Author        User      `json:"user"`
	Media         []Media   `json:"media"`
	Caption       string    `json:"caption"`
	CreatedAt     time.Time `json:"createdAt"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	IsLiked       bool      `json:"isLiked"`
}

// FeedPage is one cursor page of the home feed. An empty Posts slice means
// the feed is exhausted.
type FeedPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"nextCursor"`
}

type Comment struct {
	ID        string    `json:"_id"`
	Author    User      `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Admin Response Types
type AdminStats struct {
	TotalUsers  int `json:"totalUsers"`
	ActiveCodes int `json:"activeCodes"`
	UsedCodes   int `json:"usedCodes"`
	NewToday    int `json:"newToday"`
}

type InviteCode struct {
	Code      string    `json:"code"`
	CreatedBy *User     `json:"createdBy,omitempty"`
	UsedBy    *User     `json:"usedBy,omitempty"`
	IsUsed    bool      `json:"isUsed"`
	CreatedAt time.Time `json:"createdAt"`
}
