// Package testserver runs an in-memory campus backend for tests. It speaks
// the same routes and envelopes as the real service, keeps its state in
// memory, and lets a test override any route or inspect the requests it saw.
package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	apiPrefix     = "/api/v1"
	sessionCookie = "token"
)

type User struct {
	ID               string    `json:"_id"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName,omitempty"`
	Email            string    `json:"email,omitempty"`
	Password         string    `json:"-"`
	Avatar           string    `json:"avatar,omitempty"`
	Role             string    `json:"role"`
	Gender           string    `json:"gender,omitempty"`
	Course           string    `json:"course,omitempty"`
	Year             string    `json:"year,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	ProfileCompleted bool      `json:"profileCompleted"`
	FollowersCount   int       `json:"followersCount"`
	FollowingCount   int       `json:"followingCount"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Media struct {
	URL string `json:"mediaURL"`
}

type Post struct {
	ID            string    `json:"_id"`
	Author        string    `json:"-"`
	Media         []Media   `json:"media"`
	Caption       string    `json:"caption"`
	CreatedAt     time.Time `json:"createdAt"`
	LikedBy       []string  `json:"-"`
	CommentsCount int       `json:"commentsCount"`
}

type Comment struct {
	ID        string    `json:"_id"`
	Author    string    `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type InviteCode struct {
	Code      string
	CreatedBy string
	UsedBy    string
	CreatedAt time.Time
}

// Request is one request the server received, with the API prefix removed
// from Path.
type Request struct {
	Method string
	Path   string
	Query  string
}

// Server is a fake backend bound to a local port.
type Server struct {
	*httptest.Server

	// PageSize is the number of posts per feed page.
	PageSize int

	mu        sync.Mutex
	users     map[string]*User
	posts     []*Post
	comments  map[string][]Comment
	follows   map[string]map[string]bool // follower -> followee
	codes     []InviteCode
	requests  []Request
	overrides map[string]gin.HandlerFunc
}

// New starts a server seeded with three users: alice (profile complete),
// bob (profile incomplete) and root (admin). Every password is "secret1".
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		PageSize:  2,
		users:     make(map[string]*User),
		comments:  make(map[string][]Comment),
		follows:   make(map[string]map[string]bool),
		overrides: make(map[string]gin.HandlerFunc),
	}
	s.addUser(&User{Username: "alice", FullName: "Alice Liddell", Email: "alice@campus.edu", ProfileCompleted: true, Course: "CS", Year: "2"})
	s.addUser(&User{Username: "bob", FullName: "Bob Stone", Email: "bob@campus.edu"})
	s.addUser(&User{Username: "root", Email: "root@campus.edu", Role: "admin", ProfileCompleted: true})

	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) addUser(u *User) {
	u.ID = uuid.NewString()
	if u.Password == "" {
		u.Password = "secret1"
	}
	if u.Role == "" {
		u.Role = "user"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.Username] = u
}

// AddPost appends a post authored by username and returns its ID.
func (s *Server) AddPost(username, caption string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Post{ID: uuid.NewString(), Author: username, Caption: caption, CreatedAt: time.Now(), Media: []Media{}}
	s.posts = append(s.posts, p)
	return p.ID
}

// Override replaces the handler for method and route, where route is the
// gin pattern without the API prefix, e.g. "/post/postLike/:id".
func (s *Server) Override(method, route string, h gin.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+apiPrefix+route] = h
}

// Requests returns every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit path, ignoring the query.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// IsLiked reports whether username currently likes postID.
func (s *Server) IsLiked(postID, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			return contains(p.LikedBy, username)
		}
	}
	return false
}

// Follows reports whether follower follows followee.
func (s *Server) Follows(follower, followee string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follows[follower][followee]
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record, s.override)

	v1 := r.Group(apiPrefix)

	users := v1.Group("/users")
	users.POST("/login", s.login)
	users.POST("/register", s.register)
	users.POST("/logout", s.logout)
	users.GET("/getMyProfile", s.auth, s.myProfile)
	users.GET("/search", s.auth, s.search)
	users.GET("/getAllUser", s.auth, s.allUsers)
	users.GET("/getUserProfile/:username", s.auth, s.userProfile)
	users.GET("/isFollowing/:username", s.auth, s.isFollowing)
	users.GET("/follow/:username", s.auth, s.follow(true))
	users.GET("/unfollow/:username", s.auth, s.follow(false))
	users.GET("/getfollowers/:username", s.auth, s.followList(true))
	users.GET("/getfollowing/:username", s.auth, s.followList(false))
	users.POST("/setAvatar", s.auth, s.setAvatar)
	users.POST("/profilemanagement", s.auth, s.profileManagement)

	post := v1.Group("/post")
	post.GET("/getfeed", s.auth, s.feed)
	post.GET("/postLike/:id", s.auth, s.like(true))
	post.GET("/postUnlike/:id", s.auth, s.like(false))
	post.GET("/getAllComments/:id", s.auth, s.listComments)
	post.POST("/comment/:id", s.auth, s.addComment)
	post.POST("/createPost", s.auth, s.createPost)
	post.GET("/getMyPosts", s.auth, s.myPosts)
	post.GET("/getUserPost/:username", s.auth, s.userPosts)

	admin := v1.Group("/admin")
	admin.POST("/login", s.adminLogin)
	admin.POST("/logout", s.logout)
	admin.GET("/stats", s.auth, s.requireAdmin, s.stats)
	admin.GET("/users", s.auth, s.requireAdmin, s.adminUsers)
	admin.GET("/invite-codes", s.auth, s.requireAdmin, s.inviteCodes)
	admin.POST("/generateCode", s.auth, s.requireAdmin, s.generateCode)

	return r
}

// === middleware ===

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Path:   strings.TrimPrefix(c.Request.URL.Path, apiPrefix),
		Query:  c.Request.URL.RawQuery,
	})
	s.mu.Unlock()
	c.Next()
}

func (s *Server) override(c *gin.Context) {
	s.mu.Lock()
	h, ok := s.overrides[c.Request.Method+" "+c.FullPath()]
	s.mu.Unlock()
	if ok {
		h(c)
		c.Abort()
	}
}

func (s *Server) auth(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.mu.Lock()
	u, ok := s.users[token]
	s.mu.Unlock()
	if !ok {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.Set("user", u)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if current(c).Role != "admin" {
		fail(c, http.StatusForbidden, "Admin access required")
		return
	}
	c.Next()
}

func current(c *gin.Context) *User {
	return c.MustGet("user").(*User)
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// === auth ===

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	u, found := s.users[req.Username]
	s.mu.Unlock()
	if !found || u.Password != req.Password {
		fail(c, http.StatusBadRequest, "Invalid username or password")
		return
	}

	c.SetCookie(sessionCookie, u.Username, 3600, "/", "", false, true)
	ok(c, gin.H{"user": u})
}

func (s *Server) adminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	u, found := s.users[req.Username]
	s.mu.Unlock()
	if !found || u.Password != req.Password || u.Role != "admin" {
		fail(c, http.StatusUnauthorized, "Invalid admin credentials")
		return
	}

	c.SetCookie(sessionCookie, u.Username, 3600, "/", "", false, true)
	ok(c, gin.H{"user": u})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		FullName   string `json:"fullName"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		InviteCode string `json:"inviteCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[req.Username]; taken {
		fail(c, http.StatusConflict, "Username already taken")
		return
	}
	if len(s.codes) > 0 {
		valid := false
		for i := range s.codes {
			if s.codes[i].Code == req.InviteCode && s.codes[i].UsedBy == "" {
				s.codes[i].UsedBy = req.Username
				valid = true
				break
			}
		}
		if !valid {
			fail(c, http.StatusBadRequest, "Invalid invite code")
			return
		}
	}

	u := &User{FullName: req.FullName, Username: req.Username, Email: req.Email, Password: req.Password}
	s.addUser(u)
	c.SetCookie(sessionCookie, u.Username, 3600, "/", "", false, true)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": u})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (s *Server) myProfile(c *gin.Context) {
	ok(c, current(c))
}

// === users ===

func (s *Server) search(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	s.mu.Lock()
	var found []*User
	for _, u := range s.sortedUsers() {
		if len(found) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.FullName), q) {
			found = append(found, u)
		}
	}
	s.mu.Unlock()

	if found == nil {
		found = []*User{}
	}
	ok(c, gin.H{"users": found})
}

func (s *Server) allUsers(c *gin.Context) {
	s.mu.Lock()
	users := s.sortedUsers()
	s.mu.Unlock()
	ok(c, gin.H{"users": users})
}

// sortedUsers must be called with mu held.
func (s *Server) sortedUsers() []*User {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*User, 0, len(names))
	for _, n := range names {
		out = append(out, s.users[n])
	}
	return out
}

func (s *Server) lookup(c *gin.Context) (*User, bool) {
	s.mu.Lock()
	u, found := s.users[c.Param("username")]
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusNotFound, "User not found")
	}
	return u, found
}

func (s *Server) userProfile(c *gin.Context) {
	if u, found := s.lookup(c); found {
		ok(c, u)
	}
}

func (s *Server) isFollowing(c *gin.Context) {
	target, found := s.lookup(c)
	if !found {
		return
	}
	ok(c, gin.H{"isFollowing": s.Follows(current(c).Username, target.Username)})
}

func (s *Server) follow(on bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, found := s.lookup(c)
		if !found {
			return
		}
		me := current(c)
		if me.Username == target.Username {
			fail(c, http.StatusBadRequest, "You cannot follow yourself")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.follows[me.Username] == nil {
			s.follows[me.Username] = make(map[string]bool)
		}
		was := s.follows[me.Username][target.Username]
		switch {
		case on && !was:
			s.follows[me.Username][target.Username] = true
			me.FollowingCount++
			target.FollowersCount++
		case !on && was:
			delete(s.follows[me.Username], target.Username)
			me.FollowingCount--
			target.FollowersCount--
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (s *Server) followList(followers bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, found := s.lookup(c)
		if !found {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		list := []*User{}
		for _, u := range s.sortedUsers() {
			if followers && s.follows[u.Username][target.Username] {
				list = append(list, u)
			}
			if !followers && s.follows[target.Username][u.Username] {
				list = append(list, u)
			}
		}
		ok(c, list)
	}
}

func (s *Server) setAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "Avatar file is required")
		return
	}
	me := current(c)
	s.mu.Lock()
	me.Avatar = "/uploads/" + fh.Filename
	s.mu.Unlock()
	ok(c, me)
}

func (s *Server) profileManagement(c *gin.Context) {
	var req struct {
		Gender string `json:"gender"`
		Course string `json:"course"`
		Year   string `json:"year"`
		Bio    string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	me := current(c)
	s.mu.Lock()
	me.Gender, me.Course, me.Year, me.Bio = req.Gender, req.Course, req.Year, req.Bio
	me.ProfileCompleted = true
	s.mu.Unlock()
	ok(c, me)
}

// === posts ===

// postView must be called with mu held.
func (s *Server) postView(p *Post, viewer string) gin.H {
	return gin.H{
		"_id":           p.ID,
		"user":          s.users[p.Author],
		"media":         p.Media,
		"caption":       p.Caption,
		"createdAt":     p.CreatedAt,
		"likesCount":    len(p.LikedBy),
		"commentsCount": len(s.comments[p.ID]),
		"isLiked":       contains(p.LikedBy, viewer),
	}
}

// feed pages newest-first. Cursor "cN" starts at page N.
func (s *Server) feed(c *gin.Context) {
	page := 0
	if cursor := c.Query("cursor"); cursor != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(cursor, "c"))
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "Invalid cursor")
			return
		}
		page = n
	}

	me := current(c).Username
	s.mu.Lock()
	defer s.mu.Unlock()

	start := page * s.PageSize
	posts := []gin.H{}
	for i := len(s.posts) - 1 - start; i >= 0 && len(posts) < s.PageSize; i-- {
		posts = append(posts, s.postView(s.posts[i], me))
	}

	var next interface{}
	if len(posts) > 0 {
		next = fmt.Sprintf("c%d", page+1)
	}
	ok(c, gin.H{"posts": posts, "nextCursor": next})
}

func (s *Server) findPost(c *gin.Context) (*Post, bool) {
	id := c.Param("id")
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	fail(c, http.StatusNotFound, "Post not found")
	return nil, false
}

func (s *Server) like(on bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		me := current(c).Username
		s.mu.Lock()
		defer s.mu.Unlock()

		p, found := s.findPost(c)
		if !found {
			return
		}
		liked := contains(p.LikedBy, me)
		switch {
		case on && liked:
			fail(c, http.StatusBadRequest, "Post already liked")
			return
		case !on && !liked:
			fail(c, http.StatusBadRequest, "Post not liked")
			return
		case on:
			p.LikedBy = append(p.LikedBy, me)
		default:
			p.LikedBy = remove(p.LikedBy, me)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "likesCount": len(p.LikedBy)})
	}
}

func (s *Server) listComments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.findPost(c)
	if !found {
		return
	}
	out := []gin.H{}
	for _, cm := range s.comments[p.ID] {
		out = append(out, gin.H{"_id": cm.ID, "userId": s.users[cm.Author], "text": cm.Text, "createdAt": cm.CreatedAt})
	}
	ok(c, out)
}

func (s *Server) addComment(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, "Comment text is required")
		return
	}

	me := current(c).Username
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.findPost(c)
	if !found {
		return
	}
	cm := Comment{ID: uuid.NewString(), Author: me, Text: req.Text, CreatedAt: time.Now()}
	s.comments[p.ID] = append(s.comments[p.ID], cm)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"_id": cm.ID, "text": cm.Text}})
}

func (s *Server) createPost(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid form")
		return
	}
	caption := c.PostForm("caption")
	files := form.File["media"]
	if strings.TrimSpace(caption) == "" && len(files) == 0 {
		fail(c, http.StatusBadRequest, "Caption or media is required")
		return
	}

	me := current(c).Username
	p := &Post{ID: uuid.NewString(), Author: me, Caption: caption, CreatedAt: time.Now(), Media: []Media{}}
	for _, fh := range files {
		p.Media = append(p.Media, Media{URL: "/uploads/" + fh.Filename})
	}

	s.mu.Lock()
	s.posts = append(s.posts, p)
	view := s.postView(p, me)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": view})
}

func (s *Server) postsBy(username, viewer string) []gin.H {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gin.H{}
	for i := len(s.posts) - 1; i >= 0; i-- {
		if s.posts[i].Author == username {
			out = append(out, s.postView(s.posts[i], viewer))
		}
	}
	return out
}

func (s *Server) myPosts(c *gin.Context) {
	me := current(c).Username
	ok(c, gin.H{"posts": s.postsBy(me, me)})
}

func (s *Server) userPosts(c *gin.Context) {
	target, found := s.lookup(c)
	if !found {
		return
	}
	ok(c, s.postsBy(target.Username, current(c).Username))
}

// === admin ===

func (s *Server) stats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active, used, today int
	for _, code := range s.codes {
		if code.UsedBy == "" {
			active++
		} else {
			used++
		}
	}
	midnight := time.Now().Truncate(24 * time.Hour)
	for _, u := range s.users {
		if !u.CreatedAt.Before(midnight) {
			today++
		}
	}
	ok(c, gin.H{"totalUsers": len(s.users), "activeCodes": active, "usedCodes": used, "newToday": today})
}

func (s *Server) adminUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok(c, s.sortedUsers())
}

func (s *Server) inviteCodes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []gin.H{}
	for _, code := range s.codes {
		entry := gin.H{
			"code":      code.Code,
			"createdBy": gin.H{"username": code.CreatedBy},
			"isUsed":    code.UsedBy != "",
			"createdAt": code.CreatedAt,
		}
		if code.UsedBy != "" {
			entry["usedBy"] = gin.H{"username": code.UsedBy}
		}
		out = append(out, entry)
	}
	ok(c, out)
}

func (s *Server) generateCode(c *gin.Context) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	s.mu.Lock()
	s.codes = append(s.codes, InviteCode{Code: code, CreatedBy: current(c).Username, CreatedAt: time.Now()})
	s.mu.Unlock()
	ok(c, gin.H{"code": code})
}

// === helpers ===

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
