package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campuscoders/campus-cli/internal/testserver"
	"github.com/campuscoders/campus-cli/pkg/api"
	"github.com/campuscoders/campus-cli/pkg/client"
	"github.com/campuscoders/campus-cli/pkg/credentials"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/campuscoders/campus-cli/pkg/output"
	"github.com/campuscoders/campus-cli/pkg/prompter"
	"github.com/campuscoders/campus-cli/pkg/session"
	"github.com/campuscoders/campus-cli/pkg/storage"
	"github.com/campuscoders/campus-cli/pkg/tui"
	fcolor "github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite

	srv *testserver.Server
	env *Env
	out *bytes.Buffer
	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	fcolor.NoColor = true
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.srv = testserver.New()
	s.ctx = context.Background()
	s.out = &bytes.Buffer{}

	store, err := storage.Open("")
	s.Require().NoError(err)
	c, err := client.New(client.Config{BaseURL: s.srv.URL, Timeout: 5 * time.Second}, client.WithStorage(store))
	s.Require().NoError(err)

	a := api.New(c)
	snaps := &credentials.File{Path: filepath.Join(s.T().TempDir(), "session.json")}
	s.env = &Env{
		API:         a,
		Gate:        session.NewGate(session.Deps{Backend: a, Cookies: c, Snapshots: snaps}),
		Out:         output.New(s.out, output.FormatText),
		Prompt:      prompter.New(strings.NewReader(""), &bytes.Buffer{}),
		Snapshots:   snaps,
		SearchLimit: api.DefaultSearchLimit,
	}
}

func (s *ServiceSuite) TearDownTest() {
	s.srv.Close()
}

// input replaces what the prompter will read.
func (s *ServiceSuite) input(lines ...string) {
	s.env.Prompt = prompter.New(strings.NewReader(strings.Join(lines, "\n")+"\n"), &bytes.Buffer{})
}

func (s *ServiceSuite) login(username string) {
	_, err := NewAuthService(s.env).Login(s.ctx, LoginInput{Username: username, Password: "secret1"})
	s.Require().NoError(err)
	s.out.Reset()
}

func (s *ServiceSuite) TestLoginLandsOnFeed() {
	dest, err := NewAuthService(s.env).Login(s.ctx, LoginInput{Username: "alice", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal(session.DestFeed, dest)
	s.Contains(s.out.String(), "Logged in as @alice")

	saved, err := s.env.Snapshots.Load()
	s.Require().NoError(err)
	s.Equal("alice", saved.Username)
}

func (s *ServiceSuite) TestLoginPromptsForMissingFields() {
	s.input("bob", "secret1")
	dest, err := NewAuthService(s.env).Login(s.ctx, LoginInput{})
	s.Require().NoError(err)
	s.Equal(session.DestProfileSetup, dest)
	s.Contains(s.out.String(), "campus profile setup")
}

func (s *ServiceSuite) TestLoginWhenAlreadyLoggedIn() {
	s.login("alice")
	before := len(s.srv.Requests())

	dest, err := NewAuthService(s.env).Login(s.ctx, LoginInput{Username: "bob", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal(session.DestFeed, dest)
	s.Contains(s.out.String(), "Already logged in as @alice")
	s.Equal(0, s.countSince(before, "/users/login"))
}

func (s *ServiceSuite) TestLoginRejected() {
	_, err := NewAuthService(s.env).Login(s.ctx, LoginInput{Username: "alice", Password: "wrong"})
	s.True(clierrors.IsServer(err))
	s.EqualError(err, "Invalid username or password")
	s.Nil(s.env.Gate.Current())
}

func (s *ServiceSuite) TestRegister() {
	_, err := NewAuthService(s.env).Register(s.ctx, RegisterInput{
		FullName: "Carol Danvers", Username: "x", Email: "nope", Password: "123",
	})
	s.True(clierrors.IsValidation(err))
	for _, field := range []string{"username", "email", "password"} {
		s.Contains(clierrors.FormatError(err), field)
	}
	s.Equal(0, s.srv.Count("/users/register"))

	dest, err := NewAuthService(s.env).Register(s.ctx, RegisterInput{
		FullName: "Carol Danvers", Username: "carol", Email: "carol@campus.edu", Password: "secret1", InviteCode: "-",
	})
	s.Require().NoError(err)
	s.Equal(session.DestProfileSetup, dest)
	s.Contains(s.out.String(), "Account @carol created")
}

func (s *ServiceSuite) TestLogoutAndStatus() {
	auth := NewAuthService(s.env)
	s.login("alice")

	s.Require().NoError(auth.Status(s.ctx))
	s.Contains(s.out.String(), "Username: alice")

	s.Require().NoError(auth.Logout(s.ctx))
	s.Contains(s.out.String(), "Logged out")

	s.out.Reset()
	s.Require().NoError(auth.Status(s.ctx))
	s.Contains(s.out.String(), "Not logged in")
	saved, _ := s.env.Snapshots.Load()
	s.Nil(saved)
}

func (s *ServiceSuite) TestFeedNeedsLogin() {
	err := NewFeedService(s.env).ViewFeed(s.ctx, 1)
	s.True(clierrors.IsAuth(err))
}

func (s *ServiceSuite) TestFeedNeedsCompletedProfile() {
	s.login("bob")
	err := NewFeedService(s.env).ViewFeed(s.ctx, 1)
	s.True(clierrors.IsValidation(err))
	s.Contains(clierrors.FormatError(err), "campus profile setup")
}

func (s *ServiceSuite) TestBrowseChecksSessionFirst() {
	err := NewFeedService(s.env).Browse(s.ctx, tui.Options{})
	s.True(clierrors.IsAuth(err))

	s.login("bob")
	err = NewFeedService(s.env).Browse(s.ctx, tui.Options{})
	s.True(clierrors.IsValidation(err))
}

func (s *ServiceSuite) TestFeedPages() {
	for _, caption := range []string{"oldest", "middle", "newest"} {
		s.srv.AddPost("bob", caption)
	}
	s.login("alice")

	s.Require().NoError(NewFeedService(s.env).ViewFeed(s.ctx, 1))
	text := s.out.String()
	s.Contains(text, "newest")
	s.Contains(text, "middle")
	s.NotContains(text, "oldest")
	s.Contains(text, "Showing 2 posts")

	s.out.Reset()
	s.Require().NoError(NewFeedService(s.env).ViewFeed(s.ctx, 0))
	s.Contains(s.out.String(), "oldest")
	s.Contains(s.out.String(), "all caught up")
}

func (s *ServiceSuite) TestFeedStopsWhenCursorRunsOut() {
	s.login("alice")
	s.srv.Override(http.MethodGet, "/post/getfeed", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"posts":      []gin.H{{"_id": "p1", "caption": "only page", "user": gin.H{"username": "bob"}}},
			"nextCursor": nil,
		}})
	})

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.Require().NoError(NewFeedService(s.env).ViewFeed(ctx, 0))

	s.Equal(1, s.srv.Count("/post/getfeed"))
	s.Equal(1, strings.Count(s.out.String(), "only page"))
	s.Contains(s.out.String(), "all caught up")
}

func (s *ServiceSuite) TestFeedJSON() {
	s.srv.AddPost("bob", "hello")
	s.login("alice")
	s.env.Out = output.New(s.out, output.FormatJSON)

	s.Require().NoError(NewFeedService(s.env).ViewFeed(s.ctx, 0))
	s.True(strings.HasPrefix(strings.TrimSpace(s.out.String()), "["))
	s.Contains(s.out.String(), `"caption": "hello"`)
}

func (s *ServiceSuite) TestEmptyFeed() {
	s.login("alice")
	s.Require().NoError(NewFeedService(s.env).ViewFeed(s.ctx, 3))
	s.Contains(s.out.String(), "No posts in your feed yet")
	s.Equal(1, s.srv.Count("/post/getfeed"))
}

func (s *ServiceSuite) TestLikeUnlike() {
	id := s.srv.AddPost("bob", "hello")
	s.login("alice")
	posts := NewPostService(s.env)

	s.Require().NoError(posts.Like(s.ctx, id))
	s.True(s.srv.IsLiked(id, "alice"))
	s.Contains(s.out.String(), "Liked post "+id)

	// Liking twice is rejected by the backend and reported.
	err := posts.Like(s.ctx, id)
	s.True(clierrors.IsServer(err))
	s.EqualError(err, "Post already liked")

	s.Require().NoError(posts.Unlike(s.ctx, id))
	s.False(s.srv.IsLiked(id, "alice"))

	s.True(clierrors.IsValidation(posts.Like(s.ctx, " ")))
}

func (s *ServiceSuite) TestComments() {
	id := s.srv.AddPost("bob", "hello")
	s.login("alice")
	posts := NewPostService(s.env)

	s.Require().NoError(posts.Comments(s.ctx, id))
	s.Contains(s.out.String(), "No comments yet")

	s.True(clierrors.IsValidation(posts.Comment(s.ctx, id, "   ")))

	s.input("first!")
	s.Require().NoError(posts.Comment(s.ctx, id, ""))

	s.out.Reset()
	s.Require().NoError(posts.Comments(s.ctx, id))
	s.Contains(s.out.String(), "@alice")
	s.Contains(s.out.String(), "first!")
}

func (s *ServiceSuite) TestCreatePost() {
	s.login("alice")
	posts := NewPostService(s.env)

	s.True(clierrors.IsValidation(posts.Create(s.ctx, "", nil)))

	img := writePNG(s.T())
	s.Require().NoError(posts.Create(s.ctx, "sunset", []string{img}))
	s.Contains(s.out.String(), "Post created")
	s.Contains(s.out.String(), "Images: 1")

	s.out.Reset()
	s.Require().NoError(NewUserService(s.env).Posts(s.ctx, ""))
	s.Contains(s.out.String(), "sunset")
}

func (s *ServiceSuite) TestSearch() {
	s.login("alice")
	users := NewUserService(s.env)

	s.Require().NoError(users.Search(s.ctx, "bo"))
	s.Contains(s.out.String(), "@bob")
	s.Equal(1, s.srv.Count("/users/search"))

	s.out.Reset()
	s.Require().NoError(users.Search(s.ctx, "zzz"))
	s.Contains(s.out.String(), "No users found")

	s.out.Reset()
	s.Require().NoError(users.Search(s.ctx, "  "))
	s.Equal(2, s.srv.Count("/users/search"))
	s.Equal(1, s.srv.Count("/users/getAllUser"))
	s.Contains(s.out.String(), "@root")
}

func (s *ServiceSuite) TestFollowFlow() {
	s.login("alice")
	users := NewUserService(s.env)

	s.Require().NoError(users.Follow(s.ctx, "@bob"))
	s.True(s.srv.Follows("alice", "bob"))
	s.Contains(s.out.String(), "Following @bob")

	s.out.Reset()
	s.Require().NoError(users.Profile(s.ctx, "bob"))
	s.Contains(s.out.String(), "Following: true")

	s.out.Reset()
	s.Require().NoError(users.Following(s.ctx, ""))
	s.Contains(s.out.String(), "@bob")

	s.Require().NoError(users.Unfollow(s.ctx, "bob"))
	s.False(s.srv.Follows("alice", "bob"))

	s.True(clierrors.IsServer(users.Follow(s.ctx, "alice")))
}

func (s *ServiceSuite) TestProfileSetup() {
	s.login("bob")
	profile := NewProfileService(s.env)

	err := profile.Setup(s.ctx, SetupInput{Gender: "male", Course: "CS", Year: "2", Bio: strings.Repeat("x", 151)})
	s.True(clierrors.IsValidation(err))

	s.input("1", "Physics", "3")
	s.Require().NoError(profile.Setup(s.ctx, SetupInput{Bio: "hi"}))
	s.Contains(s.out.String(), "Profile saved")

	dest, err := s.env.Gate.Check(s.ctx)
	s.Require().NoError(err)
	s.Equal(session.DestFeed, dest)

	s.out.Reset()
	s.Require().NoError(profile.Me(s.ctx))
	s.Contains(s.out.String(), "Course: Physics")
	s.Contains(s.out.String(), "Gender: male")
}

func (s *ServiceSuite) TestAdmin() {
	admin := NewAdminService(s.env)

	s.True(clierrors.IsAuth(admin.Stats(s.ctx)))

	err := admin.Login(s.ctx, "alice", "secret1")
	s.True(clierrors.IsAuth(err))

	s.Require().NoError(admin.Login(s.ctx, "root", "secret1"))
	s.Require().NoError(admin.GenerateCode(s.ctx))
	s.Contains(s.out.String(), "Invite code generated")

	s.out.Reset()
	s.Require().NoError(admin.Stats(s.ctx))
	s.Contains(s.out.String(), "Total users: 3")
	s.Contains(s.out.String(), "Active invite codes: 1")

	s.out.Reset()
	s.Require().NoError(admin.Codes(s.ctx))
	s.Contains(s.out.String(), "active")
	s.Contains(s.out.String(), "@root")

	s.out.Reset()
	s.Require().NoError(admin.Users(s.ctx))
	s.Contains(s.out.String(), "alice@campus.edu")

	s.Require().NoError(admin.Logout(s.ctx))
	s.True(clierrors.IsAuth(admin.Stats(s.ctx)))
}

func (s *ServiceSuite) TestRegularUserIsNotAdmin() {
	s.login("alice")
	err := NewAdminService(s.env).Users(s.ctx)
	s.True(clierrors.IsAuth(err))
	s.EqualError(err, "Admin access required")
}

func (s *ServiceSuite) countSince(from int, path string) int {
	n := 0
	for _, r := range s.srv.Requests()[from:] {
		if r.Path == path {
			n++
		}
	}
	return n
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}
