package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/campuscoders/campus-cli/internal/testserver"
	"github.com/campuscoders/campus-cli/pkg/client"
	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*testserver.Server, *API) {
	t.Helper()
	srv := testserver.New()
	t.Cleanup(srv.Close)

	c, err := client.New(client.Config{BaseURL: srv.URL, Timeout: 5 * time.Second, CacheTTL: time.Minute})
	require.NoError(t, err)
	return srv, New(c)
}

func loggedIn(t *testing.T, username string) (*testserver.Server, *API) {
	t.Helper()
	srv, a := setup(t)
	_, err := a.Login(context.Background(), username, "secret1")
	require.NoError(t, err)
	return srv, a
}

func TestLogin(t *testing.T) {
	_, a := setup(t)
	ctx := context.Background()

	_, err := a.Login(ctx, "alice", "wrong")
	assert.True(t, clierrors.IsServer(err))
	assert.EqualError(t, err, "Invalid username or password")

	user, err := a.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.ProfileCompleted)

	me, err := a.GetMyProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestLoginAcceptsFlatUser(t *testing.T) {
	srv, a := setup(t)
	srv.Override(http.MethodPost, "/users/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"username": "alice", "role": "user"}})
	})

	user, err := a.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "user", user.Role)
}

func TestGetMyProfileRejectsMalformedBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html", http.StatusOK, "<html>oops</html>"},
		{"empty object", http.StatusOK, "{}"},
		{"not confirmed", http.StatusOK, `{"data":{"username":"alice"}}`},
		{"null data", http.StatusOK, `{"success":true,"data":null}`},
		{"no username", http.StatusOK, `{"success":true,"data":{"role":"user"}}`},
		{"data is a list", http.StatusOK, `{"success":true,"data":[1,2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, a := setup(t)
			srv.Override(http.MethodGet, "/users/getMyProfile", func(c *gin.Context) {
				c.Data(tt.status, "application/json", []byte(tt.body))
			})

			user, err := a.GetMyProfile(context.Background())
			assert.Nil(t, user)
			assert.True(t, clierrors.IsServer(err), "got %v", err)
		})
	}
}

func TestGetMyProfileWithoutSession(t *testing.T) {
	_, a := setup(t)

	_, err := a.GetMyProfile(context.Background())
	assert.True(t, clierrors.IsAuth(err))
}

func TestRegister(t *testing.T) {
	_, a := setup(t)

	user, err := a.Register(context.Background(), RegisterRequest{
		FullName: "Carol Danvers",
		Username: "carol",
		Email:    "carol@campus.edu",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.False(t, user.ProfileCompleted)

	_, err = a.Register(context.Background(), RegisterRequest{Username: "carol", Password: "secret1"})
	assert.EqualError(t, err, "Username already taken")
}

func TestFeedPaging(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()
	srv.AddPost("bob", "first")
	srv.AddPost("bob", "second")
	srv.AddPost("alice", "third")

	page, err := a.GetFeed(ctx, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	assert.Equal(t, "third", page.Posts[0].Caption)
	assert.Equal(t, "alice", page.Posts[0].Author.Username)
	assert.Equal(t, "c1", page.NextCursor)

	page, err = a.GetFeed(ctx, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "first", page.Posts[0].Caption)

	page, err = a.GetFeed(ctx, page.NextCursor)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Empty(t, page.NextCursor)

	reqs := srv.Requests()
	assert.Equal(t, "cursor=c1", reqs[len(reqs)-2].Query)
}

func TestLikeUnlike(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()
	id := srv.AddPost("bob", "hello")

	resp, err := a.LikePost(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.Envelope.Confirmed())
	assert.True(t, srv.IsLiked(id, "alice"))

	_, err = a.LikePost(ctx, id)
	assert.True(t, clierrors.IsServer(err))

	page, err := a.GetFeed(ctx, "")
	require.NoError(t, err)
	assert.True(t, page.Posts[0].IsLiked)
	assert.Equal(t, 1, page.Posts[0].LikesCount)

	_, err = a.UnlikePost(ctx, id)
	require.NoError(t, err)
	assert.False(t, srv.IsLiked(id, "alice"))
}

func TestComments(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()
	id := srv.AddPost("bob", "hello")

	comments, err := a.GetComments(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, a.AddComment(ctx, id, "nice shot"))

	comments, err = a.GetComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice shot", comments[0].Text)
	assert.Equal(t, "alice", comments[0].Author.Username)
}

func TestCreatePostAndListing(t *testing.T) {
	_, a := loggedIn(t, "alice")
	ctx := context.Background()

	img := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0600))

	post, err := a.CreatePost(ctx, "at the library", []string{img})
	require.NoError(t, err)
	assert.Equal(t, "at the library", post.Caption)
	require.Len(t, post.Media, 1)
	assert.Equal(t, "/uploads/pic.png", post.Media[0].URL)

	mine, err := a.GetMyPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := a.GetUserPosts(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestSearchUsers(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()

	users, err := a.SearchUsers(ctx, "bo", 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	users, err = a.SearchUsers(ctx, "zzz", 5)
	require.NoError(t, err)
	assert.Empty(t, users)

	reqs := srv.Requests()
	assert.Equal(t, "limit=5&q=zzz", reqs[len(reqs)-1].Query)
}

func TestFollowFlow(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()

	following, err := a.IsFollowing(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, following)

	_, err = a.Follow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, srv.Follows("alice", "bob"))

	followers, err := a.GetFollowers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	_, err = a.Unfollow(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, srv.Follows("alice", "bob"))

	_, err = a.Follow(ctx, "alice")
	assert.EqualError(t, err, "You cannot follow yourself")
}

func TestCachedListings(t *testing.T) {
	srv, a := loggedIn(t, "alice")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		users, err := a.GetAllUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 3)
	}
	assert.Equal(t, 1, srv.Count("/users/getAllUser"))

	for i := 0; i < 2; i++ {
		_, err := a.GetUserProfile(ctx, "bob")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.Count("/users/getUserProfile/bob"))
}

func TestProfileSetup(t *testing.T) {
	_, a := loggedIn(t, "bob")
	ctx := context.Background()

	avatar := filepath.Join(t.TempDir(), "me.jpg")
	require.NoError(t, os.WriteFile(avatar, []byte{0xff, 0xd8, 0xff, 0xe0}, 0600))
	require.NoError(t, a.SetAvatar(ctx, avatar))

	user, err := a.SetupProfile(ctx, ProfileSetupRequest{Gender: "male", Course: "Physics", Year: "3", Bio: "hi"})
	require.NoError(t, err)
	assert.True(t, user.ProfileCompleted)
	assert.Equal(t, "/uploads/me.jpg", user.Avatar)
}

func TestAdmin(t *testing.T) {
	_, a := setup(t)
	ctx := context.Background()

	_, err := a.AdminLogin(ctx, "alice", "secret1")
	assert.True(t, clierrors.IsAuth(err))

	admin, err := a.AdminLogin(ctx, "root", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)

	code, err := a.GenerateInviteCode(ctx)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	stats, err := a.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActiveCodes)

	codes, err := a.AdminInviteCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, code, codes[0].Code)
	assert.Equal(t, "root", codes[0].CreatedBy.Username)

	users, err := a.AdminUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	require.NoError(t, a.AdminLogout(ctx))
	_, err = a.GetMyProfile(ctx)
	assert.True(t, clierrors.IsAuth(err))
}

func TestDecodeList(t *testing.T) {
	var users []User

	require.NoError(t, decodeList([]byte(`[{"username":"a"}]`), "users", &users))
	assert.Len(t, users, 1)

	users = nil
	require.NoError(t, decodeList([]byte(`{"users":[{"username":"a"},{"username":"b"}]}`), "users", &users))
	assert.Len(t, users, 2)

	users = nil
	require.NoError(t, decodeList([]byte(`null`), "users", &users))
	require.NoError(t, decodeList(nil, "users", &users))
	require.NoError(t, decodeList([]byte(`{"other":1}`), "users", &users))
	assert.Nil(t, users)

	assert.Error(t, decodeList([]byte(`"nope"`), "users", &users))
}
