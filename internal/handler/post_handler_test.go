package handler_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"miniblog/internal/middleware"
	"miniblog/internal/model"
	"miniblog/internal/pkg"
	"miniblog/internal/repository/mysql"
	redisrepo "miniblog/internal/repository/redis"
	"miniblog/internal/router"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// newTestApp wires the real router against an in-memory database and a
// miniredis instance.
func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.User{}, &model.Group{}, &model.Post{}, &model.Comment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	mysql.DB = db

	mr := miniredis.RunT(t)
	redisrepo.Client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	return router.InitRouter(router.Config{MediaDir: t.TempDir()})
}

func seedUser(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Password: "x", Email: username + "@example.com"}
	if err := mysql.DB.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedGroup(t *testing.T, slug string) *model.Group {
	t.Helper()
	group := &model.Group{Title: slug, Slug: slug, Description: "test group"}
	if err := mysql.DB.Create(group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return group
}

func seedPost(t *testing.T, author *model.User, group *model.Group, text string, at time.Time) *model.Post {
	t.Helper()
	post := &model.Post{Text: text, AuthorID: author.ID, CreatedAt: at}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := mysql.DB.Create(post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

// loginCookie fabricates a live session the way the login handler does.
func loginCookie(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()
	token, err := pkg.GenerateSessionToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	sessions := &redisrepo.SessionRepository{}
	if err := sessions.AddToken(user.ID, token); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: token}
}

func doGet(app *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func doForm(app *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func countPosts(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := mysql.DB.Model(&model.Post{}).Count(&n).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	return n
}

func TestGroupListingSecondPage(t *testing.T) {
	app := newTestApp(t)
	author := seedUser(t, "leo")
	group := seedGroup(t, "test")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		seedPost(t, author, group, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	w := doGet(app, "/group/test/?page=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.Count(w.Body.String(), "<article>"); got != 3 {
		t.Errorf("page 2 shows %d posts, want 3", got)
	}

	w = doGet(app, "/group/test/?page=1", nil)
	if got := strings.Count(w.Body.String(), "<article>"); got != 10 {
		t.Errorf("page 1 shows %d posts, want 10", got)
	}
}

func TestIndexNewestFirst(t *testing.T) {
	app := newTestApp(t)
	author := seedUser(t, "leo")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedPost(t, author, nil, "older post", base)
	seedPost(t, author, nil, "newer post", base.Add(time.Hour))

	body := doGet(app, "/", nil).Body.String()
	newer := strings.Index(body, "newer post")
	older := strings.Index(body, "older post")
	if newer < 0 || older < 0 {
		t.Fatalf("posts missing from index:\n%s", body)
	}
	if newer > older {
		t.Errorf("newer post rendered after older post")
	}
}

func TestGroupNotFound(t *testing.T) {
	app := newTestApp(t)
	if w := doGet(app, "/group/missing/", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProfileNotFound(t *testing.T) {
	app := newTestApp(t)
	if w := doGet(app, "/profile/nobody/", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPostDetailNotFound(t *testing.T) {
	app := newTestApp(t)
	if w := doGet(app, "/posts/9999/", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPostDetailTitlePreview(t *testing.T) {
	app := newTestApp(t)
	author := seedUser(t, "leo")
	text := strings.Repeat("abcde", 10) // 50 chars
	post := seedPost(t, author, nil, text, time.Now().UTC())

	body := doGet(app, fmt.Sprintf("/posts/%d/", post.ID), nil).Body.String()
	preview := text[:30]
	if !strings.Contains(body, "<h1>"+preview+"</h1>") {
		t.Errorf("title preview %q missing from detail page", preview)
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	app := newTestApp(t)

	w := doGet(app, "/create/", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/login/?next=/create/" {
		t.Errorf("Location = %q, want /auth/login/?next=/create/", loc)
	}
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	seedGroup(t, "cats")
	cookie := loginCookie(t, leo)

	w := doForm(app, "/create/", url.Values{"text": {"hello world"}, "group": {"cats"}}, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/profile/leo/" {
		t.Errorf("Location = %q, want /profile/leo/", loc)
	}

	if n := countPosts(t); n != 1 {
		t.Fatalf("post count = %d, want 1", n)
	}
	var post model.Post
	if err := mysql.DB.Preload("Group").First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.AuthorID != leo.ID {
		t.Errorf("author = %d, want %d", post.AuthorID, leo.ID)
	}
	if post.Group == nil || post.Group.Slug != "cats" {
		t.Errorf("group = %+v, want cats", post.Group)
	}
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	cookie := loginCookie(t, leo)

	tests := []struct {
		name string
		form url.Values
	}{
		{"empty text", url.Values{"text": {"  "}}},
		{"unknown group", url.Values{"text": {"fine"}, "group": {"nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doForm(app, "/create/", tt.form, cookie)
			// the form re-renders with inline errors, no redirect
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), "error") {
				t.Errorf("expected inline error in re-rendered form")
			}
			if n := countPosts(t); n != 0 {
				t.Errorf("post count = %d, want 0", n)
			}
		})
	}
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	cookie := loginCookie(t, leo)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("text", "post with picture"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := mw.CreateFormFile("image", "pic.png")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte("png bytes")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/profile/leo/" {
		t.Fatalf("status=%d Location=%q, want 302 to /profile/leo/", w.Code, w.Header().Get("Location"))
	}
	var post model.Post
	if err := mysql.DB.First(&post).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if !strings.HasPrefix(post.Image, "/media/") || !strings.HasSuffix(post.Image, "pic.png") {
		t.Errorf("image path = %q, want a /media/ path ending in pic.png", post.Image)
	}
}

func TestCreatePostBrokenMultipart(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	cookie := loginCookie(t, leo)

	req := httptest.NewRequest(http.MethodPost, "/create/",
		strings.NewReader("this is not a multipart body"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for an unparseable upload", w.Code)
	}
	if n := countPosts(t); n != 0 {
		t.Errorf("post count = %d, want 0", n)
	}
}

func TestEditByNonAuthor(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	mia := seedUser(t, "mia")
	post := seedPost(t, leo, nil, "original text", time.Now().UTC())
	detail := fmt.Sprintf("/posts/%d/", post.ID)
	cookie := loginCookie(t, mia)

	// the edit form never shows for someone else's post
	w := doGet(app, detail+"edit/", cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != detail {
		t.Errorf("GET edit: status=%d Location=%q, want 302 to %s", w.Code, w.Header().Get("Location"), detail)
	}

	w = doForm(app, detail+"edit/", url.Values{"text": {"hijacked"}}, cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != detail {
		t.Errorf("POST edit: status=%d Location=%q, want 302 to %s", w.Code, w.Header().Get("Location"), detail)
	}

	var reloaded model.Post
	if err := mysql.DB.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Text != "original text" {
		t.Errorf("text = %q, non-author edit must not modify the post", reloaded.Text)
	}
}

func TestEditByAuthor(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	cats := seedGroup(t, "cats")
	post := seedPost(t, leo, nil, "original text", time.Now().UTC())
	other := seedPost(t, leo, nil, "untouched", time.Now().UTC())
	detail := fmt.Sprintf("/posts/%d/", post.ID)
	cookie := loginCookie(t, leo)

	w := doForm(app, detail+"edit/", url.Values{"text": {"updated text"}, "group": {"cats"}}, cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != detail {
		t.Fatalf("status=%d Location=%q, want 302 to %s", w.Code, w.Header().Get("Location"), detail)
	}

	var reloaded model.Post
	if err := mysql.DB.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Text != "updated text" {
		t.Errorf("text = %q, want updated text", reloaded.Text)
	}
	if reloaded.GroupID == nil || *reloaded.GroupID != cats.ID {
		t.Errorf("group = %v, want %d", reloaded.GroupID, cats.ID)
	}
	if reloaded.AuthorID != leo.ID {
		t.Errorf("author reassigned to %d", reloaded.AuthorID)
	}

	var untouched model.Post
	if err := mysql.DB.First(&untouched, other.ID).Error; err != nil {
		t.Fatalf("reload other: %v", err)
	}
	if untouched.Text != "untouched" {
		t.Errorf("edit leaked into another post: %q", untouched.Text)
	}
	if n := countPosts(t); n != 2 {
		t.Errorf("post count = %d, want 2", n)
	}
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	post := seedPost(t, leo, nil, "a post", time.Now().UTC())
	detail := fmt.Sprintf("/posts/%d/", post.ID)
	cookie := loginCookie(t, leo)

	// empty text: redirect back, nothing persisted
	w := doForm(app, detail+"comment/", url.Values{"text": {"   "}}, cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != detail {
		t.Errorf("empty comment: status=%d Location=%q", w.Code, w.Header().Get("Location"))
	}
	var n int64
	mysql.DB.Model(&model.Comment{}).Count(&n)
	if n != 0 {
		t.Fatalf("comment count = %d, want 0", n)
	}

	for _, text := range []string{"first!", "second!"} {
		w = doForm(app, detail+"comment/", url.Values{"text": {text}}, cookie)
		if w.Code != http.StatusFound || w.Header().Get("Location") != detail {
			t.Fatalf("comment %q: status=%d Location=%q", text, w.Code, w.Header().Get("Location"))
		}
	}

	var comments []model.Comment
	if err := mysql.DB.Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		t.Fatalf("load comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comment count = %d, want 2", len(comments))
	}
	if comments[0].Text != "first!" || comments[1].Text != "second!" {
		t.Errorf("comments out of order: %q then %q", comments[0].Text, comments[1].Text)
	}

	// and they render on the detail page in that order
	body := doGet(app, detail, nil).Body.String()
	if !(strings.Index(body, "first!") < strings.Index(body, "second!")) {
		t.Errorf("detail page renders comments out of order")
	}
}

func TestCommentRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	leo := seedUser(t, "leo")
	post := seedPost(t, leo, nil, "a post", time.Now().UTC())
	path := fmt.Sprintf("/posts/%d/comment/", post.ID)

	w := doForm(app, path, url.Values{"text": {"anon"}}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/login/?next="+path {
		t.Errorf("Location = %q", loc)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	app := newTestApp(t)
	if w := doGet(app, "/definitely/not/a/page/", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
