package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorial"
	"memorial/internal/config"
	"memorial/internal/database"
	"memorial/internal/session"
	"memorial/internal/submissions"
	"memorial/pkg/cache"
	"memorial/pkg/imageproc"
	"memorial/pkg/logger"
	"memorial/pkg/storage"
)

const testPassword = "open sesame"

type harness struct {
	t        *testing.T
	srv      *httptest.Server
	server   *Server
	svc      *submissions.Service
	store    *storage.Local
	approval atomic.Bool
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	logger.SetOutput(io.Discard, io.Discard)
	gateDelay = 0

	dir := t.TempDir()
	conf := config.Default()
	conf.Security.SubmissionPassword = testPassword
	conf.Site.Title = "Remembering Jane"
	conf.Site.ContactEmail = "family@example.com"
	if mutate != nil {
		mutate(conf)
	}

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "test.db")}, "test")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	store, err := storage.NewLocal(filepath.Join(dir, "media"), "/media/")
	require.NoError(t, err)

	pages := cache.New(cache.Options{Enabled: true})
	svc := submissions.NewService(submissions.Options{
		DB:       db,
		Storage:  store,
		Images:   imageproc.Options{MaxDimension: 300, Quality: 80},
		OnChange: pages.Purge,
	})

	h := &harness{t: t, svc: svc, store: store}
	server, err := New(Options{
		Config:          conf,
		Submissions:     svc,
		Sessions:        session.NewManager(session.Options{Secret: "test-secret"}),
		Pages:           pages,
		Assets:          memorial.WebAssets,
		Media:           store.Handler("/media/"),
		RequireApproval: h.approval.Load,
	})
	require.NoError(t, err)

	h.server = server
	h.srv = httptest.NewServer(server.Routes())
	t.Cleanup(h.srv.Close)
	return h
}

type client struct {
	h *harness
	c *http.Client
}

func (h *harness) client() *client {
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	return &client{h: h, c: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(method, path, contentType string, body io.Reader) *http.Response {
	c.h.t.Helper()
	req, err := http.NewRequest(method, c.h.srv.URL+path, body)
	require.NoError(c.h.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.c.Do(req)
	require.NoError(c.h.t, err)
	c.h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(http.MethodGet, path, "", nil)
}

func (c *client) postForm(path string, form url.Values) *http.Response {
	return c.do(http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *client) postJSON(path, body string) *http.Response {
	return c.do(http.MethodPost, path, "application/json", strings.NewReader(body))
}

func (c *client) unlock() {
	c.h.t.Helper()
	resp := c.postForm("/submit/password/?next=/submit/", url.Values{"password": {testPassword}})
	require.Equal(c.h.t, http.StatusSeeOther, resp.StatusCode)
}

// startDraft follows /submit/ and returns the draft id it redirects to.
func (c *client) startDraft() uint {
	c.h.t.Helper()
	resp := c.get("/submit/")
	require.Equal(c.h.t, http.StatusFound, resp.StatusCode)
	var id uint
	_, err := fmt.Sscanf(resp.Header.Get("Location"), "/edit/%d/", &id)
	require.NoError(c.h.t, err)
	return id
}

func (c *client) upload(id uint, field string, data []byte) *http.Response {
	c.h.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "photo.jpg")
	require.NoError(c.h.t, err)
	fw.Write(data)
	require.NoError(c.h.t, mw.Close())
	return c.do(http.MethodPost, fmt.Sprintf("/edit/%d/upload_image/", id), mw.FormDataContentType(), &body)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestHealthAndStatic(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	resp := c.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeJSON(t, resp)["status"])

	resp = c.get("/static/css/site.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGatedRoutesRedirectToPassword(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	for _, path := range []string{"/submit/", "/edit/1/"} {
		resp := c.get(path)
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/submit/password/", loc.Path)
		assert.Equal(t, path, loc.Query().Get("next"))
	}

	resp := c.upload(1, "file", jpegBytes(t, 10, 10))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestPasswordGate(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	resp := c.get("/submit/password/?next=/submit/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `name="password"`)

	resp = c.postForm("/submit/password/?next=/submit/", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Incorrect password")

	resp = c.get("/submit/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/submit/password/"))

	resp = c.postForm("/submit/password/?next=/edit/7/", url.Values{"password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/edit/7/", resp.Header.Get("Location"))

	id := c.startDraft()
	assert.NotZero(t, id)
}

func TestPasswordGateRejectsForeignNext(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	resp := c.postForm("/submit/password/?next=//evil.example.com/", url.Values{"password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/submit/", resp.Header.Get("Location"))
}

func TestPasswordGateRateLimit(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	var last *http.Response
	for i := 0; i < 11; i++ {
		last = c.postForm("/submit/password/", url.Values{"password": {"guess"}})
	}
	assert.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	assert.Equal(t, "auth/rate_limit_exceeded", decodeJSON(t, last)["code"])
}

func TestPasswordGateIgnoresForwardedFor(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	limited := 0
	for i := 0; i < 20; i++ {
		req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/submit/password/",
			strings.NewReader(url.Values{"password": {"guess"}}.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		resp, err := c.c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.GreaterOrEqual(t, limited, 9)
}

func TestPasswordGateTrustedProxy(t *testing.T) {
	h := newHarness(t, func(conf *config.Config) {
		conf.Security.TrustedProxies = []string{"127.0.0.1", "::1"}
	})
	c := h.client()

	post := func(client string) int {
		req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/submit/password/",
			strings.NewReader(url.Values{"password": {"guess"}}.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", client)
		resp, err := c.c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, post("198.51.100.7"))
	}
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.7"))
	// A different client behind the same proxy has its own bucket.
	assert.Equal(t, http.StatusOK, post("198.51.100.8"))
}

func TestJaneDoeEndToEnd(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	resp := c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	home := readBody(t, resp)
	assert.Contains(t, home, "Remembering Jane")
	assert.NotContains(t, home, "She loved gardening")

	c.unlock()
	id := c.startDraft()

	resp = c.get(fmt.Sprintf("/edit/%d/", id))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.upload(id, "file", jpegBytes(t, 600, 300))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	up := decodeJSON(t, resp)
	assert.Equal(t, "success", up["status"])
	imageID := uint(up["imageId"].(float64))
	assert.Equal(t, fmt.Sprintf("/edit/%d/delete_image/?image=%d", id, imageID), up["removeLink"])
	assert.True(t, strings.HasPrefix(up["url"].(string), "/media/images/"))

	resp = c.get(strings.TrimPrefix(up["url"].(string), h.srv.URL))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.postForm(fmt.Sprintf("/edit/%d/", id), url.Values{
		"name":         {"Jane Doe"},
		"text":         {"She loved gardening"},
		"link_id":      {""},
		"link_url":     {""},
		"link_caption": {""},
		"send":         {"1"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	sub, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, sub.SubmittedAt)
	require.Len(t, sub.Images, 1)
	assert.Equal(t, 300, sub.Images[0].Width)

	resp = c.get("/")
	home = readBody(t, resp)
	assert.Contains(t, home, "Jane Doe")
	assert.Contains(t, home, "She loved gardening")
	assert.Contains(t, home, ">JD<")

	// The binding is gone, a new visit starts a fresh draft.
	next := c.startDraft()
	assert.NotEqual(t, id, next)

	resp = c.get(fmt.Sprintf("/edit/%d/", id))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestEditorSaveAndValidation(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()
	c.unlock()
	id := c.startDraft()
	editor := fmt.Sprintf("/edit/%d/", id)

	resp := c.postForm(editor, url.Values{
		"text":         {"Roses every spring"},
		"link_id":      {""},
		"link_url":     {"https://example.com/album"},
		"link_caption": {"Garden album"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, editor+"?saved=1", resp.Header.Get("Location"))

	resp = c.get(editor + "?saved=1")
	page := readBody(t, resp)
	assert.Contains(t, page, "Your draft has been saved.")
	assert.Contains(t, page, "Roses every spring")
	assert.Contains(t, page, "Garden album")

	resp = c.postForm(editor, url.Values{"text": {"Roses every spring"}, "send": {"1"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Name is required!")

	resp = c.postForm(editor, url.Values{"name": {"Sam"}, "send": {"1"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please upload images or add text to submit.")

	sub, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, sub.IsDraft())
	assert.Equal(t, "Sam", sub.Name)

	resp = c.postForm(editor, url.Values{"name": {strings.Repeat("x", 201)}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "at most 200 characters")
}

func TestForeignSessionCannotTouchDraft(t *testing.T) {
	h := newHarness(t, nil)
	alice, bob := h.client(), h.client()
	alice.unlock()
	bob.unlock()

	aliceID := alice.startDraft()
	bobID := bob.startDraft()
	require.NotEqual(t, aliceID, bobID)

	resp := alice.upload(aliceID, "files[]", jpegBytes(t, 20, 20))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imageID := uint(decodeJSON(t, resp)["imageId"].(float64))

	resp = bob.get(fmt.Sprintf("/edit/%d/", aliceID))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/submit/", resp.Header.Get("Location"))

	resp = bob.postForm(fmt.Sprintf("/edit/%d/", aliceID), url.Values{"name": {"Mallory"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = bob.upload(aliceID, "file", jpegBytes(t, 20, 20))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "draft/not_owner", decodeJSON(t, resp)["code"])

	resp = bob.postForm(fmt.Sprintf("/edit/%d/delete_image/?image=%d", bobID, imageID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = bob.postJSON(fmt.Sprintf("/edit/%d/reorder_images/", aliceID), fmt.Sprintf("[%d]", imageID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = bob.postForm(fmt.Sprintf("/edit/%d/delete/", aliceID), nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	sub, err := h.svc.Get(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Empty(t, sub.Name)
	assert.Len(t, sub.Images, 1)

	// Bob still owns his own draft.
	resp = bob.get(fmt.Sprintf("/edit/%d/", bobID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteImage(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()
	c.unlock()
	id := c.startDraft()

	resp := c.upload(id, "file", jpegBytes(t, 30, 30))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	imageID := uint(decodeJSON(t, resp)["imageId"].(float64))

	resp = c.do(http.MethodDelete, fmt.Sprintf("/edit/%d/delete_image/?image=%d", id, imageID), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeJSON(t, resp)["status"])

	sub, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, sub.Images)

	// Unknown ids are a silent no-op.
	resp = c.postForm(fmt.Sprintf("/edit/%d/delete_image/?image=999", id), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.postForm(fmt.Sprintf("/edit/%d/delete_image/?image=abc", id), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsBadInput(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Media.MaxUploadSize = "2KB" })
	c := h.client()
	c.unlock()
	id := c.startDraft()

	resp := c.upload(id, "file", []byte("GIF? no, just text pretending"))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, "Not an Image", decodeJSON(t, resp)["message"])

	resp = c.upload(id, "file", bytes.Repeat([]byte{0xff}, 8<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = c.upload(id, "other", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReorder(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()
	c.unlock()
	id := c.startDraft()

	var ids []uint
	for i := 0; i < 3; i++ {
		resp := c.upload(id, "file", jpegBytes(t, 10+i, 10))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		ids = append(ids, uint(decodeJSON(t, resp)["imageId"].(float64)))
	}

	path := fmt.Sprintf("/edit/%d/reorder_images/", id)
	resp := c.postJSON(path, `{"not":"a list"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "request/bad_json", decodeJSON(t, resp)["code"])

	resp = c.postJSON(path, "["+strings.Repeat("1,", 600)+"1]")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.postJSON(path, fmt.Sprintf("[%d,%d,%d]", ids[2], ids[0], ids[1]))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sub, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, sub.Images, 3)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint{sub.Images[0].ID, sub.Images[1].ID, sub.Images[2].ID})

	resp = c.postJSON(fmt.Sprintf("/edit/%d/reorder_links/", id), "[]")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteOwnDraft(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()
	c.unlock()
	id := c.startDraft()

	resp := c.upload(id, "file", jpegBytes(t, 10, 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.postForm(fmt.Sprintf("/edit/%d/delete/", id), nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, err := h.svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, submissions.ErrNotFound)

	fresh, err := h.svc.Get(context.Background(), c.startDraft())
	require.NoError(t, err)
	assert.Empty(t, fresh.Images)
}

func TestListingModerationAndPaging(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Site.PageSize = 1 })
	ctx := context.Background()

	submit := func(name string) uint {
		c := h.client()
		c.unlock()
		id := c.startDraft()
		resp := c.postForm(fmt.Sprintf("/edit/%d/", id), url.Values{"name": {name}, "text": {"A story by " + name}, "send": {"1"}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		return id
	}
	first := submit("Ada Lovelace")
	submit("Grace Hopper")

	visitor := h.client()
	page1 := readBody(t, visitor.get("/"))
	assert.Contains(t, page1, "Grace Hopper")
	assert.NotContains(t, page1, "Ada Lovelace")
	assert.Contains(t, page1, "/?page=2")

	page2 := readBody(t, visitor.get("/?page=2"))
	assert.Contains(t, page2, "Ada Lovelace")

	assert.Equal(t, http.StatusNotFound, visitor.get("/?page=3").StatusCode)
	assert.Equal(t, http.StatusNotFound, visitor.get("/?page=abc").StatusCode)

	h.approval.Store(true)
	page1 = readBody(t, visitor.get("/"))
	assert.NotContains(t, page1, "Grace Hopper")
	assert.NotContains(t, page1, "Ada Lovelace")

	_, err := h.svc.Accept(ctx, first, "tester")
	require.NoError(t, err)
	page1 = readBody(t, visitor.get("/"))
	assert.Contains(t, page1, "Ada Lovelace")

	h.approval.Store(false)
	page1 = readBody(t, visitor.get("/"))
	assert.Contains(t, page1, "Grace Hopper")
}

func TestListingETag(t *testing.T) {
	h := newHarness(t, nil)
	c := h.client()

	resp := c.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp, err = c.c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestListingSurvivesCanceledLeader(t *testing.T) {
	h := newHarness(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.server.ListHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Remembering Jane")
}

func TestParseDraftForm(t *testing.T) {
	form := parseDraftForm(url.Values{
		"text":         {"t"},
		"name":         {"n"},
		"link_id":      {"4", "", "x"},
		"link_url":     {"https://a.example", "https://b.example", "https://c.example"},
		"link_caption": {"A", "B"},
	})

	require.Len(t, form.Links, 3)
	assert.Equal(t, submissions.LinkInput{ID: 4, URL: "https://a.example", Caption: "A"}, form.Links[0])
	assert.Equal(t, submissions.LinkInput{URL: "https://b.example", Caption: "B"}, form.Links[1])
	assert.Equal(t, submissions.LinkInput{URL: "https://c.example"}, form.Links[2])
}

func TestBuildSite(t *testing.T) {
	conf := config.Default()
	conf.Site.ContactEmail = "family@example.com"
	conf.Site.BackgroundImage = "images/bg (1).jpg"
	conf.Site.FooterText = `Photos by <a href="https://example.com">friends</a><script>x()</script>`

	site := buildSite(conf)
	assert.Equal(t, "family", site.ContactUser)
	assert.Equal(t, "example.com", site.ContactDomain)
	assert.Equal(t, "/static/images/person.png", site.PersonImage)
	assert.Contains(t, string(site.HeaderStyle), "--header-start: rgb(102,126,234)")
	assert.Equal(t, "background-image: url('/static/images/bg%20%281%29.jpg');", string(site.BodyStyle))
	assert.Contains(t, string(site.FooterText), "friends</a>")
	assert.NotContains(t, string(site.FooterText), "script")
}
