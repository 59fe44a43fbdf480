package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestSessionValues(t *testing.T) {
	s := newSession()
	require.True(t, s.IsEmpty())
	require.Equal(t, "Guest", s.GetString("username", "Guest"))

	s.Set("username", "john_doe")
	require.True(t, s.Modified())
	require.Equal(t, "john_doe", s.GetString("username", "Guest"))

	require.True(t, s.Delete("username"))
	require.False(t, s.Delete("username"), "deleting a missing key is not an error")
	require.True(t, s.IsEmpty())
}

func TestSessionLoginAndCycleKey(t *testing.T) {
	s := loadedSession("oldkey", map[string]any{"cart": "3"})
	s.Login(42)

	require.Empty(t, s.Key(), "key is rotated on login")
	require.Equal(t, "oldkey", s.oldKey)
	require.Equal(t, "3", s.GetString("cart", ""))
	id, ok := s.AuthUserID()
	require.True(t, ok)
	require.Equal(t, uint(42), id)

	s.Flush()
	require.True(t, s.IsEmpty())
	require.Equal(t, "oldkey", s.oldKey)
	_, ok = s.AuthUserID()
	require.False(t, ok)
}

func TestNewKeyFormat(t *testing.T) {
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), newKey())
	require.NotEqual(t, newKey(), newKey())
}

type harness struct {
	mr     *miniredis.Miniredis
	store  *Store
	router *gin.Engine
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewStore(rdb)

	r := gin.New()
	r.Use(Middleware(store, opts))
	r.GET("/set", func(c *gin.Context) {
		Default(c).Set("username", c.DefaultQuery("username", "john_doe"))
		c.String(http.StatusOK, "Session data set")
	})
	r.GET("/get", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, "+Default(c).GetString("username", "Guest"))
	})
	r.GET("/delete", func(c *gin.Context) {
		Default(c).Delete("username")
		c.Status(http.StatusNoContent)
	})
	r.GET("/login", func(c *gin.Context) {
		Default(c).Login(7)
		c.String(http.StatusOK, "ok")
	})
	r.GET("/flush", func(c *gin.Context) {
		Default(c).Flush()
		c.String(http.StatusOK, "bye")
	})
	r.GET("/boom", func(c *gin.Context) {
		Default(c).Set("username", "x")
		c.String(http.StatusInternalServerError, "boom")
	})
	return &harness{mr: mr, store: store, router: r}
}

func (h *harness) do(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionid" {
			return c
		}
	}
	return nil
}

var defaultOpts = Options{CookieName: "sessionid", Age: 1209600 * time.Second}

func TestMiddlewareSetGetDelete(t *testing.T) {
	h := newHarness(t, defaultOpts)

	w := h.do(t, "/get", nil)
	require.Equal(t, "Hello, Guest", w.Body.String())
	require.Nil(t, sessionCookie(t, w), "untouched sessions set no cookie")

	w = h.do(t, "/set", nil)
	require.Equal(t, "Session data set", w.Body.String())
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 1209600, cookie.MaxAge)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.True(t, h.mr.Exists("session:"+cookie.Value))
	require.Equal(t, 1209600*time.Second, h.mr.TTL("session:"+cookie.Value))

	w = h.do(t, "/get", cookie)
	require.Equal(t, "Hello, john_doe", w.Body.String())

	w = h.do(t, "/delete", cookie)
	require.Equal(t, http.StatusNoContent, w.Code)
	cleared := sessionCookie(t, w)
	require.NotNil(t, cleared)
	require.Less(t, cleared.MaxAge, 0, "empty session expires the cookie")
	require.False(t, h.mr.Exists("session:"+cookie.Value))

	w = h.do(t, "/get", cookie)
	require.Equal(t, "Hello, Guest", w.Body.String())
}

func TestMiddlewareDeleteWithoutSessionIsHarmless(t *testing.T) {
	h := newHarness(t, defaultOpts)
	w := h.do(t, "/delete", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Nil(t, sessionCookie(t, w))
}

func TestMiddlewareUnknownKeyStartsFresh(t *testing.T) {
	h := newHarness(t, defaultOpts)
	w := h.do(t, "/set?username=ann", &http.Cookie{Name: "sessionid", Value: "forged"})
	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	require.NotEqual(t, "forged", cookie.Value)
}

func TestMiddlewareLoginRotatesKey(t *testing.T) {
	h := newHarness(t, defaultOpts)
	first := sessionCookie(t, h.do(t, "/set", nil))

	rotated := sessionCookie(t, h.do(t, "/login", first))
	require.NotNil(t, rotated)
	require.NotEqual(t, first.Value, rotated.Value)
	require.False(t, h.mr.Exists("session:"+first.Value))

	data, found, err := h.store.Load(context.Background(), rotated.Value)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "john_doe", data["username"])
	require.Equal(t, "7", data[UserIDKey])
}

func TestMiddlewareFlush(t *testing.T) {
	h := newHarness(t, defaultOpts)
	cookie := sessionCookie(t, h.do(t, "/login", nil))

	w := h.do(t, "/flush", cookie)
	require.Equal(t, "bye", w.Body.String())
	require.Less(t, sessionCookie(t, w).MaxAge, 0)
	require.False(t, h.mr.Exists("session:"+cookie.Value))
}

func TestMiddlewareSkipsSaveOnServerError(t *testing.T) {
	h := newHarness(t, defaultOpts)
	w := h.do(t, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Nil(t, sessionCookie(t, w))
	require.Empty(t, h.mr.Keys())
}

func TestMiddlewareExpireAtBrowserClose(t *testing.T) {
	opts := defaultOpts
	opts.ExpireAtBrowserClose = true
	h := newHarness(t, opts)

	cookie := sessionCookie(t, h.do(t, "/set", nil))
	require.NotNil(t, cookie)
	require.Zero(t, cookie.MaxAge)
}

func TestMiddlewareSaveEveryRequestRefreshesCookie(t *testing.T) {
	opts := defaultOpts
	opts.SaveEveryRequest = true
	h := newHarness(t, opts)

	cookie := sessionCookie(t, h.do(t, "/set", nil))
	h.mr.FastForward(time.Hour)

	w := h.do(t, "/get", cookie)
	require.Equal(t, "Hello, john_doe", w.Body.String())
	require.NotNil(t, sessionCookie(t, w))
	require.Equal(t, opts.Age, h.mr.TTL("session:"+cookie.Value))
}

func TestStoreList(t *testing.T) {
	h := newHarness(t, defaultOpts)
	cookie := sessionCookie(t, h.do(t, "/set?username=zoe", nil))

	entries, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, cookie.Value, entries[0].Key)
	require.Equal(t, "zoe", entries[0].Data["username"])
	require.EqualValues(t, 1209600, entries[0].ExpiresIn)
}
