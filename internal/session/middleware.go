package session

import (
	"net/http" // Cookie attributes
	"sync"     // Commit once
	"time"     // Cookie age

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ContextKey is where Middleware stores the *Session in the gin context
const ContextKey = "session"

// Options mirror the session cookie settings
type Options struct {
	CookieName           string        // Cookie carrying the session key
	Age                  time.Duration // Cookie Max-Age and store TTL
	Secure               bool          // HTTPS only cookie
	SaveEveryRequest     bool          // Save even when unmodified
	ExpireAtBrowserClose bool          // Omit Max-Age
	Path                 string        // Cookie path, "/" when empty
	Domain               string        // Cookie domain
}

// Default returns the session of the current request. Middleware must be installed.
func Default(c *gin.Context) *Session {
	return c.MustGet(ContextKey).(*Session)
}

// Middleware loads the visitor's session and commits it before the response is written
func Middleware(store *Store, opts Options) gin.HandlerFunc {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := newSession()
		requestKey, _ := c.Cookie(opts.CookieName) // Empty when no cookie was sent
		if requestKey != "" {
			data, found, err := store.Load(ctx, requestKey)
			if err != nil {
				logrus.WithError(err).Warn("Session load failed, starting a new session")
			} else if found {
				sess = loadedSession(requestKey, data)
			}
		}
		c.Set(ContextKey, sess)

		w := &commitWriter{ResponseWriter: c.Writer}
		w.commit = func() { commit(c, store, opts, sess, requestKey, w.Status()) }
		c.Writer = w
		c.Next()
		w.commitOnce() // Handlers that wrote no body
	}
}

// commit persists the session and sets or clears the cookie
func commit(c *gin.Context, store *Store, opts Options, sess *Session, requestKey string, status int) {
	ctx := c.Request.Context()
	if sess.oldKey != "" {
		if err := store.Delete(ctx, sess.oldKey); err != nil {
			logrus.WithError(err).Warn("Failed to drop retired session")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	if sess.IsEmpty() {
		if requestKey == "" {
			return
		}
		if sess.key != "" {
			if err := store.Delete(ctx, sess.key); err != nil {
				logrus.WithError(err).Warn("Failed to delete empty session")
			}
		}
		c.SetCookie(opts.CookieName, "", -1, opts.Path, opts.Domain, opts.Secure, true) // Expire the cookie
		return
	}

	if !(sess.modified || opts.SaveEveryRequest) || status >= http.StatusInternalServerError {
		return
	}
	if sess.key == "" {
		sess.key = newKey()
	}
	if err := store.Save(ctx, sess.key, sess.data, opts.Age); err != nil {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path, // Request path
			"error": err.Error(),        // Error message
		}).Error("Session save failed")
		return
	}
	maxAge := int(opts.Age.Seconds())
	if opts.ExpireAtBrowserClose {
		maxAge = 0 // Browser-length cookie
	}
	c.SetCookie(opts.CookieName, sess.key, maxAge, opts.Path, opts.Domain, opts.Secure, true)
}

// commitWriter commits the session right before the first header or body byte goes out
type commitWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *commitWriter) commitOnce() {
	w.once.Do(w.commit)
}

func (w *commitWriter) WriteHeaderNow() {
	w.commitOnce()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) WriteString(s string) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.WriteString(s)
}

func (w *commitWriter) Flush() {
	w.commitOnce()
	w.ResponseWriter.Flush()
}
