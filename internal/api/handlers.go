package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MaxPageSize caps the limit query parameter.
const MaxPageSize = 100

var errInvalidPage = errors.New("invalid page")

// respondError writes the HTTP response for an error returned by a service.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{service.NonFieldErrors: []string{err.Error()}})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, errInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Anything else cannot name a row.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page and limit. A malformed page is a 404 like a page past the end.
func pageParams(c *gin.Context, defaultSize int) (types.PageParams, bool) {
	p := types.PageParams{Page: 1, Limit: defaultSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, errInvalidPage)
			return p, false
		}
		p.Page = n
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p, true
}

// respondPage fills the navigation links and writes the page, or a 404 when
// the requested page lies past the last one.
func respondPage[T any](c *gin.Context, params types.PageParams, page *types.Page[T]) {
	if params.Page > 1 && int64(params.Offset()) >= page.Count {
		respondError(c, errInvalidPage)
		return
	}

	if int64(params.Offset()+params.Limit) < page.Count {
		next := pageURL(c, params.Page+1)
		page.Next = &next
	}
	if params.Page > 1 {
		prev := pageURL(c, params.Page-1)
		page.Previous = &prev
	}
	c.JSON(http.StatusOK, page)
}

// pageURL is the absolute URL of the current request with page replaced.
// The first page is linked without a page parameter.
func pageURL(c *gin.Context, page int) string {
	scheme := requestScheme(c)

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// withOrigin lets the services build absolute media URLs for this request.
func withOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := requestScheme(c) + "://" + c.Request.Host
		c.Request = c.Request.WithContext(storage.WithOrigin(c.Request.Context(), origin))
		c.Next()
	}
}

// handle registers a route with and without a trailing slash.
func handle(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path, handlers...)
	g.Handle(method, path+"/", handlers...)
}

func queryFlag(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true" || v == "True"
}
