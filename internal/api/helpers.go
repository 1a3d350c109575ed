package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/feniks1632/foodgram-project-react/internal/service"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// abortWithError maps service errors onto the response taxonomy:
// validation and conflicts -> 400, missing entities -> 404, forbidden
// mutations -> 403, everything else -> 500.
func abortWithError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
	default:
		log.Printf("Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseIDParam reads a numeric path parameter; a malformed id behaves like
// a missing entity.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

type pagination struct {
	Page  int
	Limit int
}

func parsePagination(c *gin.Context) pagination {
	p := pagination{Page: 1, Limit: defaultPageSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
		if p.Limit > maxPageSize {
			p.Limit = maxPageSize
		}
	}
	return p
}

func (p pagination) offset() int {
	return (p.Page - 1) * p.Limit
}

// newPageResponse builds the pagination envelope with absolute next and
// previous page URLs derived from the current request.
func newPageResponse(c *gin.Context, count int64, p pagination, results interface{}) PageResponse {
	resp := PageResponse{Count: count, Results: results}
	if int64(p.offset()+p.Limit) < count {
		next := pageURL(c, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(c, p.Page-1)
		resp.Previous = &previous
	}
	return resp
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	q, _ := url.ParseQuery(u.RawQuery)
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, u.RequestURI())
}
