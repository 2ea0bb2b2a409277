package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NotFoundPage renders the 404 template; wired both as the router's
// NoRoute fallback and for unresolvable slugs/usernames/ids.
func NotFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{"Path": c.Request.URL.Path})
}

// serverError logs the underlying failure and renders the generic 500
// page. Persistence failures are fatal for the request, no retry.
func serverError(c *gin.Context, err error) {
	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	c.HTML(http.StatusInternalServerError, "500.html", gin.H{"Path": c.Request.URL.Path})
}
