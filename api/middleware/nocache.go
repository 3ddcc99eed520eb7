package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// noCacheHeaders instruct the browser and every intermediary to never cache
// the response and always revalidate.
var noCacheHeaders = map[string]string{
	"Cache-Control":     "no-store, no-cache, must-revalidate, proxy-revalidate",
	"Pragma":            "no-cache",
	"Expires":           "0",
	"Surrogate-Control": "no-store",
}

// NoCache returns middleware that attaches the no-cache headers to responses
// for files whose extension is in exts. A request for "/" is judged by the
// extension of the entry file it resolves to, and a directory path ending in
// "/" by its index.html.
func NoCache(entry string, exts []string) gin.HandlerFunc {
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		extSet[e] = struct{}{}
	}

	return func(c *gin.Context) {
		name := c.Param("filepath")
		switch {
		case name == "" || name == "/":
			name = entry
		case strings.HasSuffix(name, "/"):
			name += "index.html"
		}

		if _, ok := extSet[strings.ToLower(path.Ext(name))]; ok {
			h := c.Writer.Header()
			for k, v := range noCacheHeaders {
				h.Set(k, v)
			}
		}
		c.Next()
	}
}
