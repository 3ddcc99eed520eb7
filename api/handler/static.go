package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// Static returns the handler for GET/HEAD /*filepath.
//
// "/" serves the entry file; any other path is served from root as-is, and
// a directory serves its index.html. Missing files, a missing root, and
// directories without an index.html all answer 404. Nothing is ever listed.
func Static(root, entry string) gin.HandlerFunc {
	fs := http.Dir(root)

	return func(c *gin.Context) {
		name := c.Param("filepath")
		if name == "" || name == "/" {
			name = path.Join("/", entry)
		}
		serveFile(c, fs, name)
	}
}

// serveFile writes name with http.ServeContent. http.FileServer would
// redirect "/index.html" to "./", so it is not used.
func serveFile(c *gin.Context, fs http.FileSystem, name string) {
	f, err := fs.Open(name)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if fi.IsDir() {
		// Relative links inside the index resolve against the directory.
		if p := c.Request.URL.Path; !strings.HasSuffix(p, "/") {
			target := p + "/"
			if q := c.Request.URL.RawQuery; q != "" {
				target += "?" + q
			}
			c.Redirect(http.StatusMovedPermanently, target)
			return
		}

		index, err := fs.Open(path.Join(name, "index.html"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		defer index.Close()

		ifi, err := index.Stat()
		if err != nil || ifi.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}
		f, fi = index, ifi
	}

	http.ServeContent(c.Writer, c.Request, fi.Name(), fi.ModTime(), f)
}
