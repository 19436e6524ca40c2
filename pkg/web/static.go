package web

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/JaimeStill/segmenter/pkg/routes"
)

// PublicFile returns a handler that serves subdir/filename from fsys. The
// file is read once; a file missing at construction is served as 404.
func PublicFile(fsys fs.FS, subdir, filename string) http.HandlerFunc {
	data, err := fs.ReadFile(fsys, path.Join(subdir, filename))
	if err != nil {
		return http.NotFound
	}
	loaded := time.Now()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeContent(w, r, filename, loaded, bytes.NewReader(data))
	}
}

// PublicFileRoutes maps each file to a GET route at /<file>.
func PublicFileRoutes(fsys fs.FS, subdir string, files ...string) []routes.Route {
	list := make([]routes.Route, 0, len(files))
	for _, file := range files {
		list = append(list, routes.Route{
			Method:  http.MethodGet,
			Pattern: "/" + file,
			Handler: PublicFile(fsys, subdir, file),
		})
	}
	return list
}
