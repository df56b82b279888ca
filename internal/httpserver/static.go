package httpserver

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	indexFile = "index.html"
	apiPrefix = "/insight"
)

// StaticHandler отдаёт файлы собранного фронтенда, а на прочие GET-маршруты
// (кроме API) index.html для клиентского роутинга SPA.
// Всё, что не подошло, уходит в next.
type StaticHandler struct {
	files fs.FS
	next  http.Handler
}

func NewStaticHandler(files fs.FS, next http.Handler) *StaticHandler {
	return &StaticHandler{files: files, next: next}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.next.ServeHTTP(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexFile
	}
	if h.serveFile(w, r, name) || h.serveFile(w, r, path.Join(name, indexFile)) {
		return
	}

	if r.Method != http.MethodGet || isAPIPath(r.URL.Path) {
		h.next.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	if !h.serveFile(w, r, indexFile) {
		w.Header().Del("Cache-Control")
		h.next.ServeHTTP(w, r)
	}
}

func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	f, err := h.files.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return false
		}
		content = bytes.NewReader(data)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return true
}

// isAPIPath: всё, что начинается с /insight, включая /insights и /insight-history.
func isAPIPath(p string) bool {
	return strings.HasPrefix(p, apiPrefix)
}
