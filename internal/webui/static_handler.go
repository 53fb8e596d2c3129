package webui

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var allowedStaticExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true, ".json": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true,
}

func (webUI *WebUI) staticDir() string {
	if webUI.StaticDir != "" {
		return webUI.StaticDir
	}
	return "public"
}

// staticHandler serves a single file from StaticDir. Subdirectories and
// anything outside the extension whitelist are not served.
func (webUI *WebUI) staticHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/static/")

	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}
	if !allowedStaticExtensions[strings.ToLower(filepath.Ext(name))] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	root, err := filepath.Abs(webUI.staticDir())
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	path := filepath.Join(root, name)
	if rel, err := filepath.Rel(root, path); err != nil || strings.HasPrefix(rel, "..") {
		slog.Warn("path traversal attempt blocked", "path", path)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	stat, err := os.Stat(path)
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}
