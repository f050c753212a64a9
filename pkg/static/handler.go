package static

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// CacheMode selects the Cache-Control policy.
type CacheMode int

const (
	// CacheNone disables caching (development).
	CacheNone CacheMode = iota
	// CacheProduction caches fingerprinted files for a year and others for an hour.
	CacheProduction
)

// HandlerConfig configures Handler.
type HandlerConfig struct {
	// Prefix is the URL prefix stripped before lookup (e.g., "/assets/").
	Prefix string

	Cache CacheMode

	// Headers are added to every successful response.
	Headers map[string]string

	Logger *slog.Logger
}

// Handler serves objects from src.
func Handler(src Source, config HandlerConfig) http.Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "static")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		rel, ok := RelPath(r.URL.Path, config.Prefix)
		if !ok {
			http.NotFound(w, r)
			return
		}

		obj, err := src.Open(r.Context(), rel)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logger.Error("asset open failed", "name", rel, "error", err)
			http.Error(w, "Bad Gateway", http.StatusBadGateway)
			return
		}
		defer obj.Body.Close()

		h := w.Header()
		contentType := obj.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(path.Ext(rel))
		}
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		if obj.Size >= 0 {
			h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		if !obj.LastModified.IsZero() {
			h.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
		}
		if obj.ETag != "" {
			h.Set("ETag", obj.ETag)
		}
		applyCacheHeaders(h, config.Cache, rel)
		for key, value := range config.Headers {
			h.Set(key, value)
		}

		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, obj.Body); err != nil {
			logger.Debug("asset copy interrupted", "name", rel, "error", err)
		}
	})
}

// RelPath strips prefix from urlPath and returns a clean relative name.
// It rejects traversal, absolute paths, backslashes and NUL bytes.
func RelPath(urlPath, prefix string) (string, bool) {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, prefix)
	if rel == "" {
		return "", false
	}

	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." || seg == "" {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean != rel {
		return "", false
	}
	return clean, true
}

func applyCacheHeaders(h http.Header, mode CacheMode, name string) {
	switch mode {
	case CacheNone:
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheProduction:
		if isFingerprinted(name) {
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			h.Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports names like "app.a1b2c3d4.css".
func isFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
