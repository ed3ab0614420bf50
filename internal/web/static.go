package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

//go:embed assets/*
var assetsFS embed.FS

// mountStatic serves the embedded stylesheet and, when configured, extra
// files from the static directory.
func (s *Server) mountStatic() {
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		s.logger.Error("embedded assets unavailable", "error", err)
	} else {
		s.engine.StaticFS("/assets", http.FS(assets))
	}

	if s.opts.StaticDir == "" {
		return
	}
	info, err := os.Stat(s.opts.StaticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", s.opts.StaticDir, "error", err)
		return
	}
	s.engine.StaticFS("/static", gin.Dir(s.opts.StaticDir, false))

	favicon := filepath.Join(s.opts.StaticDir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}
