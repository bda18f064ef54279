package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/dgallion1/lawref/internal/parser"
	"github.com/dgallion1/lawref/internal/preview"
)

type articleResponse struct {
	Path string `json:"path"`
	*doctree.Document
	Outline []*doctree.OutlineNode `json:"outline,omitempty"`
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}

	doc, err := s.library.Open(r.Context(), path)
	if err != nil {
		s.writeError(w, "open article", err)
		return
	}

	resp := articleResponse{Path: path, Document: doc}
	if r.URL.Query().Get("outline") == "true" {
		resp.Outline = doctree.BuildOutline(doc.Toc)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreview renders the article as an HTML page. Failures render the
// notice page instead of JSON so the result can be shown in a web view.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	code := http.StatusOK

	doc, err := s.library.Open(r.Context(), path)
	if err == nil {
		err = preview.RenderDocument(&buf, doc)
	}
	if err != nil {
		code = statusFor(err)
		if code >= 500 {
			s.log.Error("preview failed", "path", path, "error", err)
		}
		buf.Reset()
		msg := fmt.Sprintf("无法预览此文件: %s", noticeReason(err))
		if rerr := preview.RenderNotice(&buf, parser.TitleFromFilename(path), parser.Format(path), msg); rerr != nil {
			jsonError(w, rerr.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func noticeReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return "不支持的文件格式"
	case errors.Is(err, parser.ErrNoText):
		return "未能提取到文本内容"
	default:
		return err.Error()
	}
}
