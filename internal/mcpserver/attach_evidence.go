package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const maxEvidenceSize = 10 << 20 // 10 MB

// evidenceKind describes one accepted attachment extension.
type evidenceKind struct {
	declared []string // media types a data URI or server may announce
	sniffed  string   // what http.DetectContentType reports for real content
}

var evidenceKinds = map[string]evidenceKind{
	".pdf":  {declared: []string{"application/pdf"}, sniffed: "application/pdf"},
	".png":  {declared: []string{"image/png"}, sniffed: "image/png"},
	".jpg":  {declared: []string{"image/jpeg"}, sniffed: "image/jpeg"},
	".jpeg": {sniffed: "image/jpeg"},
	".gif":  {declared: []string{"image/gif"}, sniffed: "image/gif"},
	".txt":  {declared: []string{"text/plain"}, sniffed: "text/plain"},
	".csv":  {declared: []string{"text/csv"}, sniffed: "text/plain"},
	".json": {declared: []string{"application/json"}, sniffed: "text/plain"},
}

var allowedExtensionList = strings.Join(slices.Sorted(maps.Keys(evidenceKinds)), ", ")

var nameUnsafe =regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// evidence is a downloaded or decoded payload awaiting storage.
type evidence struct {
	data []byte
	ext  string // derived from the declared media type, may be empty
}

func (s *Server) attachEvidence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseID, err := req.RequireInt("case_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var ev evidence
	if strings.HasPrefix(source, "data:") {
		ev, err = parseDataURI(source)
	} else {
		ev, err = download(ctx, source)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := evidenceName(req.GetString("filename", ""), source, ev.ext)
	if err := ev.matches(strings.ToLower(filepath.Ext(name))); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	att, err := s.svc.UploadAttachment(ctx, int64(caseID), name, bytes.NewReader(ev.data))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(att)
}

// parseDataURI decodes a data:<mediatype>;base64,<payload> URI.
func parseDataURI(uri string) (evidence, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return evidence{}, fmt.Errorf("invalid data URI: missing comma separator")
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return evidence{}, fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return evidence{}, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	if len(data) > maxEvidenceSize {
		return evidence{}, fmt.Errorf("file too large: %d bytes (max %d)", len(data), maxEvidenceSize)
	}

	mediaType, _, _ = strings.Cut(mediaType, ";")
	ext := extensionFor(mediaType)
	if ext == "" {
		return evidence{}, fmt.Errorf("unsupported MIME type in data URI: %s", mediaType)
	}
	return evidence{data: data, ext: ext}, nil
}

// extensionFor maps a declared media type to its canonical extension.
func extensionFor(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for ext, kind := range evidenceKinds {
		if slices.Contains(kind.declared, mediaType) {
			return ext
		}
	}
	return ""
}

// matches checks ext is accepted and the sniffed content agrees with it.
func (ev evidence) matches(ext string) error {
	kind, ok := evidenceKinds[ext]
	if !ok {
		allowed := strings.Join(slices.Sorted(maps.Keys(evidenceKinds)), ", ")
		return fmt.Errorf("unsupported file extension %q (allowed: %s)", ext, allowed)
	}
	got, _, _ := strings.Cut(http.DetectContentType(ev.data), ";")
	if got != kind.sniffed {
		return fmt.Errorf("content does not match extension %s (detected: %s)", ext, got)
	}
	return nil
}

// evidenceName picks the stored name: the caller's choice, else the URL's
// last path segment, else a random name. The result is always a bare,
// shell-safe file name.
func evidenceName(given, source, ext string) string {
	name := given
	if name == "" && !strings.HasPrefix(source, "data:") {
		if u, err := url.Parse(source); err == nil {
			if base := path.Base(u.Path); strings.Contains(base, ".") {
				name = base
			}
		}
	}
	if name == "" {
		if ext == "" {
			ext = ".bin"
		}
		return uuid.NewString() + ext
	}
	return cleanName(name)
}

// cleanName drops directories, replaces unsafe characters and leading dots.
func cleanName(name string) string {
	name = nameUnsafe.ReplaceAllString(filepath.Base(name), "_")
	if name = strings.TrimLeft(name, "."); name == "" {
		return uuid.NewString()
	}
	return name
}
