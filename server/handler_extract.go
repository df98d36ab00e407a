package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docrelay/docrelay/config"
	"github.com/docrelay/docrelay/pkg/extractor"
)

// handleExtract accepts a multipart PDF upload, runs the extraction and
// returns the result as JSON. The uploaded file lives in a temp directory for
// the duration of the request only.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload too large: %w", err))
		return
	}

	file, header, err := r.FormFile("file")

	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing file"))
		return
	}

	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, errors.New("only .pdf files are supported"))
		return
	}

	path, err := saveUpload(file, header.Filename)

	if err != nil {
		logError(ctx, "saving upload failed", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to store upload"))
		return
	}

	defer os.RemoveAll(filepath.Dir(path))

	opts, err := parseOptions(r)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.Orchestrator.RunExtraction(ctx, path, r.FormValue("query"), opts)

	if err != nil {
		logError(ctx, "extraction failed", err)

		code := http.StatusBadGateway

		if errors.Is(err, extractor.ErrNoHandler) {
			code = http.StatusNotImplemented
		}

		writeError(w, code, err)
		return
	}

	writeJson(w, result)
}

func parseOptions(r *http.Request) (*extractor.Options, error) {
	opts := new(extractor.Options)

	if val := r.FormValue("strategy"); val != "" {
		strategy, err := extractor.ParseStrategy(val)

		if err != nil {
			return nil, err
		}

		opts.Strategy = strategy
	}

	if val := r.FormValue("validate"); val != "" {
		validate, err := strconv.ParseBool(val)

		if err != nil {
			return nil, fmt.Errorf("invalid validate value: %q", val)
		}

		opts.Validate = &validate
	}

	return opts, nil
}

func saveUpload(file io.Reader, name string) (string, error) {
	dir, err := os.MkdirTemp("", "docrelay-")

	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filepath.Base(name))

	f, err := os.Create(path)

	if err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	defer f.Close()

	if _, err := io.Copy(f, file); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	return path, nil
}
