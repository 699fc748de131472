package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/livetemplate/mailcraft"
	"github.com/livetemplate/mailcraft/internal/generate"
	"github.com/livetemplate/mailcraft/internal/store"
)

// maxRequestBodySize limits the size of incoming request bodies. Blocks may
// carry embedded images, so this is well above uploads.max_image_bytes.
const maxRequestBodySize = 16 << 20

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type createDocumentRequest struct {
	Name   string            `json:"name"`
	Blocks []mailcraft.Block `json:"blocks"`
}

type insertBlockRequest struct {
	Block    *mailcraft.Block `json:"block"`
	Position *int             `json:"position"`
}

type dropRequest struct {
	Kind     string           `json:"kind"`
	Block    *mailcraft.Block `json:"block"`
	Position int              `json:"position"`
}

type setFieldRequest struct {
	Value any `json:"value"`
}

// handleGenerate answers every non-empty prompt with a template; service
// failures are handled by the generator.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.generator.Generate(r.Context(), req.Prompt)
	if errors.Is(err, generate.ErrPromptRequired) {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if err != nil {
		log.Printf("[API] Generate failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate template")
		return
	}
	if s.config.Server.Debug {
		log.Printf("[API] Generated %d blocks (%s %s)", len(res.Blocks), res.Source, res.Category)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	doc := mailcraft.NewDocument(req.Name)
	for _, b := range req.Blocks {
		if b.ID == "" {
			b.ID = mailcraft.NewBlockID()
		}
		s.checkImages(b.ID, b.Props)
		doc.Blocks = append(doc.Blocks, b)
	}

	if err := s.docs.Create(r.Context(), doc); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.docs.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.hub.BroadcastDeleted(id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Document(&buf, doc); err != nil {
		log.Printf("[API] Export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to render document")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleInsertBlock(w http.ResponseWriter, r *http.Request) {
	var req insertBlockRequest
	if err := decodeBody(w, r, &req); err != nil || req.Block == nil {
		writeError(w, http.StatusBadRequest, "block is required")
		return
	}

	var inserted mailcraft.Block
	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), func(d *mailcraft.Document) error {
		position := d.Len()
		if req.Position != nil {
			position = *req.Position
		}
		var err error
		inserted, err = d.Insert(*req.Block, position)
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.checkImages(inserted.ID, inserted.Props)
	s.hub.BroadcastDocument(doc)
	writeJSON(w, http.StatusCreated, map[string]any{
		"block":    inserted,
		"document": doc,
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dropRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var changed bool
	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), func(d *mailcraft.Document) error {
		var err error
		changed, err = mailcraft.NewDropZone(req.Position).Drop(d, mailcraft.DragPayload{Kind: req.Kind, Block: req.Block})
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if changed {
		s.hub.BroadcastDocument(doc)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed":  changed,
		"document": doc,
	})
}

func (s *Server) handlePatchBlock(w http.ResponseWriter, r *http.Request) {
	var attrs map[string]any
	if err := decodeBody(w, r, &attrs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	blockID := r.PathValue("blockID")
	var patched mailcraft.Block
	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), func(d *mailcraft.Document) error {
		var err error
		patched, err = d.Patch(blockID, attrs)
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.checkImages(blockID, attrs)
	s.hub.BroadcastDocument(doc)
	writeJSON(w, http.StatusOK, map[string]any{"block": patched})
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	field, ok := mailcraft.LookupField(r.PathValue("field"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field: "+r.PathValue("field"))
		return
	}
	var req setFieldRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	blockID := r.PathValue("blockID")
	var (
		key     string
		patched mailcraft.Block
	)
	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), func(d *mailcraft.Document) error {
		b, err := d.Find(blockID)
		if err != nil {
			return err
		}
		patch := mailcraft.ResolveFieldPatch(b.Props, field, req.Value)
		for k := range patch {
			key = k
		}
		patched, err = d.Patch(blockID, patch)
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.hub.BroadcastDocument(doc)
	writeJSON(w, http.StatusOK, map[string]any{
		"key":   key,
		"block": patched,
	})
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	blockID := r.PathValue("blockID")
	doc, err := s.docs.Update(r.Context(), r.PathValue("id"), func(d *mailcraft.Document) error {
		_, err := d.Remove(blockID)
		return err
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.hub.BroadcastDocument(doc)
	writeJSON(w, http.StatusOK, map[string]any{"document": doc})
}

// checkImages logs oversized embedded images. The write has already
// happened; this never rejects.
func (s *Server) checkImages(blockID string, attrs map[string]any) {
	for _, warning := range mailcraft.CheckImages(blockID, attrs, s.config.Uploads.GetMaxImageBytes()) {
		log.Printf("[API] %s", warning)
	}
}

// Helper functions

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		// An empty body decodes to the zero value.
		return nil
	}
	return err
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrDocumentNotFound), errors.Is(err, mailcraft.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, mailcraft.ErrDuplicateBlockID):
		return http.StatusConflict
	case errors.Is(err, mailcraft.ErrImmutableField),
		errors.Is(err, mailcraft.ErrMissingType),
		errors.Is(err, mailcraft.ErrIncompatiblePayload):
		return http.StatusBadRequest
	}
	var blockErr *mailcraft.BlockError
	if errors.As(err, &blockErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] Store error: %v", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Printf("[API] Error encoding error response: %v", err)
	}
}
