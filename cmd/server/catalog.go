package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

type deleteResponse struct {
	Message string `json:"message"`
}

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	materials, err := s.store.ListMaterials(r.Context())
	if err != nil {
		log.Printf("list materials: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load materials")
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleMaterialCreate(w http.ResponseWriter, r *http.Request) {
	var m store.Material
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateMaterial(&m); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateMaterial(r.Context(), m)
	if err != nil {
		log.Printf("create material: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create material")
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	var m store.Material
	if err := decodeJSON(w, r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateMaterial(&m); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.store.UpdateMaterial(r.Context(), chi.URLParam(r, "id"), m)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Material not found")
		return
	}
	if err != nil {
		log.Printf("update material: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update material")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleMaterialDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteDocument(w, r, s.store.DeleteMaterial, "Material")
}

func validateMaterial(m *store.Material) string {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return "name is required"
	}
	if m.Price <= 0 {
		return "price must be greater than 0"
	}
	if strings.TrimSpace(m.Type) == "" {
		m.Type = pricing.DetectType(m.Name)
	}
	return ""
}

func (s *server) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListGalleryItems(r.Context())
	if err != nil {
		log.Printf("list gallery: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleGalleryCreate(w http.ResponseWriter, r *http.Request) {
	var it store.GalleryItem
	if err := decodeJSON(w, r, &it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(it.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := s.store.CreateGalleryItem(r.Context(), it)
	if err != nil {
		log.Printf("create gallery item: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create gallery item")
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *server) handleGalleryUpdate(w http.ResponseWriter, r *http.Request) {
	var it store.GalleryItem
	if err := decodeJSON(w, r, &it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(it.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	updated, err := s.store.UpdateGalleryItem(r.Context(), chi.URLParam(r, "id"), it)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		log.Printf("update gallery item: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update gallery item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleGalleryDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteDocument(w, r, s.store.DeleteGalleryItem, "Item")
}

func (s *server) handleShopList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListShopItems(r.Context())
	if err != nil {
		log.Printf("list shop: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load shop")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleShopCreate(w http.ResponseWriter, r *http.Request) {
	var it store.ShopItem
	if err := decodeJSON(w, r, &it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateShopItem(it); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateShopItem(r.Context(), it)
	if err != nil {
		log.Printf("create shop item: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create shop item")
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *server) handleShopUpdate(w http.ResponseWriter, r *http.Request) {
	var it store.ShopItem
	if err := decodeJSON(w, r, &it); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateShopItem(it); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.store.UpdateShopItem(r.Context(), chi.URLParam(r, "id"), it)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		log.Printf("update shop item: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update shop item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleShopDelete(w http.ResponseWriter, r *http.Request) {
	s.deleteDocument(w, r, s.store.DeleteShopItem, "Item")
}

func validateShopItem(it store.ShopItem) string {
	if strings.TrimSpace(it.Name) == "" {
		return "name is required"
	}
	if it.Price < 0 {
		return "price must be greater than or equal to 0"
	}
	return ""
}

func (s *server) deleteDocument(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error, kind string) {
	err := del(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, kind+" not found")
		return
	}
	if err != nil {
		log.Printf("delete %s: %v", strings.ToLower(kind), err)
		writeError(w, http.StatusInternalServerError, "failed to delete "+strings.ToLower(kind))
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: kind + " deleted"})
}
