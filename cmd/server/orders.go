package main

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/shiftprint/internal/export"
	"github.com/Simplici0/shiftprint/internal/mesh"
	"github.com/Simplici0/shiftprint/internal/notify"
	"github.com/Simplici0/shiftprint/internal/pricing"
	"github.com/Simplici0/shiftprint/internal/store"
)

const multipartMemory = 32 << 20

type uploadResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

type orderStatusResponse struct {
	OrderID           string     `json:"orderId"`
	Status            string     `json:"status"`
	FileName          string     `json:"fileName"`
	MaterialName      string     `json:"materialName,omitempty"`
	EstimatedCost     *float64   `json:"estimatedCost"`
	FinalCost         *float64   `json:"finalCost"`
	PriceModifiedDate *time.Time `json:"priceModifiedDate"`
	ApprovedDate      *time.Time `json:"approvedDate"`
	CompletedDate     *time.Time `json:"completedDate"`
}

type confirmRequest struct {
	CustomerName  string   `json:"customerName"`
	CustomerPhone string   `json:"customerPhone"`
	CustomerEmail string   `json:"customerEmail"`
	AuthMethod    string   `json:"authMethod"`
	FinalCost     *float64 `json:"finalCost"`
}

type confirmResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	DiscountPercent int    `json:"discountPercent"`
}

// readUpload parses the multipart body and returns the file contents. It
// writes the error response itself and returns ok=false on failure.
func (s *server) readUpload(w http.ResponseWriter, r *http.Request) (name string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return "", nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return "", nil, false
	}
	defer file.Close()

	if err := mesh.CheckFormat(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", nil, false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return "", nil, false
	}
	return header.Filename, data, true
}

func (s *server) handleOrderUpload(w http.ResponseWriter, r *http.Request) {
	fileName, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	client := notify.ClientFigures{}
	var err error
	for _, f := range []struct {
		dst   **float64
		field string
	}{
		{&client.Price, "clientPrice"},
		{&client.Weight, "clientWeight"},
		{&client.Hours, "clientTime"},
	} {
		if *f.dst, err = parseOptionalFloat(r.FormValue(f.field), f.field); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	fileURL, err := s.files.Save(ctx, fileName, data)
	if err != nil {
		log.Printf("store upload %s: %v", fileName, err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	order := store.Order{
		FileName:       fileName,
		FileURL:        fileURL,
		MaterialID:     strings.TrimSpace(r.FormValue("materialId")),
		MaterialName:   strings.TrimSpace(r.FormValue("materialName")),
		MaterialColor:  strings.TrimSpace(r.FormValue("materialColor")),
		OperatorChoice: parseBool(r.FormValue("operatorChoice")),
		Purpose:        strings.TrimSpace(r.FormValue("purpose")),
		Loads:          strings.TrimSpace(r.FormValue("loads")),
		CustomerName:   strings.TrimSpace(r.FormValue("customerName")),
		CustomerPhone:  strings.TrimSpace(r.FormValue("customerPhone")),
		Scale:          formValueOr(r, "scale", "1"),
		Infill:         formValueOr(r, "infill", "20"),
		LayerHeight:    formValueOr(r, "layerHeight", pricing.DefaultLayerHeight),
	}

	var cost *pricing.Breakdown
	if mesh.Measurable(fileName) {
		est, err := s.estimateMesh(ctx, meshRequest{
			fileName:       fileName,
			data:           data,
			materialID:     order.MaterialID,
			operatorChoice: order.OperatorChoice,
			layerHeight:    order.LayerHeight,
			scale:          parseScale(order.Scale),
		})
		var geoErr *mesh.GeometryError
		var profileErr *pricing.InvalidProfileError
		switch {
		case errors.As(err, &geoErr):
			log.Printf("measure upload %s: %v", fileName, err)
		case errors.As(err, &profileErr):
			log.Printf("price upload %s: %v", fileName, err)
			order.Weight, order.PrintTime, order.Estimate = &est.WeightGrams, &est.PrintHours, &est
		case err != nil:
			log.Printf("estimate upload %s: %v", fileName, err)
		default:
			order.Weight, order.PrintTime, order.Estimate = &est.WeightGrams, &est.PrintHours, &est
			if est.Cost != nil {
				cost = est.Cost
				total := est.Cost.Customer().Total
				order.EstimatedCost = &total
			}
		}
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		log.Printf("create order for %s: %v", fileName, err)
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if s.notifier != nil {
		var choices []string
		if created.OperatorChoice {
			choices = s.materialChoices(r)
		}
		err := s.notifier.OrderUploaded(notify.NewOrder{
			Order:           created,
			File:            data,
			Cost:            cost,
			Client:          client,
			MaterialChoices: choices,
		})
		if err != nil {
			log.Printf("notify order %s: %v", created.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, OrderID: created.ID, Message: "Файл загружен"})
}

func (s *server) materialChoices(r *http.Request) []string {
	materials, err := s.store.ListMaterialsLimit(r.Context(), maxChoiceMaterials)
	if err != nil {
		log.Printf("list materials for operator choice: %v", err)
		return nil
	}
	names := make([]string, 0, len(materials))
	for _, m := range materials {
		names = append(names, m.Name)
	}
	return names
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrders(r.Context(), maxAdminOrders)
	if err != nil {
		log.Printf("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("load order: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		OrderID:           o.ID,
		Status:            o.Status,
		FileName:          o.FileName,
		MaterialName:      o.MaterialName,
		EstimatedCost:     o.EstimatedCost,
		FinalCost:         o.FinalCost,
		PriceModifiedDate: o.PriceModifiedDate,
		ApprovedDate:      o.ApprovedDate,
		CompletedDate:     o.CompletedDate,
	})
}

func (s *server) handleOrderConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.CustomerName == "" || req.CustomerPhone == "" {
		writeError(w, http.StatusBadRequest, "customerName and customerPhone are required")
		return
	}
	if req.FinalCost != nil && *req.FinalCost < 0 {
		writeError(w, http.StatusBadRequest, "finalCost must be greater than or equal to 0")
		return
	}

	ctx := r.Context()
	o, err := s.store.ConfirmOrder(ctx, chi.URLParam(r, "id"), store.Confirmation{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		AuthMethod:    req.AuthMethod,
		FinalCost:     req.FinalCost,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("confirm order: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to confirm order")
		return
	}

	discount := 0
	if req.AuthMethod == notify.AuthGoogle && req.CustomerEmail != "" {
		completed, err := s.store.CountCompletedByEmail(ctx, req.CustomerEmail)
		if err != nil {
			log.Printf("count completed orders for order %s: %v", o.ID, err)
		}
		discount = pricing.LoyaltyDiscount(completed)
	}

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmed(o, discount); err != nil {
			log.Printf("notify confirmed order %s: %v", o.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, confirmResponse{Success: true, Message: "Order confirmed", DiscountPercent: discount})
}

func (s *server) handleOrderApprove(w http.ResponseWriter, r *http.Request) {
	finalCost, err := parseOptionalFloat(r.URL.Query().Get("finalCost"), "finalCost")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if finalCost != nil && *finalCost < 0 {
		writeError(w, http.StatusBadRequest, "finalCost must be greater than or equal to 0")
		return
	}

	err = s.store.ApproveOrder(r.Context(), chi.URLParam(r, "id"), finalCost)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("approve order: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to approve order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order approved"})
}

func (s *server) handleOrderQuotePDF(w http.ResponseWriter, r *http.Request) {
	o, err := s.store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("load order: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	var buf bytes.Buffer
	if err := export.QuotePDF(&buf, o, shopName, s.now()); err != nil {
		log.Printf("render quote for order %s: %v", o.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to render quote")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="quote-`+o.ID+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

type discountResponse struct {
	Email           string `json:"email"`
	CompletedOrders int    `json:"completedOrders"`
	DiscountPercent int    `json:"discountPercent"`
	MaxDiscount     int    `json:"maxDiscount"`
}

func (s *server) handleUserDiscount(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	completed, err := s.store.CountCompletedByEmail(r.Context(), email)
	if err != nil {
		log.Printf("count completed orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load discount")
		return
	}
	writeJSON(w, http.StatusOK, discountResponse{
		Email:           email,
		CompletedOrders: completed,
		DiscountPercent: pricing.LoyaltyDiscount(completed),
		MaxDiscount:     pricing.LoyaltyMaxPercent,
	})
}

func (s *server) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	orders, err := s.store.ListOrdersByEmail(r.Context(), email, maxCustomerOrders)
	if err != nil {
		log.Printf("list customer orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}
