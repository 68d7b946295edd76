package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Simplici0/shiftprint/internal/db"
	"github.com/Simplici0/shiftprint/internal/migrations"
	"github.com/Simplici0/shiftprint/internal/pricing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return New(database)
}

func float(v float64) *float64 { return &v }

func TestMaterialCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateMaterial(ctx, Material{
		Name:   "PLA",
		Colors: []string{"white", "black"},
		Type:   "PLA",
		Price:  290,
	})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	if !ValidID(created.ID) {
		t.Fatalf("expected generated id, got %q", created.ID)
	}

	got, err := s.GetMaterial(ctx, created.ID)
	if err != nil {
		t.Fatalf("get material: %v", err)
	}
	if got.Name != "PLA" || got.Price != 290 || len(got.Colors) != 2 {
		t.Fatalf("unexpected material: %+v", got)
	}

	updated, err := s.UpdateMaterial(ctx, created.ID, Material{Name: "PLA+", Type: "PLA", Price: 310})
	if err != nil {
		t.Fatalf("update material: %v", err)
	}
	if updated.Colors == nil || len(updated.Colors) != 0 {
		t.Fatalf("expected empty colors after update, got %#v", updated.Colors)
	}

	list, err := s.ListMaterials(ctx)
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	if len(list) != 1 || list[0].Name != "PLA+" || list[0].Price != 310 {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := s.DeleteMaterial(ctx, created.ID); err != nil {
		t.Fatalf("delete material: %v", err)
	}
	if err := s.DeleteMaterial(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetMaterial(ctx, "not-an-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get material: expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateShopItem(ctx, "42", ShopItem{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update shop item: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteGalleryItem(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete gallery item: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetOrder(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get order: expected ErrNotFound, got %v", err)
	}
}

func TestListMaterialsLimitKeepsCreationOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"PLA", "PETG", "ABS", "TPU"} {
		if _, err := s.CreateMaterial(ctx, Material{Name: name, Type: name, Price: 300}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	list, err := s.ListMaterialsLimit(ctx, 3)
	if err != nil {
		t.Fatalf("list materials: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 materials, got %d", len(list))
	}
	if list[0].Name != "PLA" || list[2].Name != "ABS" {
		t.Fatalf("unexpected order: %s, %s", list[0].Name, list[2].Name)
	}
}

func TestGalleryAndShopRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGalleryItem(ctx, GalleryItem{Title: "Vase", Image: "/img/vase.jpg", Material: "PETG"})
	if err != nil {
		t.Fatalf("create gallery item: %v", err)
	}
	if _, err := s.UpdateGalleryItem(ctx, g.ID, GalleryItem{Title: "Tall vase"}); err != nil {
		t.Fatalf("update gallery item: %v", err)
	}
	gallery, err := s.ListGalleryItems(ctx)
	if err != nil {
		t.Fatalf("list gallery: %v", err)
	}
	if len(gallery) != 1 || gallery[0].Title != "Tall vase" {
		t.Fatalf("unexpected gallery: %+v", gallery)
	}

	item, err := s.CreateShopItem(ctx, ShopItem{Name: "Keychain", Price: 50, InStock: true})
	if err != nil {
		t.Fatalf("create shop item: %v", err)
	}
	if _, err := s.UpdateShopItem(ctx, item.ID, ShopItem{Name: "Keychain", Price: 55, InStock: false}); err != nil {
		t.Fatalf("update shop item: %v", err)
	}
	shop, err := s.ListShopItems(ctx)
	if err != nil {
		t.Fatalf("list shop: %v", err)
	}
	if len(shop) != 1 || shop[0].Price != 55 || shop[0].InStock {
		t.Fatalf("unexpected shop: %+v", shop)
	}
}

func TestPrintSettingsLazyDefaultAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.GetPrintSettings(ctx)
	if err != nil {
		t.Fatalf("get print settings: %v", err)
	}
	if got != pricing.DefaultCostProfile() {
		t.Fatalf("expected defaults, got %+v", got)
	}

	want := pricing.CostProfile{
		ElectricityCost: 4,
		PrinterPower:    250,
		Markup:          30,
		MarkupMode:      pricing.MarkupPercent,
		LaborCost:       15,
		Currency:        "MDL",
	}
	if _, err := s.UpdatePrintSettings(ctx, want); err != nil {
		t.Fatalf("update print settings: %v", err)
	}

	inserted, err := s.EnsurePrintSettings(ctx, pricing.DefaultCostProfile())
	if err != nil {
		t.Fatalf("ensure print settings: %v", err)
	}
	if inserted {
		t.Fatalf("expected existing singleton to be kept")
	}

	got, err = s.GetPrintSettings(ctx)
	if err != nil {
		t.Fatalf("get print settings: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestOrderLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	est := &pricing.Estimate{VolumeCm3: 10, WeightGrams: 12.4, PrintHours: 0.5}
	created, err := s.CreateOrder(ctx, Order{
		FileName:      "part.stl",
		FileURL:       "/uploads/part.stl",
		MaterialName:  "PLA",
		Scale:         "1",
		Infill:        "20",
		LayerHeight:   "0.2",
		Weight:        float(12.4),
		PrintTime:     float(0.5),
		EstimatedCost: float(80),
		Estimate:      est,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending, got %q", created.Status)
	}

	clock = clock.Add(time.Hour)
	confirmed, err := s.ConfirmOrder(ctx, created.ID, Confirmation{
		CustomerName:  "Ion",
		CustomerPhone: "+37360000000",
		CustomerEmail: "ion@example.com",
		AuthMethod:    "email",
		FinalCost:     float(76),
	})
	if err != nil {
		t.Fatalf("confirm order: %v", err)
	}
	if confirmed.Status != StatusOrdered || confirmed.OrderedDate == nil || !confirmed.OrderedDate.Equal(clock) {
		t.Fatalf("unexpected confirmed order: %+v", confirmed)
	}
	if confirmed.Estimate == nil || confirmed.Estimate.WeightGrams != 12.4 {
		t.Fatalf("expected estimate to round-trip, got %+v", confirmed.Estimate)
	}

	if err := s.ChangeOrderPrice(ctx, created.ID, 90); err != nil {
		t.Fatalf("change price: %v", err)
	}
	if err := s.ApproveOrder(ctx, created.ID, nil); err != nil {
		t.Fatalf("approve order: %v", err)
	}
	got, err := s.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != StatusApproved || got.FinalCost == nil || *got.FinalCost != 90 {
		t.Fatalf("expected approved order with price 90, got %+v", got)
	}
	if got.PriceModifiedDate == nil || got.ApprovedDate == nil {
		t.Fatalf("expected price and approval dates, got %+v", got)
	}

	if err := s.CompleteOrder(ctx, created.ID); err != nil {
		t.Fatalf("complete order: %v", err)
	}
	n, err := s.CountCompletedByEmail(ctx, "ion@example.com")
	if err != nil {
		t.Fatalf("count completed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 completed order, got %d", n)
	}
}

func TestOperatorChoiceMaterialSelection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	o, err := s.CreateOrder(ctx, Order{FileName: "a.stl", FileURL: "/uploads/a.stl", OperatorChoice: true, Scale: "1", Infill: "20", LayerHeight: "0.2"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := s.SelectOrderMaterial(ctx, o.ID, "PETG"); err != nil {
		t.Fatalf("select material: %v", err)
	}
	got, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != StatusMaterialSelected || got.OperatorSelectedMaterial != "PETG" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.Weight != nil || got.EstimatedCost != nil || got.Estimate != nil {
		t.Fatalf("expected no cost fields, got %+v", got)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, email := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		_, err := s.CreateOrder(ctx, Order{
			FileName:      "f.stl",
			FileURL:       "/uploads/f.stl",
			CustomerEmail: email,
			Scale:         "1",
			Infill:        "20",
			LayerHeight:   "0.2",
			UploadDate:    base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}

	all, err := s.ListOrders(ctx, 2)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(all) != 2 || !all[0].UploadDate.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected orders: %+v", all)
	}

	mine, err := s.ListOrdersByEmail(ctx, "a@example.com", 50)
	if err != nil {
		t.Fatalf("list by email: %v", err)
	}
	if len(mine) != 2 || mine[0].UploadDate.Before(mine[1].UploadDate) {
		t.Fatalf("unexpected customer orders: %+v", mine)
	}
}

func TestUnknownOrderTransitions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	missing := "6f1c1f7e-8d0a-4b5e-9a43-2f4c2d8b9e10"

	if err := s.ApproveOrder(ctx, missing, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("approve: expected ErrNotFound, got %v", err)
	}
	if err := s.CompleteOrder(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("complete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.ConfirmOrder(ctx, missing, Confirmation{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("confirm: expected ErrNotFound, got %v", err)
	}
}

func TestChatState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetChatState(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetChatState(ctx, ChatState{ChatID: 7, OrderID: "o1", Action: ActionAwaitingPrice}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetChatState(ctx, ChatState{ChatID: 7, OrderID: "o2", Action: ActionAwaitingPrice}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	st, err := s.GetChatState(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.OrderID != "o2" {
		t.Fatalf("expected o2, got %q", st.OrderID)
	}
	if err := s.ClearChatState(ctx, 7); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.GetChatState(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
