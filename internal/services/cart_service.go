package services

import (
	"context"
	"errors"
	"fmt"

	"apotek/internal/apperrors"
	"apotek/internal/models"
	"apotek/internal/repositories"

	"github.com/shopspring/decimal"
)

// Cart validation reasons.
const (
	ReasonMedicineNotFound     = "Medicine not found"
	ReasonInvalidPrescription  = "Invalid or unverified prescription"
	reasonInsufficientStockFmt = "Insufficient stock. Available: %d"
)

// ItemVerdict is the classification of a single cart line.
type ItemVerdict int

const (
	ItemValid ItemVerdict = iota
	ItemInvalid
	ItemNeedsPrescription
)

// InvalidCartItem explains why a cart line cannot be fulfilled.
type InvalidCartItem struct {
	ItemID     uint   `json:"item_id"`
	MedicineID uint   `json:"medicine_id"`
	Reason     string `json:"reason"`
}

// CartValidation is the outcome of validating a cart.
type CartValidation struct {
	ValidItems           []uint            `json:"valid_items"`
	InvalidItems         []InvalidCartItem `json:"invalid_items"`
	RequiresPrescription []uint            `json:"requires_prescription"`
	TotalValidAmount     float64           `json:"total_valid_amount"`
}

// ClassifyCartItem applies the fulfilment rules to one cart line, in order:
// medicine exists, prescription attached when required, prescription valid
// for the user, enough stock. The reason is empty unless the verdict is
// ItemInvalid.
func ClassifyCartItem(userID string, item models.CartItem, medicines map[uint]models.Medicine, prescriptions map[uint]models.Prescription) (ItemVerdict, string) {
	medicine, ok := medicines[item.MedicineID]
	if !ok {
		return ItemInvalid, ReasonMedicineNotFound
	}
	if medicine.PrescriptionRequired && item.PrescriptionID == nil {
		return ItemNeedsPrescription, ""
	}
	if item.PrescriptionID != nil {
		p, found := prescriptions[*item.PrescriptionID]
		if !found || !p.ValidFor(userID) {
			return ItemInvalid, ReasonInvalidPrescription
		}
	}
	if medicine.Stock < item.Quantity {
		return ItemInvalid, fmt.Sprintf(reasonInsufficientStockFmt, medicine.Stock)
	}
	return ItemValid, ""
}

// ClassifyCartItems classifies every line in cart order and totals the
// fulfillable ones. It has no side effects.
func ClassifyCartItems(userID string, items []models.CartItem, medicines map[uint]models.Medicine, prescriptions map[uint]models.Prescription) *CartValidation {
	result := &CartValidation{
		ValidItems:           []uint{},
		InvalidItems:         []InvalidCartItem{},
		RequiresPrescription: []uint{},
	}
	total := decimal.Zero
	for _, item := range items {
		verdict, reason := ClassifyCartItem(userID, item, medicines, prescriptions)
		switch verdict {
		case ItemInvalid:
			result.InvalidItems = append(result.InvalidItems, InvalidCartItem{
				ItemID:     item.ID,
				MedicineID: item.MedicineID,
				Reason:     reason,
			})
		case ItemNeedsPrescription:
			result.RequiresPrescription = append(result.RequiresPrescription, item.ID)
		default:
			result.ValidItems = append(result.ValidItems, item.ID)
			total = total.Add(lineTotal(medicines[item.MedicineID].Price, item.Quantity))
		}
	}
	result.TotalValidAmount = total.Round(2).InexactFloat64()
	return result
}

func lineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// CartLine is a cart item enriched with current catalog details.
type CartLine struct {
	models.CartItem
	MedicineName     string  `json:"medicine_name"`
	MedicinePrice    float64 `json:"medicine_price"`
	MedicineImageURL string  `json:"medicine_image_url,omitempty"`
	TotalPrice       float64 `json:"total_price"`
}

// CartView is the cart as shown to its owner.
type CartView struct {
	ID          uint       `json:"id"`
	UserID      string     `json:"user_id"`
	Items       []CartLine `json:"items"`
	TotalItems  int        `json:"total_items"`
	TotalAmount float64    `json:"total_amount"`
}

// AddCartItemInput is the payload for adding a medicine to the cart.
type AddCartItemInput struct {
	MedicineID     uint  `json:"medicine_id" validate:"required"`
	Quantity       int   `json:"quantity" validate:"required,min=1"`
	PrescriptionID *uint `json:"prescription_id"`
}

// CartService handles business logic related to carts.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	var view *CartView
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		medicines, err := tx.Medicines().GetByIDs(ctx, medicineIDs(cart.Items))
		if err != nil {
			return err
		}
		view = buildCartView(cart, medicines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem puts a medicine in the cart, merging with an existing line for the
// same medicine.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddCartItemInput) (*CartLine, error) {
	if in.Quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	var line *CartLine
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		medicine, err := tx.Medicines().GetByID(ctx, in.MedicineID)
		if err != nil {
			return err
		}
		if !medicine.IsAvailable || medicine.Stock < in.Quantity {
			return apperrors.ItemUnavailable(medicine.ID, "not available in requested quantity")
		}

		cart, err := tx.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		item := findByMedicine(cart.Items, in.MedicineID)
		if item == nil {
			item = &models.CartItem{CartID: cart.ID, MedicineID: in.MedicineID}
		}
		item.Quantity += in.Quantity
		item.PrescriptionRequired = medicine.PrescriptionRequired
		if in.PrescriptionID != nil {
			item.PrescriptionID = in.PrescriptionID
		}
		if err := tx.Carts().SaveItem(ctx, item); err != nil {
			return err
		}
		line = newCartLine(*item, *medicine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateItem sets the quantity of a cart line.
func (s *CartService) UpdateItem(ctx context.Context, userID string, itemID uint, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}

	var line *CartLine
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := lockedItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		medicine, err := tx.Medicines().GetByID(ctx, item.MedicineID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ItemUnavailable(item.MedicineID, "Requested quantity not available")
			}
			return err
		}
		if medicine.Stock < quantity {
			return apperrors.ItemUnavailable(item.MedicineID, "Requested quantity not available")
		}

		item.Quantity = quantity
		if err := tx.Carts().SaveItem(ctx, item); err != nil {
			return err
		}
		line = newCartLine(*item, *medicine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID uint) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		item, err := lockedItem(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}
		return tx.Carts().DeleteItem(ctx, item.CartID, item.ID)
	})
}

// Clear drops the whole cart. Clearing a missing cart is a no-op.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().LockByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		return tx.Carts().Delete(ctx, cart.ID)
	})
}

// ValidateCart classifies the user's cart against the current catalog and
// prescriptions. It never mutates stock or the cart; a missing cart
// validates as empty.
func (s *CartService) ValidateCart(ctx context.Context, userID string) (*CartValidation, error) {
	cart, err := s.store.Carts().GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ClassifyCartItems(userID, nil, nil, nil), nil
		}
		return nil, err
	}

	medicines, prescriptions, err := loadCartRefs(ctx, s.store, cart.Items)
	if err != nil {
		return nil, err
	}
	return ClassifyCartItems(userID, cart.Items, medicines, prescriptions), nil
}

// loadCartRefs fetches the medicines and prescriptions referenced by items
// in one lookup each.
func loadCartRefs(ctx context.Context, store repositories.Store, items []models.CartItem) (map[uint]models.Medicine, map[uint]models.Prescription, error) {
	medicines, err := store.Medicines().GetByIDs(ctx, medicineIDs(items))
	if err != nil {
		return nil, nil, err
	}
	var ids []uint
	for _, item := range items {
		if item.PrescriptionID != nil {
			ids = append(ids, *item.PrescriptionID)
		}
	}
	prescriptions, err := store.Prescriptions().GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return medicines, prescriptions, nil
}

func lockedItem(ctx context.Context, tx repositories.Store, userID string, itemID uint) (*models.CartItem, error) {
	cart, err := tx.Carts().LockByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart item", itemID)
		}
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i], nil
		}
	}
	return nil, apperrors.NotFound("cart item", itemID)
}

func findByMedicine(items []models.CartItem, medicineID uint) *models.CartItem {
	for i := range items {
		if items[i].MedicineID == medicineID {
			return &items[i]
		}
	}
	return nil
}

func medicineIDs(items []models.CartItem) []uint {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MedicineID)
	}
	return ids
}

func newCartLine(item models.CartItem, medicine models.Medicine) *CartLine {
	return &CartLine{
		CartItem:         item,
		MedicineName:     medicine.Name,
		MedicinePrice:    medicine.Price,
		MedicineImageURL: medicine.ImageURL,
		TotalPrice:       lineTotal(medicine.Price, item.Quantity).Round(2).InexactFloat64(),
	}
}

// Lines whose medicine has left the catalog are not shown.
func buildCartView(cart *models.Cart, medicines map[uint]models.Medicine) *CartView {
	view := &CartView{ID: cart.ID, UserID: cart.UserID, Items: []CartLine{}}
	total := decimal.Zero
	for _, item := range cart.Items {
		medicine, ok := medicines[item.MedicineID]
		if !ok {
			continue
		}
		view.Items = append(view.Items, *newCartLine(item, medicine))
		view.TotalItems += item.Quantity
		total = total.Add(lineTotal(medicine.Price, item.Quantity))
	}
	view.TotalAmount = total.Round(2).InexactFloat64()
	return view
}
