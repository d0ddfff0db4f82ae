package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/commons"
	couponrepo "storefront/internal/coupon/repository"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
	productrepo "storefront/internal/product/repository"
)

// File is the layout of a catalog seed file.
type File struct {
	Products []Product `yaml:"products"`
	Coupons  []Coupon  `yaml:"coupons"`
}

type Product struct {
	SKU               string  `yaml:"sku"`
	Name              string  `yaml:"name"`
	Description       *string `yaml:"description"`
	Category          *string `yaml:"category"`
	Price             string  `yaml:"price"`
	Image             *string `yaml:"image"`
	Inactive          bool    `yaml:"inactive"`
	Stock             *int    `yaml:"stock"`
	LowStockThreshold *int    `yaml:"low_stock_threshold"`
	Location          *string `yaml:"location"`
}

type Coupon struct {
	Code              string     `yaml:"code"`
	Name              *string    `yaml:"name"`
	DiscountType      string     `yaml:"discount_type"`
	DiscountValue     string     `yaml:"discount_value"`
	MinPurchaseAmount *string    `yaml:"min_purchase_amount"`
	MaxDiscountAmount *string    `yaml:"max_discount_amount"`
	UsageLimit        *int       `yaml:"usage_limit"`
	ValidFrom         *time.Time `yaml:"valid_from"`
	ValidUntil        *time.Time `yaml:"valid_until"`
}

type ProductRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, p *domain.Product) error
}

type InventoryRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, inv *domain.Inventory) error
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *domain.InventoryMovement) error
}

type CouponRepository interface {
	Insert(ctx context.Context, c *domain.Coupon) error
}

// Result counts what a seed run inserted and skipped.
type Result struct {
	Products int
	Coupons  int
	Skipped  int
}

type Seeder struct {
	db        database.TxBeginner
	products  ProductRepository
	inventory InventoryRepository
	coupons   CouponRepository
	logger    *zap.Logger
}

func NewSeeder(db database.TxBeginner, products ProductRepository, inventory InventoryRepository, coupons CouponRepository, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:        db,
		products:  products,
		inventory: inventory,
		coupons:   coupons,
		logger:    logger,
	}
}

func (s *Seeder) LoadFile(ctx context.Context, path string) (*Result, error) {
	f, err := commons.LoadYAML[File](path)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, *f)
}

// Load inserts the products and coupons of f. Entries whose SKU or code
// already exists are skipped, so a file can be applied repeatedly.
func (s *Seeder) Load(ctx context.Context, f File) (*Result, error) {
	coupons, err := f.validate()
	if err != nil {
		return nil, err
	}

	var res Result
	for _, p := range f.Products {
		err := s.insertProduct(ctx, p)
		if _, ok := apperrors.IsConflictError(err); ok {
			s.logger.Info("product already seeded", zap.String("sku", p.SKU))
			res.Skipped++
			continue
		}
		if err != nil {
			return &res, fmt.Errorf("seeding product %s: %w", p.SKU, err)
		}
		res.Products++
	}

	for _, coupon := range coupons {
		err := s.coupons.Insert(ctx, coupon)
		if _, ok := apperrors.IsConflictError(err); ok {
			s.logger.Info("coupon already seeded", zap.String("code", coupon.Code))
			res.Skipped++
			continue
		}
		if err != nil {
			return &res, fmt.Errorf("seeding coupon %s: %w", coupon.Code, err)
		}
		res.Coupons++
	}

	s.logger.Info("seed applied",
		zap.Int("products", res.Products),
		zap.Int("coupons", res.Coupons),
		zap.Int("skipped", res.Skipped),
	)
	return &res, nil
}

func (s *Seeder) insertProduct(ctx context.Context, p Product) error {
	product := &domain.Product{
		SKU:         strings.TrimSpace(p.SKU),
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Category:    p.Category,
		Price:       decimal.RequireFromString(p.Price).Round(2),
		Image:       p.Image,
		IsActive:    !p.Inactive,
		Rating:      decimal.Zero,
	}

	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.products.Insert(ctx, tx, product); err != nil {
			return err
		}
		if p.Stock == nil {
			return nil
		}

		now := time.Now().UTC()
		inv := &domain.Inventory{
			ProductID:         product.ID,
			Quantity:          *p.Stock,
			LowStockThreshold: 10,
			Location:          p.Location,
			LastRestockedAt:   &now,
		}
		if p.LowStockThreshold != nil {
			inv.LowStockThreshold = *p.LowStockThreshold
		}
		if err := s.inventory.Insert(ctx, tx, inv); err != nil {
			return err
		}

		ref := domain.ReferenceManual
		return s.inventory.InsertMovement(ctx, tx, &domain.InventoryMovement{
			ProductID:      product.ID,
			MovementType:   domain.MovementRestock,
			QuantityChange: *p.Stock,
			ReferenceType:  &ref,
		})
	})
}

// validate checks the whole file before anything is written and returns the
// coupons converted to their domain form.
func (f File) validate() ([]*domain.Coupon, error) {
	var details []apperrors.ValidationDetail
	add := func(field, msg string) {
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
	}

	for i, p := range f.Products {
		field := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(p.SKU) == "" {
			add(field+".sku", "sku is required")
		}
		if strings.TrimSpace(p.Name) == "" {
			add(field+".name", "name is required")
		}
		if price, err := decimal.NewFromString(p.Price); err != nil || price.IsNegative() {
			add(field+".price", "price must be a non-negative number")
		}
		if p.Stock != nil && *p.Stock < 0 {
			add(field+".stock", "stock must be non-negative")
		}
	}

	coupons := make([]*domain.Coupon, 0, len(f.Coupons))
	for i, c := range f.Coupons {
		coupon, err := c.toDomain()
		if err != nil {
			add(fmt.Sprintf("coupons[%d]", i), err.Error())
			continue
		}
		coupons = append(coupons, coupon)
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid seed file", details...)
	}
	return coupons, nil
}

func (c Coupon) toDomain() (*domain.Coupon, error) {
	if strings.TrimSpace(c.Code) == "" {
		return nil, fmt.Errorf("code is required")
	}
	discountType := domain.DiscountType(c.DiscountType)
	if discountType != domain.DiscountPercentage && discountType != domain.DiscountFixed {
		return nil, fmt.Errorf("discount_type must be percentage or fixed")
	}
	value, err := decimal.NewFromString(c.DiscountValue)
	if err != nil || !value.IsPositive() {
		return nil, fmt.Errorf("discount_value must be a positive number")
	}

	coupon := &domain.Coupon{
		Code:          c.Code,
		Name:          c.Name,
		DiscountType:  discountType,
		DiscountValue: value,
		UsageLimit:    c.UsageLimit,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
		IsActive:      true,
	}
	if coupon.MinPurchaseAmount, err = nullDecimal(c.MinPurchaseAmount); err != nil {
		return nil, fmt.Errorf("min_purchase_amount: %w", err)
	}
	if coupon.MaxDiscountAmount, err = nullDecimal(c.MaxDiscountAmount); err != nil {
		return nil, fmt.Errorf("max_discount_amount: %w", err)
	}
	return coupon, nil
}

func nullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// New builds a Seeder over the SQL repositories of db.
func New(db *sqlx.DB, logger *zap.Logger) *Seeder {
	return NewSeeder(db,
		productrepo.NewSQLRepository(db),
		productrepo.NewSQLInventoryRepository(db),
		couponrepo.NewSQLCouponRepository(db),
		logger,
	)
}
