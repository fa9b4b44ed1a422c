// Package cart implements the cart store: add-with-merge, remove, quantity
// update, and listing, each validated against current catalog stock. Stock
// is only checked here, never reserved; reservation happens at checkout.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/catalog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

type Service struct {
	repo    Repository
	catalog catalog.Store

	// Per-user locks serialize cart mutations so the find-then-save inside
	// AddItem cannot race another add into a duplicate (user, product,
	// size) line.
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewService(repo Repository, cat catalog.Store) *Service {
	return &Service{
		repo:    repo,
		catalog: cat,
		users:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}

// AddItem puts qty units of (productID, size) into the user's cart. When a
// line for that pair already exists the quantities merge in place. The
// merged quantity is validated against current catalog stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, size, qty int) (domain.Line, error) {
	if qty < domain.MinQuantity || qty > domain.MaxQuantity {
		return domain.Line{}, fault.Validation(
			"quantity must be between %d and %d, got %d", domain.MinQuantity, domain.MaxQuantity, qty)
	}
	if size < domain.MinSize || size > domain.MaxSize {
		return domain.Line{}, fault.Validation(
			"size must be between %d and %d, got %d", domain.MinSize, domain.MaxSize, size)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Line{}, err
	}
	if product.Stock < qty {
		return domain.Line{}, fault.InsufficientStock(
			"insufficient stock. Available: %d, Requested: %d", product.Stock, qty)
	}

	existing, err := s.repo.FindBySelector(ctx, userID, productID, size)
	switch {
	case err == nil:
		merged := existing.Quantity + qty
		if merged > product.Stock {
			return domain.Line{}, fault.InsufficientStock(
				"cannot add more items. Stock available: %d, Current in cart: %d, Requested: %d",
				product.Stock, existing.Quantity, qty)
		}
		existing.Quantity = merged
		line, err := s.repo.Save(ctx, existing)
		if err != nil {
			return domain.Line{}, err
		}
		slog.InfoContext(ctx, "merged cart line",
			"user_id", userID, "line_id", line.ID, "quantity", line.Quantity)
		return line, nil

	case fault.IsKind(err, fault.KindNotFound):
		line, err := s.repo.Save(ctx, domain.Line{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: productID,
			Size:      size,
			Quantity:  qty,
		})
		if err != nil {
			return domain.Line{}, err
		}
		slog.InfoContext(ctx, "created cart line",
			"user_id", userID, "line_id", line.ID, "quantity", line.Quantity)
		return line, nil

	default:
		return domain.Line{}, err
	}
}

// RemoveItem deletes the user's line unconditionally. Lines owned by other
// users are invisible and report fault.NotFound.
func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.Delete(ctx, userID, lineID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "removed cart line", "user_id", userID, "line_id", lineID)
	return nil
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// deletes the line instead; the second return value reports that case. The
// delete path is idempotent: a line that is already gone counts as removed,
// not as an error.
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, qty int) (domain.Line, bool, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if qty <= 0 {
		err := s.repo.Delete(ctx, userID, lineID)
		if err != nil && !fault.IsKind(err, fault.KindNotFound) {
			return domain.Line{}, false, err
		}
		if err == nil {
			slog.InfoContext(ctx, "deleted cart line on zero quantity",
				"user_id", userID, "line_id", lineID)
		}
		return domain.Line{}, true, nil
	}

	line, err := s.repo.FindByID(ctx, userID, lineID)
	if err != nil {
		return domain.Line{}, false, err
	}

	product, err := s.catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		return domain.Line{}, false, err
	}
	if qty > product.Stock {
		return domain.Line{}, false, fault.InsufficientStock(
			"insufficient stock. Available: %d, Requested: %d", product.Stock, qty)
	}

	line.Quantity = qty
	updated, err := s.repo.Save(ctx, line)
	if err != nil {
		return domain.Line{}, false, err
	}
	return updated, false, nil
}

// ListItems returns the user's lines in insertion order.
func (s *Service) ListItems(ctx context.Context, userID string) ([]domain.Line, error) {
	return s.repo.FindByUser(ctx, userID)
}
