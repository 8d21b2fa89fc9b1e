package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/artisanmarket/cart-backend/pkg/enums"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
	"github.com/artisanmarket/cart-backend/pkg/logger"
	"github.com/artisanmarket/cart-backend/pkg/metrics"
)

const unlockTimeout = 2 * time.Second

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    Repository
	Locker  SessionLocker
	Metrics *metrics.CartMetrics
	Logger  *logger.Logger
	// Events is optional.
	Events EventPublisher
}

// Service owns one cart per session. Every mutating call loads the session's
// state, applies a single store operation and writes the result back.
type Service interface {
	GetCart(ctx context.Context, sessionID string) (*View, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*View, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*View, error)
	Clear(ctx context.Context, sessionID string) (*View, error)
	Open(ctx context.Context, sessionID string) (*View, error)
	Close(ctx context.Context, sessionID string) (*View, error)
}

type service struct {
	repo    Repository
	locker  SessionLocker
	metrics *metrics.CartMetrics
	logg    *logger.Logger
	events  EventPublisher
}

// NewService builds a cart service. Locker defaults to an in-process LocalLocker.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	locker := params.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		locker:  locker,
		metrics: params.Metrics,
		logg:    logg,
		events:  params.Events,
	}, nil
}

// GetCart returns the session's cart; a session with nothing stored yields an
// empty, closed cart.
func (s *service) GetCart(ctx context.Context, sessionID string) (*View, error) {
	start := time.Now()
	view, err := s.get(ctx, sessionID)
	s.metrics.Observe(enums.CartOperationGet.String(), time.Since(start), err)
	return view, err
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*View, error) {
	return s.mutate(ctx, enums.CartOperationAdd, sessionID, input.Product.ProductID, func(store *Store) error {
		return store.Add(input.Product, input.Quantity)
	})
}

func (s *service) RemoveItem(ctx context.Context, sessionID, productID string) (*View, error) {
	return s.mutate(ctx, enums.CartOperationRemove, sessionID, productID, func(store *Store) error {
		store.Remove(productID)
		return nil
	})
}

// UpdateQuantity sets an absolute quantity; zero or less removes the item.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*View, error) {
	return s.mutate(ctx, enums.CartOperationUpdateQuantity, sessionID, productID, func(store *Store) error {
		store.UpdateQuantity(productID, quantity)
		return nil
	})
}

// Clear empties the cart. Callers invoke it after a confirmed order.
func (s *service) Clear(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, enums.CartOperationClear, sessionID, "", func(store *Store) error {
		store.Clear()
		return nil
	})
}

func (s *service) Open(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, enums.CartOperationOpen, sessionID, "", func(store *Store) error {
		store.Open()
		return nil
	})
}

func (s *service) Close(ctx context.Context, sessionID string) (*View, error) {
	return s.mutate(ctx, enums.CartOperationClose, sessionID, "", func(store *Store) error {
		store.Close()
		return nil
	})
}

func (s *service) get(ctx context.Context, sessionID string) (*View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return newView(sessionID, store), nil
}

func (s *service) mutate(ctx context.Context, op enums.CartOperation, sessionID, productID string, apply func(*Store) error) (*View, error) {
	start := time.Now()
	view, err := s.apply(ctx, sessionID, apply)
	s.metrics.Observe(op.String(), time.Since(start), err)
	if err != nil {
		if pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus >= 500 {
			s.logg.Error(s.logg.WithField(ctx, "operation", op.String()), "cart operation failed", err)
		}
		return nil, err
	}
	s.publish(ctx, newEvent(op, productID, view, start))
	return view, nil
}

func (s *service) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"operation": event.Operation.String(),
			"error":     err.Error(),
		}), "failed to publish cart event")
	}
}

func (s *service) apply(ctx context.Context, sessionID string, apply func(*Store) error) (*View, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	waitStart := time.Now()
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, ErrLockNotAcquired):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart is being updated by another request")
		}
		return nil, dependencyError(err, "acquire cart lock")
	}
	s.metrics.ObserveLockWait(time.Since(waitStart))
	defer s.unlock(ctx, unlock)

	store, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(store); err != nil {
		return nil, err
	}

	state := store.Snapshot()
	if state.IsZero() {
		// An empty, closed cart reads the same as a missing one.
		err = s.repo.Delete(ctx, sessionID)
	} else {
		err = s.repo.Save(ctx, sessionID, state)
	}
	if err != nil {
		return nil, dependencyError(err, "save cart")
	}

	view := newView(sessionID, store)
	s.metrics.ObserveCartSize(view.Totals.TotalItems)
	return view, nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Store, error) {
	state, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, dependencyError(err, "load cart")
	}
	store := NewStore()
	if state == nil {
		return store, nil
	}
	if err := store.Restore(*state); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *service) unlock(ctx context.Context, unlock Unlock) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
	defer cancel()
	if err := unlock(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "failed to release cart session lock")
	}
}

func newView(sessionID string, store *Store) *View {
	return &View{
		SessionID: sessionID,
		Items:     store.Items(),
		Totals:    store.Totals(),
		IsOpen:    store.IsOpen(),
	}
}

func validateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}

func dependencyError(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
