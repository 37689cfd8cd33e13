package cart

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/angelmondragon/storefront-session/internal/catalog"
	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	lines     []catalogapi.CartLine
	calls     []string
	addErr    error
	fetchErr  error
	nextID    int
	inFlight  int
	maxFlight int
}

func (f *fakeBackend) enter(op string) func() {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func (f *fakeBackend) FetchCart(context.Context) ([]catalogapi.CartLine, error) {
	defer f.enter("fetch")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]catalogapi.CartLine(nil), f.lines...), nil
}

func (f *fakeBackend) AddToCart(_ context.Context, req catalogapi.AddToCartRequest) error {
	defer f.enter("add")()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.nextID++
	f.lines = append(f.lines, catalogapi.CartLine{
		ID:       catalogapi.ID(strconv.Itoa(f.nextID)),
		Product:  catalogapi.Product{ID: req.ProductID, Name: "Tee", Price: decimal.RequireFromString("399")},
		Size:     req.Size,
		Quantity: req.Quantity,
	})
	return nil
}

func (f *fakeBackend) UpdateQuantity(_ context.Context, lineID catalogapi.ID, quantity int) error {
	defer f.enter("update")()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines[i].Quantity = quantity
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

func (f *fakeBackend) RemoveLine(_ context.Context, lineID catalogapi.ID) error {
	defer f.enter("remove")()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].ID == lineID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

func (f *fakeBackend) opCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestAddWithoutSizeMakesNoNetworkCall(t *testing.T) {
	backend := &fakeBackend{}
	model := NewModel(backend, nil, nil)

	_, err := model.Add(context.Background(), AddInput{ProductID: "7", Size: "  "})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Please select a size first.", typed.Message())
	assert.Empty(t, backend.opCalls())
}

func TestAddThenRefetch(t *testing.T) {
	backend := &fakeBackend{}
	model := NewModel(backend, catalog.NewPresenter("https://img.example.com"), nil)

	view, err := model.Add(context.Background(), AddInput{ProductID: "7", Size: "M"})
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "fetch"}, backend.opCalls())
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].Quantity)
	assert.Equal(t, "399.00", view.Lines[0].LineTotal)
	assert.Equal(t, "399.00", view.Subtotal)
	assert.False(t, view.FreeDelivery)
	assert.False(t, view.Empty)

	view, err = model.ChangeQuantity(context.Background(), view.Lines[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "1197.00", view.Subtotal)
	assert.True(t, view.FreeDelivery)
	assert.Equal(t, 3, view.ItemCount)

	view, err = model.Remove(context.Background(), view.Lines[0].ID)
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, "0.00", view.Subtotal)
	assert.NotNil(t, view.Lines)
}

func TestChangeQuantityOutOfRange(t *testing.T) {
	backend := &fakeBackend{}
	model := NewModel(backend, nil, nil)

	for _, qty := range []int{0, 11, -1} {
		_, err := model.ChangeQuantity(context.Background(), "1", qty)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("quantity %d: expected validation error, got %v", qty, err)
		}
	}
	assert.Empty(t, backend.opCalls())
}

func TestRejectedAddSurfacesDetailAndSkipsRefetch(t *testing.T) {
	backend := &fakeBackend{addErr: pkgerrors.New(pkgerrors.CodeRejected, "Only 2 left in stock")}
	model := NewModel(backend, nil, nil)

	_, err := model.Add(context.Background(), AddInput{ProductID: "7", Size: "M", Quantity: 3})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Only 2 left in stock", typed.Message())
	assert.Equal(t, []string{"add"}, backend.opCalls())
}

func TestRefreshFailureReturnsNoView(t *testing.T) {
	backend := &fakeBackend{fetchErr: pkgerrors.Wrap(pkgerrors.CodeNetwork, errors.New("dial tcp"), "fetch cart failed")}
	model := NewModel(backend, nil, nil)

	view, err := model.Refresh(context.Background())
	require.Error(t, err)
	assert.Nil(t, view.Lines)
	assert.Equal(t, "", view.Subtotal)
}

func TestMutationsAreSerialized(t *testing.T) {
	backend := &fakeBackend{}
	model := NewModel(backend, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = model.Add(context.Background(), AddInput{ProductID: "7", Size: "L"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, backend.maxFlight)
	view, err := model.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Lines, 8)

	calls := backend.opCalls()
	for i := 0; i+1 < 16; i += 2 {
		assert.Equal(t, "add", calls[i])
		assert.Equal(t, "fetch", calls[i+1])
	}
}
