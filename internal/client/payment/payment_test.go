package payment

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/betterimg/betterimg/internal/logging"
	"github.com/stretchr/testify/require"
)

type fakeWidget struct {
	orderID    string
	approveURL string
	createErr  error

	captured   []string
	capture    *Capture
	captureErr error
}

func (f *fakeWidget) CreateOrder(_ context.Context, order Order) (string, string, error) {
	return f.orderID, f.approveURL, f.createErr
}

func (f *fakeWidget) CaptureOrder(_ context.Context, orderID string) (*Capture, error) {
	f.captured = append(f.captured, orderID)
	return f.capture, f.captureErr
}

type fakeAdder struct {
	added   []int
	balance int
	err     error
}

func (f *fakeAdder) AddCredits(_ context.Context, amount int) (int, error) {
	f.added = append(f.added, amount)
	if f.err != nil {
		return f.balance, f.err
	}
	f.balance += amount
	return f.balance, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func TestTrigger_ShowCreatesFixedOrder(t *testing.T) {
	w := &fakeWidget{orderID: "ord-1", approveURL: "https://pay.example/approve/ord-1"}
	tr := NewTrigger(w, &fakeAdder{}, testLogger())

	require.False(t, tr.Shown())

	url, err := tr.Show(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/approve/ord-1", url)
	require.True(t, tr.Shown())
}

func TestTrigger_ConfirmAddsPackAndHides(t *testing.T) {
	w := &fakeWidget{orderID: "ord-1", approveURL: "u", capture: &Capture{OrderID: "ord-1", Status: "COMPLETED"}}
	adder := &fakeAdder{balance: 10}
	tr := NewTrigger(w, adder, testLogger())

	_, err := tr.Show(context.Background())
	require.NoError(t, err)

	balance, err := tr.Confirm(context.Background())
	require.NoError(t, err)
	require.Equal(t, 110, balance)
	require.Equal(t, []int{CreditPack}, adder.added)
	require.Equal(t, []string{"ord-1"}, w.captured)
	require.False(t, tr.Shown())
}

func TestTrigger_ConfirmWithoutShow(t *testing.T) {
	tr := NewTrigger(&fakeWidget{}, &fakeAdder{}, testLogger())

	_, err := tr.Confirm(context.Background())
	require.True(t, errors.Is(err, ErrNoOrderShown))
}

func TestTrigger_CaptureErrorKeepsAffordance(t *testing.T) {
	w := &fakeWidget{orderID: "ord-1", approveURL: "u", captureErr: errors.New("declined")}
	adder := &fakeAdder{balance: 10}
	tr := NewTrigger(w, adder, testLogger())

	_, err := tr.Show(context.Background())
	require.NoError(t, err)

	_, err = tr.Confirm(context.Background())
	require.True(t, errors.Is(err, ErrPaymentFailed))
	require.True(t, tr.Shown(), "affordance must stay visible for retry")
	require.Empty(t, adder.added, "no credits on failed capture")
}

func TestTrigger_CreateOrderError(t *testing.T) {
	w := &fakeWidget{createErr: errors.New("api down")}
	tr := NewTrigger(w, &fakeAdder{}, testLogger())

	_, err := tr.Show(context.Background())
	require.True(t, errors.Is(err, ErrPaymentFailed))
	require.False(t, tr.Shown())
}

func TestTrigger_Cancel(t *testing.T) {
	w := &fakeWidget{orderID: "ord-1", approveURL: "u"}
	tr := NewTrigger(w, &fakeAdder{}, testLogger())

	_, err := tr.Show(context.Background())
	require.NoError(t, err)

	tr.Cancel()
	require.False(t, tr.Shown())
	tr.Cancel()
	require.False(t, tr.Shown())
}
