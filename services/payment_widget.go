package services

import (
	"context"
	"strings"
	"sync"

	"food-ordering/models"
	"food-ordering/utils"

	"github.com/google/uuid"
)

// PaymentRequest is what the payment widget is opened with.
type PaymentRequest struct {
	KeyID           string
	ProviderOrderID string
	Amount          int64
	Currency        string
	Name            string
	Description     string
	Prefill         models.BillingDetails
}

// PaymentResult carries the identifiers the provider hands back on success.
type PaymentResult struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}

type PaymentOutcomeKind int

const (
	PaymentCompleted PaymentOutcomeKind = iota + 1
	PaymentFailed
	PaymentDismissed
)

func (k PaymentOutcomeKind) String() string {
	switch k {
	case PaymentCompleted:
		return "completed"
	case PaymentFailed:
		return "failed"
	case PaymentDismissed:
		return "dismissed"
	}
	return "unknown"
}

type PaymentOutcome struct {
	Kind   PaymentOutcomeKind
	Result PaymentResult
	Reason string
}

// PaymentTask is one open payment widget. It settles exactly once, with
// one of three outcomes; later settle calls are ignored.
type PaymentTask struct {
	done     chan struct{}
	once     sync.Once
	outcome  PaymentOutcome
	onCancel func()
}

// NewPaymentTask returns an unsettled task. onCancel, if set, is called
// when the task is cancelled from our side so the widget can be closed.
func NewPaymentTask(onCancel func()) *PaymentTask {
	return &PaymentTask{done: make(chan struct{}), onCancel: onCancel}
}

func (t *PaymentTask) Complete(r PaymentResult) bool {
	return t.settle(PaymentOutcome{Kind: PaymentCompleted, Result: r})
}

func (t *PaymentTask) Fail(reason string) bool {
	return t.settle(PaymentOutcome{Kind: PaymentFailed, Reason: reason})
}

func (t *PaymentTask) Dismiss() bool {
	return t.settle(PaymentOutcome{Kind: PaymentDismissed})
}

// Cancel settles the task as dismissed and closes the widget.
func (t *PaymentTask) Cancel() {
	if t.settle(PaymentOutcome{Kind: PaymentDismissed, Reason: "cancelled"}) && t.onCancel != nil {
		t.onCancel()
	}
}

func (t *PaymentTask) settle(o PaymentOutcome) bool {
	settled := false
	t.once.Do(func() {
		t.outcome = o
		settled = true
		close(t.done)
	})
	return settled
}

func (t *PaymentTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task settles. If ctx ends first the task is
// cancelled and ctx's error is returned with the dismissed outcome.
func (t *PaymentTask) Wait(ctx context.Context) (PaymentOutcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		t.Cancel()
		<-t.done
		return t.outcome, ctx.Err()
	}
}

// PaymentWidget opens the provider's hosted checkout.
type PaymentWidget interface {
	Open(ctx context.Context, req PaymentRequest) (*PaymentTask, error)
}

// SandboxWidget settles payments locally, signing successful ones with the
// sandbox key secret the way the provider would. Decide picks the outcome;
// nil means every payment succeeds.
type SandboxWidget struct {
	Secret string
	Decide func(PaymentRequest) PaymentOutcomeKind
}

func (w *SandboxWidget) Open(_ context.Context, req PaymentRequest) (*PaymentTask, error) {
	task := NewPaymentTask(nil)

	kind := PaymentCompleted
	if w.Decide != nil {
		kind = w.Decide(req)
	}

	go func() {
		switch kind {
		case PaymentFailed:
			task.Fail("payment declined by sandbox")
		case PaymentDismissed:
			task.Dismiss()
		default:
			paymentID := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
			task.Complete(PaymentResult{
				ProviderOrderID:   req.ProviderOrderID,
				ProviderPaymentID: paymentID,
				Signature:         utils.SignPayment(req.ProviderOrderID, paymentID, w.Secret),
			})
		}
	}()
	return task, nil
}
