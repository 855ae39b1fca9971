package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cartflow/internal/applications/payment/model"
)

func TestPaymentTransitions(t *testing.T) {
	allowed := []struct{ from, to model.State }{
		{model.StatePending, model.StateAuthorizing},
		{model.StateAuthorizing, model.StateAuthorized},
		{model.StateAuthorizing, model.StateFailed},
		{model.StateAuthorizing, model.StatePending},
		{model.StateAuthorized, model.StateCapturing},
		{model.StateAuthorized, model.StateVoid},
		{model.StateCapturing, model.StateCompleted},
		{model.StateCapturing, model.StateFailed},
		{model.StateCompleted, model.StateRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	denied := []struct{ from, to model.State }{
		{model.StatePending, model.StateCompleted},
		{model.StateCompleted, model.StateVoid},
		{model.StateVoid, model.StateAuthorized},
		{model.StateFailed, model.StateAuthorizing},
		{model.StateRefunded, model.StateCompleted},
	}
	for _, tr := range denied {
		assert.False(t, model.CanTransition(tr.from, tr.to), "%s -> %s should be denied", tr.from, tr.to)
	}
}

func TestNetCaptured(t *testing.T) {
	payment := &model.Payment{Amount: 5000, State: model.StateCompleted}
	assert.Equal(t, int64(5000), payment.NetCaptured())

	payment.RefundedAmount = 2000
	assert.Equal(t, int64(3000), payment.NetCaptured())

	payment.RefundedAmount = 5000
	payment.State = model.StateRefunded
	assert.Equal(t, int64(0), payment.NetCaptured())

	authorized := &model.Payment{Amount: 5000, State: model.StateAuthorized}
	assert.Equal(t, int64(0), authorized.NetCaptured())
}
