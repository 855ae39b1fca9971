package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cartflow/internal/applications/payment/model"
)

func TestApplyWebhookTarget(t *testing.T) {
	t.Run("succeeded settles a pending payment", func(t *testing.T) {
		payment := &model.Payment{State: model.StatePending}

		changed := applyWebhookTarget(payment, model.StateCompleted)

		assert.True(t, changed)
		assert.Equal(t, model.StateCompleted, payment.State)
	})

	t.Run("capturable-updated authorizes from authorizing", func(t *testing.T) {
		payment := &model.Payment{State: model.StateAuthorizing}

		changed := applyWebhookTarget(payment, model.StateAuthorized)

		assert.True(t, changed)
		assert.Equal(t, model.StateAuthorized, payment.State)
	})

	t.Run("same state is a no-op", func(t *testing.T) {
		payment := &model.Payment{State: model.StateCompleted}

		assert.False(t, applyWebhookTarget(payment, model.StateCompleted))
	})

	t.Run("unreachable target leaves payment untouched", func(t *testing.T) {
		payment := &model.Payment{State: model.StateCompleted}

		changed := applyWebhookTarget(payment, model.StateAuthorized)

		assert.False(t, changed)
		assert.Equal(t, model.StateCompleted, payment.State)
	})

	t.Run("void payment cannot complete", func(t *testing.T) {
		payment := &model.Payment{State: model.StateVoid}

		assert.False(t, applyWebhookTarget(payment, model.StateCompleted))
	})
}

func TestTransitionPath(t *testing.T) {
	path := transitionPath(model.StatePending, model.StateCompleted)
	assert.Equal(t, []model.State{
		model.StateAuthorizing,
		model.StateAuthorized,
		model.StateCapturing,
		model.StateCompleted,
	}, path)

	assert.Nil(t, transitionPath(model.StateRefunded, model.StatePending))
}
