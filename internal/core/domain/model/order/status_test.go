package order_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should have correct enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(order.Unknown))
		assert.Equal(t, 1, int(order.Pending))
		assert.Equal(t, 2, int(order.Assigned))
		assert.Equal(t, 3, int(order.Accepted))
		assert.Equal(t, 4, int(order.Delivered))
	})

	t.Run("should expose wire-contract strings", func(t *testing.T) {
		assert.Equal(t, "PENDING", order.Pending.String())
		assert.Equal(t, "ASSIGNED", order.Assigned.String())
		assert.Equal(t, "ACCEPTED", order.Accepted.String())
		assert.Equal(t, "DELIVERED", order.Delivered.String())
		assert.Equal(t, "UNKNOWN", order.Unknown.String())
		assert.Equal(t, "UNKNOWN", order.Status(42).String())
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should validate valid statuses", func(t *testing.T) {
		validStatuses := []order.Status{
			order.Pending,
			order.Assigned,
			order.Accepted,
			order.Delivered,
		}

		for _, status := range validStatuses {
			t.Run(fmt.Sprintf("should validate %s status", status), func(t *testing.T) {
				require.NoError(t, status.Validate())
			})
		}
	})

	t.Run("should reject invalid status values", func(t *testing.T) {
		invalidStatuses := []order.Status{
			order.Unknown,
			order.Status(-1),
			order.Status(5),
			order.Status(100),
		}

		for _, status := range invalidStatuses {
			t.Run(fmt.Sprintf("should reject status value %d", int(status)), func(t *testing.T) {
				err := status.Validate()

				require.Error(t, err)
				assert.IsType(t, &errs.ValueIsInvalidError{}, err)
				assert.Contains(t, err.Error(), "status is invalid")
			})
		}
	})
}

func TestStatus_Transitions(t *testing.T) {
	t.Run("linear workflow succeeds step by step", func(t *testing.T) {
		assigned, err := order.Pending.Assign()
		require.NoError(t, err)
		assert.Equal(t, order.Assigned, assigned)

		accepted, err := assigned.Accept()
		require.NoError(t, err)
		assert.Equal(t, order.Accepted, accepted)

		delivered, err := accepted.Complete()
		require.NoError(t, err)
		assert.Equal(t, order.Delivered, delivered)
		assert.True(t, delivered.IsTerminal())
	})

	t.Run("assign is only valid from Pending", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Assigned, order.Accepted, order.Delivered} {
			_, err := status.Assign()

			require.Error(t, err, "status %s", status)
			require.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("accept is only valid from Assigned", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Pending, order.Accepted, order.Delivered} {
			_, err := status.Accept()

			require.Error(t, err, "status %s", status)
			require.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("complete is only valid from Accepted", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Pending, order.Assigned, order.Delivered} {
			_, err := status.Complete()

			require.Error(t, err, "status %s", status)
			require.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("no transition skips a state or moves backward", func(t *testing.T) {
		// From Pending the only reachable state is Assigned.
		_, err := order.Pending.Accept()
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		_, err = order.Pending.Complete()
		require.ErrorIs(t, err, order.ErrInvalidTransition)

		// Delivered is terminal.
		_, err = order.Delivered.Assign()
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		_, err = order.Delivered.Accept()
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		_, err = order.Delivered.Complete()
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})
}

func TestStatus_ValidateCanHaveDriver(t *testing.T) {
	t.Run("pending orders must not have a driver", func(t *testing.T) {
		require.NoError(t, order.Pending.ValidateCanHaveDriver(false))
		require.Error(t, order.Pending.ValidateCanHaveDriver(true))
	})

	t.Run("post-assignment statuses require a driver", func(t *testing.T) {
		for _, status := range []order.Status{order.Assigned, order.Accepted, order.Delivered} {
			require.NoError(t, status.ValidateCanHaveDriver(true), "status %s", status)
			require.Error(t, status.ValidateCanHaveDriver(false), "status %s", status)
		}
	})
}
