package kernel_test

import (
	"fmt"
	"testing"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableNumber(t *testing.T) {
	t.Run("should create table number within bounds", func(t *testing.T) {
		validNumbers := []int{kernel.TableNumberMin, 7, 42, kernel.TableNumberMax}

		for _, n := range validNumbers {
			t.Run(fmt.Sprintf("should accept %d", n), func(t *testing.T) {
				table, err := kernel.NewTableNumber(n)

				require.NoError(t, err)
				require.NoError(t, table.Validate())
				assert.Equal(t, n, table.Value())
			})
		}
	})

	t.Run("should reject numbers outside bounds", func(t *testing.T) {
		invalidNumbers := []int{0, -1, -999, kernel.TableNumberMax + 1}

		for _, n := range invalidNumbers {
			t.Run(fmt.Sprintf("should reject %d", n), func(t *testing.T) {
				_, err := kernel.NewTableNumber(n)

				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
			})
		}
	})
}

func TestTableNumber_Validate(t *testing.T) {
	t.Run("constructed table number is valid", func(t *testing.T) {
		table, err := kernel.NewTableNumber(3)

		require.NoError(t, err)
		require.NoError(t, table.Validate())
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var table kernel.TableNumber

		err := table.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrTableNumberIsNotConstructed, err)
	})
}

func TestTableNumber_String(t *testing.T) {
	table, err := kernel.NewTableNumber(12)

	require.NoError(t, err)
	assert.Equal(t, "12", table.String())
}

func TestTableNumber_IsEqual(t *testing.T) {
	t.Run("same number is equal", func(t *testing.T) {
		a, _ := kernel.NewTableNumber(5)
		b, _ := kernel.NewTableNumber(5)

		assert.True(t, a.IsEqual(b))
	})

	t.Run("different numbers are not equal", func(t *testing.T) {
		a, _ := kernel.NewTableNumber(5)
		b, _ := kernel.NewTableNumber(6)

		assert.False(t, a.IsEqual(b))
	})
}
