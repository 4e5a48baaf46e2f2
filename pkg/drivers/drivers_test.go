package drivers_test

import (
	"testing"

	. "github.com/pvginkel/gmtdata/pkg/drivers"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Run("registered drivers", func(t *testing.T) {
		for _, name := range []string{"mysql", "postgres", "sqlite"} {
			d, err := Get(name)
			require.NoError(t, err, name)
			require.Equal(t, name, d.Name)
			require.NotNil(t, d.Dialect)
			require.Equal(t, name, d.Dialect.Name())
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		d, err := Get("oracle")
		require.Nil(t, d)
		require.ErrorIs(t, err, ErrUnknownDriver)
		require.Contains(t, err.Error(), "oracle")
	})
}

func TestNames(t *testing.T) {
	require.Equal(t, []string{"mysql", "postgres", "sqlite"}, Names())
}

func TestOpen(t *testing.T) {
	d, err := Get("sqlite")
	require.NoError(t, err)

	db, err := d.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Ping())
}
