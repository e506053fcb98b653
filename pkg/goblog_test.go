package pkg

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errStop = errors.New("stop")

type record struct {
	Name  string
	Count int
}

func TestGobLog_AppendAndRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.gob")

	log, err := CreateGobLog[record](path)
	require.NoError(t, err)
	require.Equal(t, path, log.Path())
	require.Zero(t, log.Len())

	items := []record{
		{Name: "alpha", Count: 1},
		{Name: "beta", Count: 2},
		{Name: "gamma", Count: 3},
	}

	for _, item := range items {
		require.NoError(t, log.Append(item))
	}

	require.Equal(t, uint64(3), log.Len())

	var got []record
	err = log.Range(func(index uint64, item record) error {
		require.Equal(t, uint64(len(got)), index)
		got = append(got, item)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, items, got)

	require.NoError(t, log.Close())
}

func TestGobLog_OpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.gob")

	log, err := CreateGobLog[record](path)
	require.NoError(t, err)
	require.NoError(t, log.Append(record{Name: "alpha", Count: 1}))
	require.NoError(t, log.Append(record{Name: "beta", Count: 2}))
	require.NoError(t, log.Close())

	reopened, err := OpenGobLog[record](path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, uint64(2), reopened.Len())

	var names []string
	err = reopened.Range(func(_ uint64, item record) error {
		names = append(names, item.Name)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, names)
}

func TestGobLog_CreateTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.gob")

	first, err := CreateGobLog[record](path)
	require.NoError(t, err)
	require.NoError(t, first.Append(record{Name: "stale"}))
	require.NoError(t, first.Close())

	second, err := CreateGobLog[record](path)
	require.NoError(t, err)
	defer second.Close()

	require.Zero(t, second.Len())
}

func TestGobLog_OpenMissing(t *testing.T) {
	_, err := OpenGobLog[record](filepath.Join(t.TempDir(), "absent.gob"))
	require.Error(t, err)
}

func TestGobLog_RangeStopsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.gob")

	log, err := CreateGobLog[record](path)
	require.NoError(t, err)
	defer log.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, log.Append(record{Count: i}))
	}

	seen := 0
	err = log.Range(func(index uint64, _ record) error {
		seen++
		if index == 1 {
			return errStop
		}

		return nil
	})
	require.ErrorIs(t, err, errStop)
	require.Equal(t, 2, seen)
}
