package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSectorFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sectors.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadSectorMapSortsAndParses(t *testing.T) {
	path := writeSectorFile(t, `
[CALIBRATION]
Start = 0x800000
Length = 65536

[BOOT]
Start = 0x0
Length = 16384
ReadOnly = true
`)

	sectors, err := LoadSectorMap(path)
	require.NoError(t, err)
	require.Len(t, sectors, 2)

	require.Equal(t, "BOOT", sectors[0].Name)
	require.Equal(t, uint32(0), sectors[0].Start)
	require.Equal(t, uint32(16384), sectors[0].Length)
	require.True(t, sectors[0].ReadOnly)

	require.Equal(t, "CALIBRATION", sectors[1].Name)
	require.Equal(t, uint32(0x800000), sectors[1].Start)
	require.False(t, sectors[1].ReadOnly)
}

func TestLoadSectorMapRejectsOverlap(t *testing.T) {
	path := writeSectorFile(t, `
[A]
Start = 0x1000
Length = 0x1000

[B]
Start = 0x1800
Length = 0x1000
`)

	_, err := LoadSectorMap(path)
	require.Error(t, err)
}

func TestFindMissingSector(t *testing.T) {
	m := SectorMap{{Name: "BOOT", Start: 0, Length: 16384}}
	_, ok := m.Find("CALIBRATION")
	require.False(t, ok)

	s, ok := m.Find("BOOT")
	require.True(t, ok)
	require.Equal(t, uint32(16384), s.Length)
}

func TestFlashAllRejectsSizeMismatch(t *testing.T) {
	m := SectorMap{{Name: "CALIBRATION", Start: 0x800000, Length: 16}}
	err := m.FlashAll(nil, map[string][]byte{"CALIBRATION": make([]byte, 8)})
	require.Error(t, err)
}

func TestFlashAllRejectsReadOnly(t *testing.T) {
	m := SectorMap{{Name: "BOOT", Start: 0, Length: 8, ReadOnly: true}}
	err := m.FlashAll(nil, map[string][]byte{"BOOT": make([]byte, 8)})
	require.Error(t, err)
}
