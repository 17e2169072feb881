// Package config loads the flash sector map from an INI file, the way the
// object-dictionary parser in the pack this client's idiom is drawn from
// loads EDS files: one section per entry, fields read as typed keys.
package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kjdev/kwp2000tool/pkg/kwp"
	"gopkg.in/ini.v1"
)

// Sector describes one named, contiguous region of ECU flash memory.
type Sector struct {
	Name     string
	Start    uint32
	Length   uint32
	ReadOnly bool
}

// End returns the address one past the sector's last byte.
func (s Sector) End() uint32 { return s.Start + s.Length }

// SectorMap is an ascending, non-overlapping set of flash sectors.
type SectorMap []Sector

// LoadSectorMap reads a sector map from an INI file at path. Each section
// is one sector; its name is the section name, and it must carry Start and
// Length keys (accepted in any strconv.ParseUint base-0 form, so both
// "0x800000" and "8388608" work), plus an optional boolean ReadOnly key.
// The resulting map is sorted by Start and validated non-overlapping.
func LoadSectorMap(path string) (SectorMap, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	var sectors SectorMap
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		start, err := strconv.ParseUint(section.Key("Start").Value(), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("config: sector %q: invalid Start: %w", section.Name(), err)
		}
		length, err := strconv.ParseUint(section.Key("Length").Value(), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("config: sector %q: invalid Length: %w", section.Name(), err)
		}

		sectors = append(sectors, Sector{
			Name:     section.Name(),
			Start:    uint32(start),
			Length:   uint32(length),
			ReadOnly: section.Key("ReadOnly").MustBool(false),
		})
	}

	sort.Slice(sectors, func(i, j int) bool { return sectors[i].Start < sectors[j].Start })

	for i := 1; i < len(sectors); i++ {
		if sectors[i].Start < sectors[i-1].End() {
			return nil, fmt.Errorf("config: sector %q overlaps preceding sector %q",
				sectors[i].Name, sectors[i-1].Name)
		}
	}

	return sectors, nil
}

// Find returns the named sector, if present.
func (m SectorMap) Find(name string) (Sector, bool) {
	for _, s := range m {
		if s.Name == name {
			return s, true
		}
	}
	return Sector{}, false
}

// ReadAll uploads every sector's contents from the ECU, keyed by sector
// name.
func (m SectorMap) ReadAll(client *kwp.Client) (map[string][]byte, error) {
	out := make(map[string][]byte, len(m))
	for _, s := range m {
		data, err := client.Upload(s.Start, s.Length)
		if err != nil {
			return nil, fmt.Errorf("config: reading sector %q: %w", s.Name, err)
		}
		out[s.Name] = data
	}
	return out, nil
}

// FlashAll downloads images to the ECU, one sector at a time, refusing to
// write a ReadOnly sector or an image whose length doesn't match its
// sector.
func (m SectorMap) FlashAll(client *kwp.Client, images map[string][]byte) error {
	for _, s := range m {
		data, ok := images[s.Name]
		if !ok {
			continue
		}
		if s.ReadOnly {
			return fmt.Errorf("config: sector %q is read-only", s.Name)
		}
		if uint32(len(data)) != s.Length {
			return fmt.Errorf("config: sector %q: image is %d bytes, want %d", s.Name, len(data), s.Length)
		}
		if err := client.Download(s.Start, data); err != nil {
			return fmt.Errorf("config: flashing sector %q: %w", s.Name, err)
		}
	}
	return nil
}
