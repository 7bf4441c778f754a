package stopfile

import (
	"fmt"
	"route-planner-service/internal/domain"
)

// AddressTable is a sheet with a required "Address" column.
type AddressTable struct {
	*Table
	addressCol int
}

// ReadAddresses loads a sheet and fails unless it has an "Address" column.
func ReadAddresses(path string) (*AddressTable, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns("Address")
	if err != nil {
		return nil, fmt.Errorf("read addresses %q: %w", path, err)
	}
	return &AddressTable{Table: t, addressCol: cols[0]}, nil
}

// Addresses returns the Address cell of every row in order.
func (t *AddressTable) Addresses() []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[t.addressCol]
	}
	return out
}

// WriteGeocoded writes the table with Latitude and Longitude columns appended.
// coords is aligned with the rows; a nil entry leaves both cells empty.
func WriteGeocoded(path string, t *AddressTable, coords []*domain.Coordinates) error {
	if len(coords) != len(t.Rows) {
		return fmt.Errorf("write geocoded %q: %d coordinates for %d rows", path, len(coords), len(t.Rows))
	}

	header := append(append([]string(nil), t.Header...), "Latitude", "Longitude")
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]any, 0, len(row)+2)
		for _, cell := range row {
			out = append(out, cell)
		}
		if c := coords[i]; c != nil {
			out = append(out, c.Lat, c.Lon)
		} else {
			out = append(out, nil, nil)
		}
		rows[i] = out
	}

	if err := writeRows(path, header, rows); err != nil {
		return fmt.Errorf("write geocoded %q: %w", path, err)
	}
	return nil
}
