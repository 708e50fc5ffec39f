package order

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var requiredColumns = []string{"order_id", "email", "status"}

// ReadCSV parses an order export with the header columns order_id, email and status.
// Extra columns are ignored; rows with an empty order_id are skipped.
func ReadCSV(r io.Reader) ([]Order, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("order csv is empty")
		}
		return nil, fmt.Errorf("read order csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("order csv missing column %q", col)
		}
	}

	var orders []Order
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read order csv: %w", err)
		}

		id := strings.TrimSpace(record[index["order_id"]])
		if id == "" {
			continue
		}
		orders = append(orders, Order{
			OrderID:   id,
			UserEmail: strings.TrimSpace(record[index["email"]]),
			Status:    strings.TrimSpace(record[index["status"]]),
		})
	}
	return orders, nil
}
