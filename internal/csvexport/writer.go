package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"invoicereader/internal/domain"
)

// BOM is the UTF-8 byte order mark, written first for Excel compatibility
// on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Invoice ID",
	"File Name",
	"Created At",
	"Summary",
	"Invoice Data",
	"Extracted Text",
}

// Write renders the given invoices as CSV. The extracted record is free-form,
// so top-level scalar fields are flattened into a readable summary column and
// the full record is carried verbatim in its own column.
func Write(w io.Writer, invoices []domain.Invoice) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range invoices {
		inv := &invoices[i]
		row := []string{
			inv.ID.String(),
			inv.FileName,
			inv.CreatedAt.UTC().Format(time.RFC3339),
			summarize(inv.InvoiceData),
			string(inv.InvoiceData),
			inv.ExtractedText,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// summarize flattens the top-level scalar fields of a structured record into
// "key=value" pairs, keys sorted for stable output. Nested values are skipped.
func summarize(data json.RawMessage) string {
	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return ""
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := record[k].(type) {
		case string:
			parts = append(parts, k+"="+v)
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		case bool:
			parts = append(parts, fmt.Sprintf("%s=%t", k, v))
		}
	}
	return strings.Join(parts, "; ")
}
