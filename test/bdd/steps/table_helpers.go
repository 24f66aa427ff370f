package steps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// getCellValue gets a cell value from a table row by column name, using the
// first row as the header
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value)
		}
	}
	return ""
}

func getCellInt(table *godog.Table, row *messages.PickleTableRow, columnName string) (int, error) {
	value := getCellValue(table, row, columnName)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", columnName, value)
	}
	return n, nil
}

// parseRaces turns "human,aqua" into the bay's crew-support flags
func parseRaces(bay *station.Bay, races string) error {
	for _, r := range strings.Split(races, ",") {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "human":
			bay.SupportsHuman = true
		case "mega":
			bay.SupportsMega = true
		case "aqua", "amphibian":
			bay.SupportsAqua = true
		case "":
		default:
			return fmt.Errorf("unknown crew support %q", r)
		}
	}
	return nil
}

// parseIDList parses "3, 1, 2"
func parseIDList(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
