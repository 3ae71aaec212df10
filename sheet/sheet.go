package sheet

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"orderbot/models"
)

// ColumnMapping names the sheet header for every logical field. One mapping
// object replaces the per-layout loader copies this tool used to need.
type ColumnMapping struct {
	ClientID            string
	ClientName          string
	ClientPhone         string
	ClientEmail         string
	RestaurantName      string
	PickupAddressBookID string
	DeliveryRawAddress  string
	DeliveryLatitude    string
	DeliveryLongitude   string
	DeliveryDetails     string
	DeliveryFrequency   string
	OrderDescription    string
	PickupTimeUTC       string
	PickupCode          string
	City                string
	Country             string
	PostalCode          string
}

// DefaultMapping matches the production FINAL_ORDERS sheet, including its
// historical "deliveryLattitude" spelling.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		ClientID:            "client_id",
		ClientName:          "client_name",
		ClientPhone:         "client_phone",
		ClientEmail:         "client_email",
		RestaurantName:      "restaurant_name",
		PickupAddressBookID: "pickupAddressBookId",
		DeliveryRawAddress:  "deliveryRawAddress",
		DeliveryLatitude:    "deliveryLattitude",
		DeliveryLongitude:   "deliveryLongitude",
		DeliveryDetails:     "deliveryDetails",
		DeliveryFrequency:   "deliveryFrequency",
		OrderDescription:    "order_id",
		PickupTimeUTC:       "pickup_time_utc",
		PickupCode:          "pickup_code",
		City:                "ADDRESS_CITY_NAME",
		Country:             "ADDRESS_COUNTRY",
		PostalCode:          "Address_postal_code",
	}
}

type Loader struct {
	SheetName string
	Mapping   ColumnMapping
	Logger    *log.Logger
}

func NewLoader(sheetName string, mapping ColumnMapping, logger *log.Logger) *Loader {
	return &Loader{SheetName: sheetName, Mapping: mapping, Logger: logger}
}

// Load reads the workbook and types every row. Rows with unparseable numeric
// cells are skipped with a warning; the pipeline re-validates the rest anyway.
func (l *Loader) Load(path string) ([]models.OrderRecord, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			l.Logger.Errorln(err)
		}
	}()
	rows, err := file.GetRows(l.SheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", l.SheetName)
	}
	cols := headerIndex(rows[0])
	records := make([]models.OrderRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cell := func(header string) string {
			idx, ok := cols[header]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		rec := models.OrderRecord{
			ClientID:            cell(l.Mapping.ClientID),
			ClientName:          cell(l.Mapping.ClientName),
			ClientPhone:         cell(l.Mapping.ClientPhone),
			ClientEmail:         cell(l.Mapping.ClientEmail),
			RestaurantName:      cell(l.Mapping.RestaurantName),
			PickupAddressBookID: cell(l.Mapping.PickupAddressBookID),
			DeliveryRawAddress:  cell(l.Mapping.DeliveryRawAddress),
			DeliveryDetails:     cell(l.Mapping.DeliveryDetails),
			OrderDescription:    cell(l.Mapping.OrderDescription),
			PickupTimeUTC:       cell(l.Mapping.PickupTimeUTC),
			PickupCode:          cell(l.Mapping.PickupCode),
			City:                cell(l.Mapping.City),
			Country:             cell(l.Mapping.Country),
			PostalCode:          cell(l.Mapping.PostalCode),
		}
		rec.DeliveryLatitude, err = parseFloat(cell(l.Mapping.DeliveryLatitude))
		if err != nil {
			l.Logger.Warnf("row %v: bad latitude %q, skipping", i+2, cell(l.Mapping.DeliveryLatitude))
			continue
		}
		rec.DeliveryLongitude, err = parseFloat(cell(l.Mapping.DeliveryLongitude))
		if err != nil {
			l.Logger.Warnf("row %v: bad longitude %q, skipping", i+2, cell(l.Mapping.DeliveryLongitude))
			continue
		}
		// an unknown frequency is kept as-is so the schedule filter can warn
		rec.DeliveryFrequency, _ = strconv.Atoi(cell(l.Mapping.DeliveryFrequency))
		records = append(records, rec)
	}
	l.Logger.Infof("loaded %v orders from sheet %s", len(records), l.SheetName)
	return records, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	return cols
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseFloat(val string) (float64, error) {
	val = strings.Replace(val, ",", ".", 1)
	return strconv.ParseFloat(val, 64)
}
