package audit

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"orderbot/models"
)

var excelHeader = []string{
	"timestamp", "order_id", "quote_id", "order_state", "created_at",
	"client_id", "client_name", "client_phone", "client_email",
	"restaurant_name", "pickup_address_book_id", "pickup_time",
	"pickup_order_code", "delivery_address", "delivery_latitude",
	"delivery_longitude", "quote_price", "currency", "description",
}

// ExcelSink appends one row per placed order to a workbook, creating the
// file and header on first use.
type ExcelSink struct {
	Path      string
	SheetName string
	Logger    *log.Logger
}

func NewExcelSink(path string, logger *log.Logger) *ExcelSink {
	return &ExcelSink{Path: path, SheetName: "Orders-Summary", Logger: logger}
}

func (s *ExcelSink) Append(rec models.AuditRecord) error {
	file, created, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Errorln(err)
		}
	}()
	rows, err := file.GetRows(s.SheetName)
	if err != nil {
		return err
	}
	next := len(rows) + 1
	if created {
		if err := s.writeRow(file, 1, headerCells()); err != nil {
			return err
		}
		next = 2
	}
	if err := s.writeRow(file, next, recordCells(rec)); err != nil {
		return err
	}
	return file.SaveAs(s.Path)
}

func (s *ExcelSink) Close() error { return nil }

func (s *ExcelSink) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(s.Path); err == nil {
		file, err := excelize.OpenFile(s.Path)
		return file, false, err
	}
	file := excelize.NewFile()
	idx, err := file.NewSheet(s.SheetName)
	if err != nil {
		return nil, false, err
	}
	file.SetActiveSheet(idx)
	return file, true, nil
}

func (s *ExcelSink) writeRow(file *excelize.File, row int, cells []interface{}) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return file.SetSheetRow(s.SheetName, addr, &cells)
}

func headerCells() []interface{} {
	cells := make([]interface{}, len(excelHeader))
	for i, h := range excelHeader {
		cells[i] = h
	}
	return cells
}

func recordCells(rec models.AuditRecord) []interface{} {
	return []interface{}{
		rec.Timestamp.Format(timestampFormat),
		rec.OrderID,
		rec.QuoteID,
		rec.OrderState,
		rec.CreatedAt,
		rec.ClientID,
		rec.ClientName,
		rec.ClientPhone,
		rec.ClientEmail,
		rec.RestaurantName,
		rec.PickupAddressBookID,
		rec.PickupTime,
		rec.PickupOrderCode,
		rec.DeliveryAddress,
		rec.DeliveryLatitude,
		rec.DeliveryLongitude,
		rec.QuotePrice,
		rec.Currency,
		rec.Description,
	}
}
