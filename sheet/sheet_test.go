package sheet

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheetName string, rows [][]interface{}) string {
	t.Helper()
	file := excelize.NewFile()
	idx, err := file.NewSheet(sheetName)
	require.NoError(t, err)
	file.SetActiveSheet(idx)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheetName, addr, &row))
	}
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, file.SaveAs(path))
	require.NoError(t, file.Close())
	return path
}

var header = []interface{}{
	"client_id", "client_name", "client_phone", "client_email",
	"restaurant_name", "pickupAddressBookId", "deliveryRawAddress",
	"deliveryLattitude", "deliveryLongitude", "deliveryDetails",
	"deliveryFrequency", "order_id", "pickup_time_utc", "pickup_code",
	"ADDRESS_CITY_NAME", "ADDRESS_COUNTRY", "Address_postal_code",
}

func TestLoadTypedRecords(t *testing.T) {
	path := writeWorkbook(t, "FINAL_ORDERS", [][]interface{}{
		header,
		{
			"client-1", "Maria Lopez", "+34600111222", "maria@example.com",
			"La Cocina", "a3f1c9d0-4b2e-4f6a-9c8d-1e2f3a4b5c6d", "Calle Mayor 1, Madrid",
			"40.4168", "-3.7038", "2nd floor",
			"3", "Lunch menu A", "2025-06-02T11:30:00Z", "PC-9",
			"Madrid", "ES", "28013",
		},
	})
	logger, _ := test.NewNullLogger()
	loader := NewLoader("FINAL_ORDERS", DefaultMapping(), logger)

	records, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "client-1", rec.ClientID)
	assert.Equal(t, "Maria Lopez", rec.ClientName)
	assert.Equal(t, "La Cocina", rec.RestaurantName)
	assert.Equal(t, 40.4168, rec.DeliveryLatitude)
	assert.Equal(t, -3.7038, rec.DeliveryLongitude)
	assert.Equal(t, 3, rec.DeliveryFrequency)
	assert.Equal(t, "Lunch menu A", rec.OrderDescription)
	assert.Equal(t, "2025-06-02T11:30:00Z", rec.PickupTimeUTC)
	assert.Equal(t, "Madrid", rec.City)
}

func TestLoadSkipsUnparseableCoordinates(t *testing.T) {
	path := writeWorkbook(t, "FINAL_ORDERS", [][]interface{}{
		header,
		{
			"client-1", "Maria Lopez", "+34600111222", "maria@example.com",
			"La Cocina", "book-1", "Calle Mayor 1",
			"not-a-number", "-3.7038", "",
			"3", "Lunch", "2025-06-02T11:30:00Z", "", "", "", "",
		},
		{
			"client-2", "Ana Ruiz", "+34600333444", "ana@example.com",
			"El Horno", "book-2", "Gran Via 2",
			"40,4168", "-3.70", "",
			"5", "Dinner", "2025-06-02T19:30:00Z", "", "", "", "",
		},
	})
	logger, hook := test.NewNullLogger()
	loader := NewLoader("FINAL_ORDERS", DefaultMapping(), logger)

	records, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// decimal comma is accepted, garbage is not
	assert.Equal(t, "client-2", records[0].ClientID)
	assert.Equal(t, 40.4168, records[0].DeliveryLatitude)
	assert.NotEmpty(t, hook.Entries)
}

func TestLoadUnknownFrequencyKeptForFilter(t *testing.T) {
	path := writeWorkbook(t, "FINAL_ORDERS", [][]interface{}{
		header,
		{
			"client-1", "Maria Lopez", "+34600111222", "maria@example.com",
			"La Cocina", "book-1", "Calle Mayor 1",
			"40.4", "-3.7", "",
			"7", "Lunch", "2025-06-02T11:30:00Z", "", "", "", "",
		},
	})
	logger, _ := test.NewNullLogger()
	loader := NewLoader("FINAL_ORDERS", DefaultMapping(), logger)

	records, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	// the schedule filter owns the unknown-frequency warning
	assert.Equal(t, 7, records[0].DeliveryFrequency)
}

func TestLoadMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "OTHER", [][]interface{}{header})
	logger, _ := test.NewNullLogger()
	loader := NewLoader("FINAL_ORDERS", DefaultMapping(), logger)

	_, err := loader.Load(path)
	assert.Error(t, err)
}
