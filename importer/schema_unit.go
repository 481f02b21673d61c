package importer

import (
	"fmt"

	"dealerhub/record"
)

// UnitStatuses lists the accepted machine status values.
var UnitStatuses = []string{"in_stock", "installed", "operational", "maintenance", "decommissioned"}

var unitSchema = Schema{
	Kind:    record.KindUnit,
	Version: 1,
	Fields: []FieldRule{
		{Name: "serialNumber", Required: true, Kind: FieldString},
		{Name: "model", Required: true, Kind: FieldString},
		{Name: "brand", Kind: FieldString},
		{Name: "status", Required: true, Kind: FieldEnum, EnumValues: UnitStatuses},
		{Name: "dealerName", Kind: FieldString},
		{Name: "siteName", Kind: FieldString},
		{Name: "purchaseDate", Kind: FieldDate},
		{Name: "installationDate", Kind: FieldDate},
		{Name: "lastServiceDate", Kind: FieldDate},
		{Name: "notes", Kind: FieldFreeText},
	},
	build: buildUnit,
	stage: stageUnit,
}

func buildUnit(values Values) any {
	return record.Unit{
		SerialNumber:     values.String("serialNumber"),
		Model:            values.String("model"),
		Brand:            values.String("brand"),
		Status:           values.String("status"),
		DealerName:       values.String("dealerName"),
		SiteName:         values.String("siteName"),
		PurchaseDate:     values.Date("purchaseDate"),
		InstallationDate: values.Date("installationDate"),
		LastServiceDate:  values.Date("lastServiceDate"),
		Notes:            values.String("notes"),
	}
}

// stageUnit keeps absent dates nil so encoders drop the field entirely.
func stageUnit(validated any, _ Meta) (any, error) {
	unit, ok := validated.(record.Unit)
	if !ok {
		return nil, fmt.Errorf("unit transformer received %T", validated)
	}
	return unit, nil
}
