package importer

import (
	"fmt"
	"strings"

	"dealerhub/record"
)

// DealerProspectionStatuses lists the accepted prospectionStatus values.
var DealerProspectionStatuses = []string{"new", "contacted", "interested", "negotiating", "partner", "not_interested"}

const defaultProspectionStatus = "new"

var dealerSchema = Schema{
	Kind:    record.KindDealer,
	Version: 1,
	Fields: []FieldRule{
		{Name: "name", Required: true, Kind: FieldString},
		{Name: "contactPerson", Kind: FieldString},
		{Name: "email", Kind: FieldEmail},
		{Name: "phone", Kind: FieldString},
		{Name: "website", Kind: FieldURL},
		{Name: "address", Required: true, Kind: FieldString},
		{Name: "city", Kind: FieldString},
		{Name: "postalCode", Kind: FieldString},
		{Name: "country", Kind: FieldString},
		{Name: "prospectionStatus", Kind: FieldEnum, EnumValues: DealerProspectionStatuses},
		{Name: "tractorBrands", Kind: FieldList},
		{Name: "machineTypes", Kind: FieldList},
		{Name: "initialNote", Kind: FieldFreeText},
	},
	build: buildDealer,
	stage: stageDealer,
}

// dealerRow is a validated dealer line. The initial note is carried next to
// the dealer until the transformer turns it into an activity note.
type dealerRow struct {
	record.Dealer
	InitialNote string
}

func buildDealer(values Values) any {
	return dealerRow{
		Dealer: record.Dealer{
			Name:              values.String("name"),
			ContactPerson:     values.String("contactPerson"),
			Email:             values.String("email"),
			Phone:             values.String("phone"),
			Website:           values.String("website"),
			Address:           values.String("address"),
			City:              values.String("city"),
			PostalCode:        values.String("postalCode"),
			Country:           values.String("country"),
			ProspectionStatus: values.String("prospectionStatus"),
			TractorBrands:     values.List("tractorBrands"),
			MachineTypes:      values.List("machineTypes"),
		},
		InitialNote: values.String("initialNote"),
	}
}

func stageDealer(validated any, meta Meta) (any, error) {
	row, ok := validated.(dealerRow)
	if !ok {
		return nil, fmt.Errorf("dealer transformer received %T", validated)
	}

	dealer := row.Dealer
	dealer.ProspectionStatus = fallback(dealer.ProspectionStatus, defaultProspectionStatus)
	if dealer.TractorBrands == nil {
		dealer.TractorBrands = []string{}
	}
	if dealer.MachineTypes == nil {
		dealer.MachineTypes = []string{}
	}

	dealer.Notes = []record.ActivityNote{}
	if text := strings.TrimSpace(row.InitialNote); text != "" {
		if meta.NewID == nil {
			return nil, fmt.Errorf("dealer transformer needs an id generator for the initial note")
		}
		dealer.Notes = append(dealer.Notes, record.ActivityNote{
			ID:                meta.NewID(),
			Timestamp:         meta.Now,
			Author:            record.BulkImportAuthor,
			Text:              text,
			ProspectionStatus: dealer.ProspectionStatus,
		})
	}

	return dealer, nil
}
