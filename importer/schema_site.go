package importer

import (
	"fmt"

	"dealerhub/record"
)

// SiteStatuses lists the accepted site status values.
var SiteStatuses = []string{"planned", "under_construction", "operational", "decommissioned"}

const defaultSiteStatus = "planned"

// The site format deliberately has no columns for clients, technologies or
// related dealers; those are maintained after import.
var siteSchema = Schema{
	Kind:    record.KindSite,
	Version: 1,
	Fields: []FieldRule{
		{Name: "name", Required: true, Kind: FieldString},
		{Name: "operator", Kind: FieldString},
		{Name: "address", Required: true, Kind: FieldString},
		{Name: "city", Kind: FieldString},
		{Name: "postalCode", Kind: FieldString},
		{Name: "country", Kind: FieldString},
		{Name: "status", Kind: FieldEnum, EnumValues: SiteStatuses},
		{Name: "contactEmail", Kind: FieldEmail},
		{Name: "website", Kind: FieldURL},
		{Name: "feedstockTypes", Kind: FieldList},
		{Name: "notes", Kind: FieldFreeText},
	},
	build: buildSite,
	stage: stageSite,
}

func buildSite(values Values) any {
	return record.Site{
		Name:           values.String("name"),
		Operator:       values.String("operator"),
		Address:        values.String("address"),
		City:           values.String("city"),
		PostalCode:     values.String("postalCode"),
		Country:        values.String("country"),
		Status:         values.String("status"),
		ContactEmail:   values.String("contactEmail"),
		Website:        values.String("website"),
		FeedstockTypes: values.List("feedstockTypes"),
		Notes:          values.String("notes"),
	}
}

func stageSite(validated any, _ Meta) (any, error) {
	site, ok := validated.(record.Site)
	if !ok {
		return nil, fmt.Errorf("site transformer received %T", validated)
	}

	site.Status = fallback(site.Status, defaultSiteStatus)
	if site.FeedstockTypes == nil {
		site.FeedstockTypes = []string{}
	}
	site.SiteClients = []string{}
	site.Technologies = []string{}
	site.RelatedDealerIDs = []string{}
	site.Location = record.UnresolvedLocation()
	return site, nil
}
