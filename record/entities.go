package record

import "time"

const LocationUnresolved = "unresolved"

// BulkImportAuthor is the actor label on notes synthesized during an import.
const BulkImportAuthor = "Bulk Import"

type Dealer struct {
	Name              string         `json:"name" bson:"name" dynamodbav:"name"`
	ContactPerson     string         `json:"contactPerson" bson:"contactPerson" dynamodbav:"contactPerson"`
	Email             string         `json:"email" bson:"email" dynamodbav:"email"`
	Phone             string         `json:"phone" bson:"phone" dynamodbav:"phone"`
	Website           string         `json:"website" bson:"website" dynamodbav:"website"`
	Address           string         `json:"address" bson:"address" dynamodbav:"address"`
	City              string         `json:"city" bson:"city" dynamodbav:"city"`
	PostalCode        string         `json:"postalCode" bson:"postalCode" dynamodbav:"postalCode"`
	Country           string         `json:"country" bson:"country" dynamodbav:"country"`
	ProspectionStatus string         `json:"prospectionStatus" bson:"prospectionStatus" dynamodbav:"prospectionStatus"`
	TractorBrands     []string       `json:"tractorBrands" bson:"tractorBrands" dynamodbav:"tractorBrands"`
	MachineTypes      []string       `json:"machineTypes" bson:"machineTypes" dynamodbav:"machineTypes"`
	Notes             []ActivityNote `json:"notes" bson:"notes" dynamodbav:"notes"`
}

// ActivityNote is one entry in a dealer's activity history.
type ActivityNote struct {
	ID                string    `json:"id" bson:"id" dynamodbav:"id"`
	Timestamp         time.Time `json:"timestamp" bson:"timestamp" dynamodbav:"timestamp"`
	Author            string    `json:"author" bson:"author" dynamodbav:"author"`
	Text              string    `json:"text" bson:"text" dynamodbav:"text"`
	ProspectionStatus string    `json:"prospectionStatus" bson:"prospectionStatus" dynamodbav:"prospectionStatus"`
}

// Unit is a machine unit. Absent dates stay nil and are left out of every
// encoding instead of being stored as null.
type Unit struct {
	SerialNumber     string     `json:"serialNumber" bson:"serialNumber" dynamodbav:"serialNumber"`
	Model            string     `json:"model" bson:"model" dynamodbav:"model"`
	Brand            string     `json:"brand" bson:"brand" dynamodbav:"brand"`
	Status           string     `json:"status" bson:"status" dynamodbav:"status"`
	DealerName       string     `json:"dealerName" bson:"dealerName" dynamodbav:"dealerName"`
	SiteName         string     `json:"siteName" bson:"siteName" dynamodbav:"siteName"`
	PurchaseDate     *time.Time `json:"purchaseDate,omitempty" bson:"purchaseDate,omitempty" dynamodbav:"purchaseDate,omitempty"`
	InstallationDate *time.Time `json:"installationDate,omitempty" bson:"installationDate,omitempty" dynamodbav:"installationDate,omitempty"`
	LastServiceDate  *time.Time `json:"lastServiceDate,omitempty" bson:"lastServiceDate,omitempty" dynamodbav:"lastServiceDate,omitempty"`
	Notes            string     `json:"notes" bson:"notes" dynamodbav:"notes"`
}

type Site struct {
	Name             string   `json:"name" bson:"name" dynamodbav:"name"`
	Operator         string   `json:"operator" bson:"operator" dynamodbav:"operator"`
	Address          string   `json:"address" bson:"address" dynamodbav:"address"`
	City             string   `json:"city" bson:"city" dynamodbav:"city"`
	PostalCode       string   `json:"postalCode" bson:"postalCode" dynamodbav:"postalCode"`
	Country          string   `json:"country" bson:"country" dynamodbav:"country"`
	Status           string   `json:"status" bson:"status" dynamodbav:"status"`
	ContactEmail     string   `json:"contactEmail" bson:"contactEmail" dynamodbav:"contactEmail"`
	Website          string   `json:"website" bson:"website" dynamodbav:"website"`
	FeedstockTypes   []string `json:"feedstockTypes" bson:"feedstockTypes" dynamodbav:"feedstockTypes"`
	SiteClients      []string `json:"siteClients" bson:"siteClients" dynamodbav:"siteClients"`
	Technologies     []string `json:"technologies" bson:"technologies" dynamodbav:"technologies"`
	RelatedDealerIDs []string `json:"relatedDealerIds" bson:"relatedDealerIds" dynamodbav:"relatedDealerIds"`
	Location         Location `json:"location" bson:"location" dynamodbav:"location"`
	Notes            string   `json:"notes" bson:"notes" dynamodbav:"notes"`
}

// Location is filled in by the geocoder after import; imported sites start
// out unresolved.
type Location struct {
	Status string   `json:"status" bson:"status" dynamodbav:"status"`
	Lat    *float64 `json:"lat,omitempty" bson:"lat,omitempty" dynamodbav:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty" bson:"lng,omitempty" dynamodbav:"lng,omitempty"`
}

func UnresolvedLocation() Location {
	return Location{Status: LocationUnresolved}
}
