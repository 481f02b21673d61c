package record

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies one of the supported record shapes.
type Kind string

const (
	KindDealer Kind = "dealer"
	KindUnit   Kind = "unit"
	KindSite   Kind = "site"
)

func AllKinds() []Kind {
	return []Kind{KindDealer, KindUnit, KindSite}
}

func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindDealer:
		return KindDealer, nil
	case KindUnit:
		return KindUnit, nil
	case KindSite:
		return KindSite, nil
	default:
		return "", fmt.Errorf("unsupported entity kind %q (supported: dealer, unit, site)", value)
	}
}

func (k Kind) String() string {
	return string(k)
}

// Document is a staged record: a transformed payload plus the metadata every
// stored entity carries.
type Document struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time
	UpdatedAt time.Time
	Payload   any
}

// NewPayload returns a pointer to an empty payload of kind, ready to be
// decoded into.
func NewPayload(kind Kind) (any, error) {
	switch kind {
	case KindDealer:
		return &Dealer{}, nil
	case KindUnit:
		return &Unit{}, nil
	case KindSite:
		return &Site{}, nil
	default:
		return nil, fmt.Errorf("unsupported entity kind %q", kind)
	}
}

// Deref unwraps a pointer produced by NewPayload.
func Deref(payload any) any {
	switch p := payload.(type) {
	case *Dealer:
		return *p
	case *Unit:
		return *p
	case *Site:
		return *p
	default:
		return payload
	}
}
