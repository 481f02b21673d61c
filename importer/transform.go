package importer

import (
	"fmt"

	"dealerhub/record"
)

// Transform turns a validated record into a staged document stamped with a
// fresh id, the kind tag and equal creation/update timestamps.
func Transform(schema Schema, validated any, meta Meta) (record.Document, error) {
	if schema.stage == nil {
		return record.Document{}, fmt.Errorf("%w: no transformer for %q", ErrUnknownKind, schema.Kind)
	}
	if meta.ID == "" {
		return record.Document{}, fmt.Errorf("staged %s record has no id", schema.Kind)
	}

	payload, err := schema.stage(validated, meta)
	if err != nil {
		return record.Document{}, err
	}

	return record.Document{
		ID:        meta.ID,
		Kind:      schema.Kind,
		CreatedAt: meta.Now,
		UpdatedAt: meta.Now,
		Payload:   payload,
	}, nil
}
