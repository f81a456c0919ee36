package types

import (
	"fmt"
	"time"
)

// Resource represents one collected entity (an S3 bucket, a repository, a
// workspace user). Data holds whatever nested graph the connector produced;
// the engine only needs key access, iteration and length over it.
type Resource struct {
	ID              string         `json:"id" yaml:"id"`
	Type            string         `json:"type,omitempty" yaml:"type,omitempty"`
	SourceConnector string         `json:"source_connector" yaml:"source_connector"`
	Data            map[string]any `json:"data" yaml:"data"`
}

// ResourceCollection is an ordered set of resources sharing a schema family,
// plus metadata about the collection run that produced them.
type ResourceCollection struct {
	SourceConnector string     `json:"source_connector" yaml:"source_connector"`
	ResourceType    string     `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	FetchedAt       time.Time  `json:"fetched_at" yaml:"fetched_at"`
	TotalCount      int        `json:"total_count" yaml:"total_count"`
	Resources       []Resource `json:"resources" yaml:"resources"`
}

// Validate ensures collection invariants hold.
func (c *ResourceCollection) Validate() error {
	if c.SourceConnector == "" {
		return fmt.Errorf("collection source connector cannot be empty")
	}
	if c.TotalCount != len(c.Resources) {
		return fmt.Errorf("collection total_count %d does not match %d resources",
			c.TotalCount, len(c.Resources))
	}
	return nil
}
