package elements

import (
	"fmt"
)

const (
	DefaultGroupAttribute = "state"
	DefaultTypeAttribute  = "brewery_type"
)

// Dataset names the source dataset and the two attributes the layers
// depend on. Every other field is passed through untouched.
type Dataset struct {
	Name           string
	GroupAttribute string
	TypeAttribute  string

	BronzeStem string
	SilverStem string
	GoldStem   string
}

func NewDataset(name string) Dataset {
	return Dataset{
		Name:           name,
		GroupAttribute: DefaultGroupAttribute,
		TypeAttribute:  DefaultTypeAttribute,
		BronzeStem:     fmt.Sprintf("%s_bronze", name),
		SilverStem:     fmt.Sprintf("%s_silver", name),
		GoldStem:       fmt.Sprintf("%s_gold", name),
	}
}

func (obj Dataset) IsValid() error {
	if obj.Name == "" {
		return fmt.Errorf("%w| name invalid", ErrDatasetInvalid)
	}
	if obj.GroupAttribute == "" {
		return fmt.Errorf("%w| group attribute required", ErrDatasetInvalid)
	}
	if obj.TypeAttribute == "" {
		return fmt.Errorf("%w| type attribute required", ErrDatasetInvalid)
	}
	if obj.GroupAttribute == obj.TypeAttribute {
		return fmt.Errorf("%w| group and type attributes must differ", ErrDatasetInvalid)
	}
	if obj.BronzeStem == "" || obj.SilverStem == "" || obj.GoldStem == "" {
		return fmt.Errorf("%w| layer file stems required", ErrDatasetInvalid)
	}
	return nil
}

////////////////////////////////////////

type Partition struct {
	Key     Value
	Records RecordSet
}

type AggregateRow struct {
	Type  Value
	Group Value
	Count int64
}
