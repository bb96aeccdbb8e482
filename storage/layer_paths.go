package storage

import (
	"fmt"

	"github.com/alekLukanen/BreweryMedallion/elements"
	"github.com/alekLukanen/BreweryMedallion/partitionFuncs"
)

// LayerPaths is the logical path scheme of the layer artifacts. Downstream
// readers depend on these keys so they must not change.
type LayerPaths struct {
	dataset elements.Dataset
}

func NewLayerPaths(dataset elements.Dataset) LayerPaths {
	return LayerPaths{dataset: dataset}
}

func (obj LayerPaths) BronzeFileName() string {
	return fmt.Sprintf("%s.parquet", obj.dataset.BronzeStem)
}

func (obj LayerPaths) BronzePath() string {
	return fmt.Sprintf("%s/%s", elements.LayerBronze, obj.BronzeFileName())
}

func (obj LayerPaths) SilverFileName(group elements.Value) string {
	return fmt.Sprintf("%s_%s.parquet", obj.dataset.SilverStem, partitionFuncs.GroupValueSegment(group))
}

func (obj LayerPaths) SilverPath(group elements.Value) string {
	return fmt.Sprintf(
		"%s/%s/%s",
		elements.LayerSilver,
		partitionFuncs.GroupValueSegment(group),
		obj.SilverFileName(group),
	)
}

func (obj LayerPaths) GoldFileName() string {
	return fmt.Sprintf("%s.parquet", obj.dataset.GoldStem)
}

func (obj LayerPaths) GoldPath() string {
	return fmt.Sprintf("%s/%s", elements.LayerGold, obj.GoldFileName())
}
