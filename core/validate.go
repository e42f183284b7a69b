package core

import (
	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/schema"
)

// ValidateSchema checks that every required column is present in the batch header.
// It returns *contract.MissingFeaturesError naming all missing columns in required order.
func ValidateSchema(batch *schema.Batch, required []string) error {
	present := schema.ColumnIndex(batch.Columns)
	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &contract.MissingFeaturesError{Missing: missing}
}
