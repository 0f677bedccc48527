package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/assay/internal/dataset"
	"github.com/okian/assay/pkg/metrics"
)

// observe records the latency of one store call and counts it as failed when
// *err holds anything other than ErrNotFound. Use as
// defer observe(driver, op, time.Now(), &err).
func observe(driver, op string, start time.Time, err *error) {
	metrics.RecordStoreQuery(driver, op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordStoreError(driver, op)
	}
}

func recordImport(driver string, d *dataset.Dataset) {
	metrics.RecordStoreImport(driver, "companies", len(d.Companies))
	metrics.RecordStoreImport(driver, "departments", len(d.DepartmentList()))
	metrics.RecordStoreImport(driver, "operational_areas", len(d.OpAreaList()))
	metrics.RecordStoreImport(driver, "employees", len(d.Employees))
	metrics.RecordStoreImport(driver, "assessments", len(d.Assessments))
}

// notFound wraps ErrNotFound with the missing record.
func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode column: %w", err)
	}
	return b, nil
}

func unmarshalJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode column: %w", err)
	}
	return nil
}
