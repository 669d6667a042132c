package report

import (
	"bytes"
	"encoding/csv"

	"github.com/dsg-innosource/data-platform/pkg/billing"
	log "github.com/sirupsen/logrus"
)

var extractHeader = []string{"date", "period_label", "client", "person", "billable_hours", "task", "task_id"}

type CsvExtractRendererImpl struct {
}

func NewCsvExtractRenderer() *CsvExtractRendererImpl {
	return &CsvExtractRendererImpl{}
}

// RenderExtract formats the cleaned dataset for the accounting system.
// Unmapped rows keep an empty client cell rather than being dropped, so
// accounting receives everything that was tracked.
func (r *CsvExtractRendererImpl) RenderExtract(report Report) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write(extractHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, row := range report.Extract {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.PeriodLabel,
			row.Client,
			row.Person,
			billing.FormatHours(row.Duration),
			row.Task,
			row.TaskID,
		}
		if err := writer.Write(record); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
