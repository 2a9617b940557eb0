package train

import (
	"fmt"
	"os"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// SummaryFile collects final test metrics across runs, one line each. It
// is a human-readable record, not a machine-parseable format.
const SummaryFile = "MetaDTA.txt"

// AppendSummary appends one run's support-set size and test metrics to the
// summary file, creating it on first use.
func AppendSummary(path string, cfg config.Config, supportSize int, test Metrics) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening summary file %s", path)
	}
	_, werr := fmt.Fprintf(f, "%s/%s | Support Set Size: %d | Test Metrics: loss:%.3f mae:%.3f\n",
		cfg.Name, cfg.Dataset, supportSize, test.Loss, test.MAE)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return errors.WrapfOrNil(werr, "writing summary file %s", path)
}
