package nutri

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoVault is returned by report export when the service has no vault.
var ErrNoVault = errors.New("no vault configured")

// ExportReport stores the JSON-encoded report for date in the vault and
// returns its SHA-256 checksum. Exporting an unchanged report is idempotent.
func (s *NutriService) ExportReport(date string) (string, Report, error) {
	if s.vault == nil {
		return "", Report{}, ErrNoVault
	}
	report, err := s.Report(date)
	if err != nil {
		return "", Report{}, err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", Report{}, fmt.Errorf("encoding report: %w", err)
	}
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	if err := s.vault.PutContent(checksum, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", Report{}, fmt.Errorf("storing report %s: %w", checksum, err)
	}
	s.logger.Info("report exported", "date", report.Date, "checksum", checksum)
	return checksum, report, nil
}

// FetchReport reads a previously exported report back from the vault.
func (s *NutriService) FetchReport(checksum string) (Report, error) {
	if s.vault == nil {
		return Report{}, ErrNoVault
	}
	var buf bytes.Buffer
	if err := s.vault.GetContent(checksum, &buf); err != nil {
		return Report{}, fmt.Errorf("fetching report %s: %w", checksum, err)
	}
	var report Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		return Report{}, fmt.Errorf("decoding report %s: %w", checksum, err)
	}
	return report, nil
}
