package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/cardscrub/internal/core/domain"
)

// Header is the column order of the report.
var Header = []string{"profile_id", "customer_name", "card_id_present", "stripe_gateway_present"}

const (
	yes = "Yes"
	no  = "No"
)

// WriteProfileCSV writes profiles to path in input order, creating parent
// directories as needed and replacing any existing file.
func WriteProfileCSV(path string, profiles []domain.RecurringProfile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	if err := writeProfiles(f, profiles); err != nil {
		f.Close()
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return f.Close()
}

func writeProfiles(w io.Writer, profiles []domain.RecurringProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range profiles {
		row := []string{p.ProfileID, p.CustomerName, yesNo(p.CardIDPresent), yesNo(p.StripeGatewayPresent)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEligibleProfiles loads the report at path and returns the rows whose
// card_id_present column is "Yes", in file order.
func ReadEligibleProfiles(path string) ([]domain.RecurringProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	profiles, err := readEligible(f)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", path, err)
	}
	return profiles, nil
}

func readEligible(r io.Reader) ([]domain.RecurringProfile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.ValidationError{Field: "header", Reason: "report is empty"}
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range []string{"profile_id", "card_id_present"} {
		if _, ok := cols[name]; !ok {
			return nil, &domain.ValidationError{Field: name, Reason: "column not in report header"}
		}
	}

	var profiles []domain.RecurringProfile
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if !isYes(field(record, cols, "card_id_present")) {
			continue
		}
		profiles = append(profiles, domain.RecurringProfile{
			ProfileID:            strings.TrimSpace(field(record, cols, "profile_id")),
			CustomerName:         field(record, cols, "customer_name"),
			CardIDPresent:        true,
			StripeGatewayPresent: isYes(field(record, cols, "stripe_gateway_present")),
		})
	}
	return profiles, nil
}

// field returns the named column of record, or "" if absent or short.
func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func isYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), yes)
}

func yesNo(b bool) string {
	if b {
		return yes
	}
	return no
}
