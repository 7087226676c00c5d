package models

import (
	"errors"
	"testing"
)

func TestParseEnums(t *testing.T) {
	cases := []struct {
		name  string
		parse func(string) (string, error)
		valid []string
	}{
		{"userType", wrap(ParseUserType), []string{"admin", "consultant", "client"}},
		{"clientSize", wrap(ParseClientSize), []string{"small", "medium", "large", "enterprise"}},
		{"clientStatus", wrap(ParseClientStatus), []string{"active", "inactive", "pending"}},
		{"threatSeverity", wrap(ParseThreatSeverity), []string{"low", "medium", "high", "critical"}},
		{"threatStatus", wrap(ParseThreatStatus), []string{"active", "mitigated", "false_positive"}},
		{"systemStatus", wrap(ParseSystemStatus), []string{"protected", "at_risk", "compromised", "inactive"}},
		{"scanStatus", wrap(ParseScanStatus), []string{"scheduled", "in_progress", "completed", "failed"}},
		{"metricCategory", wrap(ParseMetricCategory), []string{"threat", "system", "scan", "score", "defense", "compliance"}},
		{"reportStatus", wrap(ParseReportStatus), []string{"draft", "final", "approved"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.valid {
				got, err := tc.parse(v)
				if err != nil {
					t.Errorf("Expected %q to be valid: %v", v, err)
				}
				if got != v {
					t.Errorf("Expected parsed value %q, got %q", v, got)
				}
			}

			_, err := tc.parse("bogus")
			var enumErr *InvalidEnumError
			if !errors.As(err, &enumErr) {
				t.Fatalf("Expected InvalidEnumError for bogus value, got %v", err)
			}
			if enumErr.Value != "bogus" {
				t.Errorf("Expected offending value in error, got %q", enumErr.Value)
			}
		})
	}
}

// wrap adapts a typed parse function to a string-returning one for the table
func wrap[T ~string](parse func(string) (T, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := parse(s)
		return string(v), err
	}
}

func TestInvalidEnumErrorMessage(t *testing.T) {
	err := &InvalidEnumError{Field: "severity", Value: "extreme"}
	want := `invalid value "extreme" for field severity`
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
