package models

import "fmt"

// InvalidEnumError is returned when a caller supplies a value outside the
// closed set for an enumerated field.
type InvalidEnumError struct {
	Field string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s", e.Value, e.Field)
}

// UserType classifies a dashboard account
type UserType string

const (
	UserTypeAdmin      UserType = "admin"
	UserTypeConsultant UserType = "consultant"
	UserTypeClient     UserType = "client"
)

// ParseUserType validates a raw user type value
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeAdmin, UserTypeConsultant, UserTypeClient:
		return UserType(s), nil
	}
	return "", &InvalidEnumError{Field: "userType", Value: s}
}

// ClientSize classifies a business client by headcount
type ClientSize string

const (
	ClientSizeSmall      ClientSize = "small"
	ClientSizeMedium     ClientSize = "medium"
	ClientSizeLarge      ClientSize = "large"
	ClientSizeEnterprise ClientSize = "enterprise"
)

// ParseClientSize validates a raw client size value
func ParseClientSize(s string) (ClientSize, error) {
	switch ClientSize(s) {
	case ClientSizeSmall, ClientSizeMedium, ClientSizeLarge, ClientSizeEnterprise:
		return ClientSize(s), nil
	}
	return "", &InvalidEnumError{Field: "size", Value: s}
}

// ClientStatus tracks a client's engagement state
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusPending  ClientStatus = "pending"
)

// ParseClientStatus validates a raw client status value
func ParseClientStatus(s string) (ClientStatus, error) {
	switch ClientStatus(s) {
	case ClientStatusActive, ClientStatusInactive, ClientStatusPending:
		return ClientStatus(s), nil
	}
	return "", &InvalidEnumError{Field: "status", Value: s}
}

// ThreatSeverity grades a threat
type ThreatSeverity string

const (
	SeverityLow      ThreatSeverity = "low"
	SeverityMedium   ThreatSeverity = "medium"
	SeverityHigh     ThreatSeverity = "high"
	SeverityCritical ThreatSeverity = "critical"
)

// ParseThreatSeverity validates a raw severity value
func ParseThreatSeverity(s string) (ThreatSeverity, error) {
	switch ThreatSeverity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return ThreatSeverity(s), nil
	}
	return "", &InvalidEnumError{Field: "severity", Value: s}
}

// ThreatStatus tracks a threat's lifecycle
type ThreatStatus string

const (
	ThreatStatusActive        ThreatStatus = "active"
	ThreatStatusMitigated     ThreatStatus = "mitigated"
	ThreatStatusFalsePositive ThreatStatus = "false_positive"
)

// ParseThreatStatus validates a raw threat status value
func ParseThreatStatus(s string) (ThreatStatus, error) {
	switch ThreatStatus(s) {
	case ThreatStatusActive, ThreatStatusMitigated, ThreatStatusFalsePositive:
		return ThreatStatus(s), nil
	}
	return "", &InvalidEnumError{Field: "status", Value: s}
}

// SystemStatus tracks the protection state of an asset
type SystemStatus string

const (
	SystemStatusProtected   SystemStatus = "protected"
	SystemStatusAtRisk      SystemStatus = "at_risk"
	SystemStatusCompromised SystemStatus = "compromised"
	SystemStatusInactive    SystemStatus = "inactive"
)

// ParseSystemStatus validates a raw system status value
func ParseSystemStatus(s string) (SystemStatus, error) {
	switch SystemStatus(s) {
	case SystemStatusProtected, SystemStatusAtRisk, SystemStatusCompromised, SystemStatusInactive:
		return SystemStatus(s), nil
	}
	return "", &InvalidEnumError{Field: "status", Value: s}
}

// ScanStatus tracks a security scan through its lifecycle.
// Valid progression: scheduled -> in_progress -> completed | failed.
type ScanStatus string

const (
	ScanStatusScheduled  ScanStatus = "scheduled"
	ScanStatusInProgress ScanStatus = "in_progress"
	ScanStatusCompleted  ScanStatus = "completed"
	ScanStatusFailed     ScanStatus = "failed"
)

// ParseScanStatus validates a raw scan status value
func ParseScanStatus(s string) (ScanStatus, error) {
	switch ScanStatus(s) {
	case ScanStatusScheduled, ScanStatusInProgress, ScanStatusCompleted, ScanStatusFailed:
		return ScanStatus(s), nil
	}
	return "", &InvalidEnumError{Field: "status", Value: s}
}

// MetricCategory groups security metrics for charting
type MetricCategory string

const (
	MetricCategoryThreat     MetricCategory = "threat"
	MetricCategorySystem     MetricCategory = "system"
	MetricCategoryScan       MetricCategory = "scan"
	MetricCategoryScore      MetricCategory = "score"
	MetricCategoryDefense    MetricCategory = "defense"
	MetricCategoryCompliance MetricCategory = "compliance"
)

// ParseMetricCategory validates a raw metric category value
func ParseMetricCategory(s string) (MetricCategory, error) {
	switch MetricCategory(s) {
	case MetricCategoryThreat, MetricCategorySystem, MetricCategoryScan,
		MetricCategoryScore, MetricCategoryDefense, MetricCategoryCompliance:
		return MetricCategory(s), nil
	}
	return "", &InvalidEnumError{Field: "category", Value: s}
}

// ReportStatus tracks an assessment report's lifecycle
type ReportStatus string

const (
	ReportStatusDraft    ReportStatus = "draft"
	ReportStatusFinal    ReportStatus = "final"
	ReportStatusApproved ReportStatus = "approved"
)

// ParseReportStatus validates a raw report status value
func ParseReportStatus(s string) (ReportStatus, error) {
	switch ReportStatus(s) {
	case ReportStatusDraft, ReportStatusFinal, ReportStatusApproved:
		return ReportStatus(s), nil
	}
	return "", &InvalidEnumError{Field: "status", Value: s}
}
