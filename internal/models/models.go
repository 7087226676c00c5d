// Package models defines the data structures used throughout the Sentinel Console.
// It contains the data models for users, business clients, threats, protected
// systems, security scans, metrics, reports, and the activity audit trail.
package models

import "time"

// User represents a dashboard user account
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	UserType     UserType   `json:"userType"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`
}

// Client represents a business client under security management.
// Distinct from the "client" user type.
type Client struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ContactPerson    string       `json:"contactPerson"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone,omitempty"`
	Address          string       `json:"address,omitempty"`
	Industry         string       `json:"industry,omitempty"`
	Size             ClientSize   `json:"size"`
	Status           ClientStatus `json:"status"`
	RegistrationDate time.Time    `json:"registrationDate"`
}

// Threat represents a detected security threat against a client
type Threat struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clientId"`
	ThreatType       string         `json:"threatType"`
	Severity         ThreatSeverity `json:"severity"`
	Status           ThreatStatus   `json:"status"`
	DetectedDate     time.Time      `json:"detectedDate"`
	LastUpdated      time.Time      `json:"lastUpdated"`
	AffectedSystems  []string       `json:"affectedSystems"`
	Description      string         `json:"description,omitempty"`
	RemediationSteps string         `json:"remediationSteps,omitempty"`
}

// System represents a protected asset belonging to a client
type System struct {
	ID              string       `json:"id"`
	ClientID        string       `json:"clientId"`
	Name            string       `json:"name"`
	SystemType      string       `json:"systemType"`
	IPAddress       string       `json:"ipAddress,omitempty"`
	MACAddress      string       `json:"macAddress,omitempty"`
	OperatingSystem string       `json:"operatingSystem,omitempty"`
	LastScanDate    *time.Time   `json:"lastScanDate,omitempty"`
	SecurityScore   float64      `json:"securityScore"`
	Vulnerabilities int          `json:"vulnerabilities"`
	Status          SystemStatus `json:"status"`
}

// SecurityScan represents a scan run against a client's systems
type SecurityScan struct {
	ID             string     `json:"id"`
	ClientID       string     `json:"clientId"`
	ScanType       string     `json:"scanType"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	Status         ScanStatus `json:"status"`
	Findings       int        `json:"findings"`
	SystemsCovered int        `json:"systemsCovered,omitempty"`
	InitiatedBy    string     `json:"initiatedBy"`
	ReportID       string     `json:"reportId,omitempty"`
}

// SecurityMetric represents the current value of a tracked metric
type SecurityMetric struct {
	ID               string         `json:"id"`
	ClientID         string         `json:"clientId"`
	MetricName       string         `json:"metricName"`
	MetricValue      float64        `json:"metricValue"`
	PreviousValue    *float64       `json:"previousValue,omitempty"`
	ChangePercentage *float64       `json:"changePercentage,omitempty"`
	Category         MetricCategory `json:"category"`
	LastUpdated      time.Time      `json:"lastUpdated"`
}

// MetricHistoryEntry is an append-only time-series point for a metric
type MetricHistoryEntry struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	MetricName string    `json:"metricName"`
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
}

// AssessmentReport represents a consultant-produced assessment document
type AssessmentReport struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"clientId"`
	Title       string       `json:"title"`
	ReportType  string       `json:"reportType"`
	Status      ReportStatus `json:"status"`
	CreatedDate time.Time    `json:"createdDate"`
	Summary     string       `json:"summary,omitempty"`
}

// ActivityLog is one entry in the append-only audit trail
type ActivityLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// UserStats summarizes the user population
type UserStats struct {
	TotalUsers  int            `json:"totalUsers"`
	ActiveUsers int            `json:"activeUsers"`
	ByType      map[string]int `json:"byType"`
}

// ClientStats summarizes the client portfolio
type ClientStats struct {
	TotalClients int            `json:"totalClients"`
	ByStatus     map[string]int `json:"byStatus"`
	BySize       map[string]int `json:"bySize"`
	ByIndustry   map[string]int `json:"byIndustry"`
}

// ThreatStats summarizes threats, optionally scoped to one client
type ThreatStats struct {
	TotalThreats  int            `json:"totalThreats"`
	ActiveThreats int            `json:"activeThreats"`
	BySeverity    map[string]int `json:"bySeverity"`
	ByStatus      map[string]int `json:"byStatus"`
}

// SystemStats summarizes protected systems
type SystemStats struct {
	TotalSystems         int            `json:"totalSystems"`
	AverageSecurityScore float64        `json:"averageSecurityScore"`
	TotalVulnerabilities int            `json:"totalVulnerabilities"`
	ByStatus             map[string]int `json:"byStatus"`
}

// ScanStats summarizes security scans
type ScanStats struct {
	TotalScans    int            `json:"totalScans"`
	TotalFindings int            `json:"totalFindings"`
	ByStatus      map[string]int `json:"byStatus"`
	ByScanType    map[string]int `json:"byScanType"`
}

// ActivityStats summarizes audit-trail activity over a trailing window.
// ByDay contains one bucket per calendar day in the window, zero-filled.
type ActivityStats struct {
	TotalEntries int            `json:"totalEntries"`
	ByAction     map[string]int `json:"byAction"`
	ByUser       map[string]int `json:"byUser"`
	ByDay        map[string]int `json:"byDay"`
}

// PurgeResult reports the outcome of a retention delete.
// Failures holds one message per record that could not be removed.
type PurgeResult struct {
	DeletedCount int      `json:"deletedCount"`
	Failures     []string `json:"failures,omitempty"`
}
