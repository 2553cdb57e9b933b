package models

// SARIF 2.1.0 wrapper types, the minimal subset needed to render
// normalized issues.

const (
	SARIFVersion   = "2.1.0"
	SARIFSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
)

type SARIFLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

type SARIFDriver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type SARIFResult struct {
	RuleID    string          `json:"ruleId,omitempty"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations,omitempty"`
}

type SARIFMessage struct {
	Text string `json:"text"`
}

type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFLevel maps a normalized severity to the SARIF level vocabulary
func SARIFLevel(s Severity) string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF wraps normalized issues in a single-run SARIF 2.1.0 log
func ToSARIF(linter, version string, issues []Issue) *SARIFLog {
	results := make([]SARIFResult, 0, len(issues))
	for _, issue := range issues {
		result := SARIFResult{
			RuleID:  issue.Rule,
			Level:   SARIFLevel(issue.Severity),
			Message: SARIFMessage{Text: issue.Message},
		}
		if issue.File != "" {
			loc := SARIFLocation{
				PhysicalLocation: SARIFPhysicalLocation{
					ArtifactLocation: SARIFArtifactLocation{URI: issue.File},
				},
			}
			if issue.Line > 0 {
				loc.PhysicalLocation.Region = &SARIFRegion{
					StartLine:   issue.Line,
					StartColumn: issue.Column,
				}
			}
			result.Locations = []SARIFLocation{loc}
		}
		results = append(results, result)
	}

	return &SARIFLog{
		Schema:  SARIFSchemaURI,
		Version: SARIFVersion,
		Runs: []SARIFRun{
			{
				Tool:    SARIFTool{Driver: SARIFDriver{Name: linter, Version: version}},
				Results: results,
			},
		},
	}
}
