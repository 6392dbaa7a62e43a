package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// ToolRequest is the context handed to intake collaborators for one conversational turn.
type ToolRequest struct {
	Values      FormValues
	StateSchema string
	Question    string
	Answer      string

	MissingFields    []FieldInfo
	ValidationErrors []FieldInfo
}

// FormatIssues renders field issues as a markdown table.
func FormatIssues(title string, issues []FieldInfo) string {
	if len(issues) == 0 {
		return ""
	}
	var buf strings.Builder
	if title != "" {
		buf.WriteString(title)
		buf.WriteString("\n")
	}
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Pointer", "Problem")
	for _, issue := range issues {
		_ = table.Append(issue.DisplayName, issue.JSONPointer, issue.Description)
	}
	_ = table.Render()
	return buf.String()
}

func FormatToolRequest(req *ToolRequest) (string, error) {
	valuesJSON, err := sonic.Marshal(req.Values)
	if err != nil {
		return "", err
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Brief form JSON:\n```json\n%s\n```", string(valuesJSON)),
	}
	if req.StateSchema != "" {
		sections = append(sections, fmt.Sprintf("# Brief form schema JSON:\n```json\n%s\n```", req.StateSchema))
	}
	if req.Question != "" || req.Answer != "" {
		sections = append(sections, "# Latest Dialogue:")
		if req.Question != "" {
			sections = append(sections, fmt.Sprintf("## Assistant Question:\n%s", req.Question))
		}
		if req.Answer != "" {
			sections = append(sections, fmt.Sprintf("## User Answer:\n%s", req.Answer))
		}
	}
	if s := FormatIssues("# Missing required fields:", req.MissingFields); s != "" {
		sections = append(sections, s)
	}
	if s := FormatIssues("# Validation errors:", req.ValidationErrors); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n"), nil
}
