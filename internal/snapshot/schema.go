package snapshot

import (
	"strings"

	"sprintwatch/internal/sprint"
)

// Schema maps canonical fields to column positions in one snapshot's header.
// A position of -1 means the export did not carry that column. Resolution
// happens once per ingestion; downstream code works with typed records and
// never looks up columns by name again.
type Schema struct {
	Key         int
	IssueType   int
	Status      int
	Priority    int
	Assignee    int
	Summary     int
	Parent      int
	Epic        int
	StoryPoints int
	Remaining   int
	Spent       int
	Sprints     []int
}

// Canonical header names as they appear in tracker CSV exports. Story points
// live in a custom field whose label varies between instances, so resolution
// falls back to the first header containing "Story Points".
const (
	headerKey         = "Issue key"
	headerIssueType   = "Issue Type"
	headerStatus      = "Status"
	headerPriority    = "Priority"
	headerAssignee    = "Assignee"
	headerSummary     = "Summary"
	headerParentKey   = "Parent key"
	headerParent      = "Parent"
	headerEpic        = "Parent Epic"
	headerStoryPoints = "Custom field (Story Points)"
	headerRemaining   = "Remaining Estimate"
	headerSpent       = "Time Spent"
)

// ResolveSchema matches a header row against the canonical column names.
// Matching is exact and case-sensitive except for the story-points fallback.
// "Parent key" wins over "Parent" when both are present; every header
// containing "Sprint" contributes to the sprint list.
func ResolveSchema(header []string) Schema {
	s := Schema{
		Key: -1, IssueType: -1, Status: -1, Priority: -1, Assignee: -1,
		Summary: -1, Parent: -1, Epic: -1,
		StoryPoints: -1, Remaining: -1, Spent: -1,
	}

	parentFallback := -1
	for i, name := range header {
		switch name {
		case headerKey:
			s.Key = i
		case headerIssueType:
			s.IssueType = i
		case headerStatus:
			s.Status = i
		case headerPriority:
			s.Priority = i
		case headerAssignee:
			s.Assignee = i
		case headerSummary:
			s.Summary = i
		case headerParentKey:
			s.Parent = i
		case headerParent:
			parentFallback = i
		case headerEpic:
			s.Epic = i
		case headerStoryPoints:
			s.StoryPoints = i
		case headerRemaining:
			s.Remaining = i
		case headerSpent:
			s.Spent = i
		}
		if strings.Contains(name, "Sprint") {
			s.Sprints = append(s.Sprints, i)
		}
	}
	if s.Parent == -1 {
		s.Parent = parentFallback
	}
	if s.StoryPoints == -1 {
		for i, name := range header {
			if strings.Contains(name, "Story Points") {
				s.StoryPoints = i
				break
			}
		}
	}
	return s
}

// Columns reports which canonical fields the resolved schema carries.
func (s Schema) Columns() sprint.Columns {
	return sprint.Columns{
		Key:         s.Key >= 0,
		IssueType:   s.IssueType >= 0,
		Status:      s.Status >= 0,
		Priority:    s.Priority >= 0,
		Assignee:    s.Assignee >= 0,
		Summary:     s.Summary >= 0,
		Parent:      s.Parent >= 0,
		Epic:        s.Epic >= 0,
		Sprint:      len(s.Sprints) > 0,
		StoryPoints: s.StoryPoints >= 0,
		Remaining:   s.Remaining >= 0,
		Spent:       s.Spent >= 0,
	}
}
