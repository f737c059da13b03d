package models

import "encoding/json"

// ProjectStatus controls whether a project appears on the public site.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectActive || s == ProjectArchived
}

// Project is a portfolio entry.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Link        string        `json:"link"`
	Image       string        `json:"image"`
	TechStack   []string      `json:"techStack"`
	Status      ProjectStatus `json:"status"`
	SortOrder   int           `json:"sortOrder"`
}

// MarshalJSON writes the canonical fields plus "tags", the deprecated alias
// of techStack.
func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	out := struct {
		project
		Tags []string `json:"tags"`
	}{project: project(p)}
	if out.TechStack == nil {
		out.TechStack = []string{}
	}
	out.Tags = out.TechStack
	return json.Marshal(out)
}

// UnmarshalJSON accepts either techStack or the "tags" alias. When both are
// present techStack wins.
func (p *Project) UnmarshalJSON(data []byte) error {
	type project Project
	var in struct {
		project
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Project(in.project)
	if p.TechStack == nil {
		p.TechStack = in.Tags
	}
	return nil
}
