package model

import "fmt"

// Visibility controls who may see a project.
type Visibility string

const (
	VisibilityPublic   Visibility = "Public"
	VisibilityPrivate  Visibility = "Private"
	VisibilityUnlisted Visibility = "Unlisted"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectDraft    ProjectStatus = "Draft"
	ProjectActive   ProjectStatus = "Active"
	ProjectArchived ProjectStatus = "Archived"
)

// IssueStatus is the workflow state of an issue.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "Open"
	IssueInProgress IssueStatus = "InProgress"
	IssueClosed     IssueStatus = "Closed"
)

// ProjectRole is a member's role within a project.
type ProjectRole string

const (
	RoleOwner       ProjectRole = "Owner"
	RoleMaintainer  ProjectRole = "Maintainer"
	RoleContributor ProjectRole = "Contributor"
	RoleViewer      ProjectRole = "Viewer"
)

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return true
	}
	return false
}

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectActive, ProjectArchived:
		return true
	}
	return false
}

// Valid reports whether s is one of the known issue statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueClosed:
		return true
	}
	return false
}

// Valid reports whether r is one of the known roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleOwner, RoleMaintainer, RoleContributor, RoleViewer:
		return true
	}
	return false
}

// UnmarshalText rejects values outside the closed set.
func (v *Visibility) UnmarshalText(b []byte) error {
	return parseEnum(v, Visibility(b), "visibility")
}

// UnmarshalText rejects values outside the closed set.
func (s *ProjectStatus) UnmarshalText(b []byte) error {
	return parseEnum(s, ProjectStatus(b), "project status")
}

// UnmarshalText rejects values outside the closed set.
func (s *IssueStatus) UnmarshalText(b []byte) error {
	return parseEnum(s, IssueStatus(b), "issue status")
}

// UnmarshalText rejects values outside the closed set.
func (r *ProjectRole) UnmarshalText(b []byte) error {
	return parseEnum(r, ProjectRole(b), "project role")
}

type enum interface {
	~string
	Valid() bool
}

func parseEnum[E enum](dst *E, v E, what string) error {
	if !v.Valid() {
		return fmt.Errorf("unknown %s %q", what, string(v))
	}
	*dst = v
	return nil
}
