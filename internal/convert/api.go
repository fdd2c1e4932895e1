// Package convert maps domain values to wire messages and back.
package convert

import (
	"fmt"

	"github.com/and161185/openstudio/internal/api"
	"github.com/and161185/openstudio/internal/errs"
	model "github.com/and161185/openstudio/internal/model"
	"github.com/and161185/openstudio/internal/service"
	u "github.com/gofrs/uuid/v5"
)

// --- helpers ---

// ParseID parses a textual uuid; failures wrap errs.ErrInvalidArgument.
func ParseID(field, s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidArgument, field, err)
	}
	return id, nil
}

func mapSlice[In, Out any](in []In, f func(In) Out) []Out {
	out := make([]Out, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// --- server -> client ---

// ToAPITokens converts an issued pair.
func ToAPITokens(t model.Tokens) api.Tokens {
	return api.Tokens{
		AccessToken:      t.AccessToken,
		RefreshToken:     t.RefreshToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshExpiresAt: t.RefreshExpiresAt,
	}
}

// ToAPIUser converts a user. The password hash is never copied.
func ToAPIUser(x model.User) api.User {
	return api.User{
		ID:        x.ID.String(),
		Username:  x.Username,
		Email:     x.Email,
		FirstName: x.FirstName,
		LastName:  x.LastName,
		CreatedAt: x.CreatedAt,
		UpdatedAt: x.UpdatedAt,
	}
}

func ToAPIUsers(xs []model.User) []api.User { return mapSlice(xs, ToAPIUser) }

func ToAPIProject(p model.Project) api.Project {
	return api.Project{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Visibility:  string(p.Visibility),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}

func ToAPIProjects(ps []model.Project) []api.Project { return mapSlice(ps, ToAPIProject) }

func ToAPIIssue(i model.Issue) api.Issue {
	return api.Issue{
		ID:          i.ID.String(),
		ProjectID:   i.ProjectID.String(),
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func ToAPIIssues(is []model.Issue) []api.Issue { return mapSlice(is, ToAPIIssue) }

func ToAPIMember(m model.ProjectMember) api.Member {
	return api.Member{
		UserID:    m.UserID.String(),
		ProjectID: m.ProjectID.String(),
		Role:      string(m.Role),
		JoinedAt:  m.JoinedAt,
	}
}

func ToAPIMembers(ms []model.ProjectMember) []api.Member { return mapSlice(ms, ToAPIMember) }

// --- client -> server ---

// FromAPIRegister builds RegisterInput.
func FromAPIRegister(in *api.RegisterRequest) service.RegisterInput {
	return service.RegisterInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
}

// FromAPICreateIssue parses the project reference.
func FromAPICreateIssue(in *api.CreateIssueRequest) (service.CreateIssueInput, error) {
	pid, err := ParseID("project_id", in.ProjectID)
	if err != nil {
		return service.CreateIssueInput{}, err
	}
	return service.CreateIssueInput{ProjectID: pid, Title: in.Title, Description: in.Description}, nil
}

// FromAPIUpdateProject parses the id and the optional enum fields.
func FromAPIUpdateProject(in *api.UpdateProjectRequest) (u.UUID, service.UpdateProjectInput, error) {
	id, err := ParseID("id", in.ID)
	if err != nil {
		return u.Nil, service.UpdateProjectInput{}, err
	}
	out := service.UpdateProjectInput{Name: in.Name, Description: in.Description}
	if in.Status != nil {
		var s model.ProjectStatus
		if err := s.UnmarshalText([]byte(*in.Status)); err != nil {
			return u.Nil, service.UpdateProjectInput{}, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		out.Status = &s
	}
	if in.Visibility != nil {
		var v model.Visibility
		if err := v.UnmarshalText([]byte(*in.Visibility)); err != nil {
			return u.Nil, service.UpdateProjectInput{}, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		out.Visibility = &v
	}
	return id, out, nil
}

// FromAPIUpdateIssue parses the id and the optional status.
func FromAPIUpdateIssue(in *api.UpdateIssueRequest) (u.UUID, service.UpdateIssueInput, error) {
	id, err := ParseID("id", in.ID)
	if err != nil {
		return u.Nil, service.UpdateIssueInput{}, err
	}
	out := service.UpdateIssueInput{Title: in.Title, Description: in.Description}
	if in.Status != nil {
		var s model.IssueStatus
		if err := s.UnmarshalText([]byte(*in.Status)); err != nil {
			return u.Nil, service.UpdateIssueInput{}, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
		}
		out.Status = &s
	}
	return id, out, nil
}

// FromAPIAddMember parses ids and role.
func FromAPIAddMember(in *api.AddMemberRequest) (service.AddMemberInput, error) {
	pid, err := ParseID("project_id", in.ProjectID)
	if err != nil {
		return service.AddMemberInput{}, err
	}
	uid, err := ParseID("user_id", in.UserID)
	if err != nil {
		return service.AddMemberInput{}, err
	}
	var role model.ProjectRole
	if err := role.UnmarshalText([]byte(in.Role)); err != nil {
		return service.AddMemberInput{}, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
	}
	return service.AddMemberInput{UserID: uid, ProjectID: pid, Role: role}, nil
}
