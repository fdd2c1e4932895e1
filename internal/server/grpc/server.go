// Package grpcserver exposes the tracker gRPC API handlers.
package grpcserver

import (
	"context"
	"net"
	"reflect"
	"strings"

	"github.com/and161185/openstudio/internal/api"
	"github.com/and161185/openstudio/internal/convert"
	"github.com/and161185/openstudio/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/grpc/peer"
)

// Services groups the use cases served over gRPC.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Projects service.ProjectService
	Issues   service.IssueService
	Members  service.MemberService
}

// Server wires services into gRPC handlers.
type Server struct {
	svc      Services
	validate *validator.Validate
	log      *zap.Logger
}

var _ api.TrackerServer = (*Server)(nil)

// New constructs a gRPC server with injected services. log may be nil.
func New(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, validate: newValidator(), log: log}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *Server) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return validationStatus(err)
	}
	return nil
}

// fail logs unexpected errors and maps err to a status.
func (s *Server) fail(op string, err error) error {
	st := toStatus(op, err)
	if !isExpected(err) {
		s.log.Error(op, zap.Error(err))
	}
	return st
}

func remoteIP(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// --- Auth ---

// Register creates a new user account and signs it in.
func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	u, tok, err := s.svc.Auth.Register(ctx, convert.FromAPIRegister(req))
	if err != nil {
		return nil, s.fail("register", err)
	}
	return &api.RegisterResponse{User: convert.ToAPIUser(u), Tokens: convert.ToAPITokens(tok)}, nil
}

// Login authenticates by username or email.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	tok, u, err := s.svc.Auth.Login(ctx, service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		IP:         remoteIP(ctx),
	})
	if err != nil {
		return nil, s.fail("login", err)
	}
	return &api.LoginResponse{User: convert.ToAPIUser(u), Tokens: convert.ToAPITokens(tok)}, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *Server) Refresh(ctx context.Context, req *api.RefreshRequest) (*api.RefreshResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	tok, err := s.svc.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail("refresh", err)
	}
	return &api.RefreshResponse{Tokens: convert.ToAPITokens(tok)}, nil
}

// --- Users ---

func (s *Server) ListUsers(ctx context.Context, _ *api.Empty) (*api.ListUsersResponse, error) {
	us, err := s.svc.Users.List(ctx)
	if err != nil {
		return nil, s.fail("list users", err)
	}
	return &api.ListUsersResponse{Users: convert.ToAPIUsers(us)}, nil
}

func (s *Server) GetUser(ctx context.Context, req *api.IDRequest) (*api.UserResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.fail("get user", err)
	}
	u, err := s.svc.Users.Get(ctx, id)
	if err != nil {
		return nil, s.fail("get user", err)
	}
	return &api.UserResponse{User: convert.ToAPIUser(u)}, nil
}

// --- Projects ---

func (s *Server) CreateProject(ctx context.Context, req *api.CreateProjectRequest) (*api.ProjectResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	p, err := s.svc.Projects.Create(ctx, service.CreateProjectInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, s.fail("create project", err)
	}
	if uid, ok := UserIDFromCtx(ctx); ok {
		s.log.Debug("project created by", zap.Stringer("user_id", uid), zap.Stringer("project_id", p.ID))
	}
	return &api.ProjectResponse{Project: convert.ToAPIProject(p)}, nil
}

func (s *Server) ListProjects(ctx context.Context, _ *api.Empty) (*api.ListProjectsResponse, error) {
	ps, err := s.svc.Projects.List(ctx)
	if err != nil {
		return nil, s.fail("list projects", err)
	}
	return &api.ListProjectsResponse{Projects: convert.ToAPIProjects(ps)}, nil
}

func (s *Server) GetProject(ctx context.Context, req *api.IDRequest) (*api.ProjectResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.fail("get project", err)
	}
	p, err := s.svc.Projects.Get(ctx, id)
	if err != nil {
		return nil, s.fail("get project", err)
	}
	return &api.ProjectResponse{Project: convert.ToAPIProject(p)}, nil
}

func (s *Server) UpdateProject(ctx context.Context, req *api.UpdateProjectRequest) (*api.ProjectResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, in, err := convert.FromAPIUpdateProject(req)
	if err != nil {
		return nil, s.fail("update project", err)
	}
	p, err := s.svc.Projects.Update(ctx, id, in)
	if err != nil {
		return nil, s.fail("update project", err)
	}
	return &api.ProjectResponse{Project: convert.ToAPIProject(p)}, nil
}

func (s *Server) DeleteProject(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.fail("delete project", err)
	}
	if err := s.svc.Projects.Delete(ctx, id); err != nil {
		return nil, s.fail("delete project", err)
	}
	return &api.Empty{}, nil
}

// --- Issues ---

func (s *Server) CreateIssue(ctx context.Context, req *api.CreateIssueRequest) (*api.IssueResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	in, err := convert.FromAPICreateIssue(req)
	if err != nil {
		return nil, s.fail("create issue", err)
	}
	is, err := s.svc.Issues.Create(ctx, in)
	if err != nil {
		return nil, s.fail("create issue", err)
	}
	return &api.IssueResponse{Issue: convert.ToAPIIssue(is)}, nil
}

func (s *Server) ListIssues(ctx context.Context, req *api.ListIssuesRequest) (*api.ListIssuesResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	pid, err := convert.ParseID("project_id", req.ProjectID)
	if err != nil {
		return nil, s.fail("list issues", err)
	}
	is, err := s.svc.Issues.ListByProject(ctx, pid)
	if err != nil {
		return nil, s.fail("list issues", err)
	}
	return &api.ListIssuesResponse{Issues: convert.ToAPIIssues(is)}, nil
}

func (s *Server) GetIssue(ctx context.Context, req *api.IDRequest) (*api.IssueResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.fail("get issue", err)
	}
	is, err := s.svc.Issues.Get(ctx, id)
	if err != nil {
		return nil, s.fail("get issue", err)
	}
	return &api.IssueResponse{Issue: convert.ToAPIIssue(is)}, nil
}

func (s *Server) UpdateIssue(ctx context.Context, req *api.UpdateIssueRequest) (*api.IssueResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, in, err := convert.FromAPIUpdateIssue(req)
	if err != nil {
		return nil, s.fail("update issue", err)
	}
	is, err := s.svc.Issues.Update(ctx, id, in)
	if err != nil {
		return nil, s.fail("update issue", err)
	}
	return &api.IssueResponse{Issue: convert.ToAPIIssue(is)}, nil
}

func (s *Server) DeleteIssue(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.fail("delete issue", err)
	}
	if err := s.svc.Issues.Delete(ctx, id); err != nil {
		return nil, s.fail("delete issue", err)
	}
	return &api.Empty{}, nil
}

// --- Members ---

func (s *Server) AddMember(ctx context.Context, req *api.AddMemberRequest) (*api.MemberResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	in, err := convert.FromAPIAddMember(req)
	if err != nil {
		return nil, s.fail("add member", err)
	}
	m, err := s.svc.Members.Add(ctx, in)
	if err != nil {
		return nil, s.fail("add member", err)
	}
	return &api.MemberResponse{Member: convert.ToAPIMember(m)}, nil
}

func (s *Server) ListMembers(ctx context.Context, req *api.ListMembersRequest) (*api.ListMembersResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	pid, err := convert.ParseID("project_id", req.ProjectID)
	if err != nil {
		return nil, s.fail("list members", err)
	}
	ms, err := s.svc.Members.List(ctx, pid)
	if err != nil {
		return nil, s.fail("list members", err)
	}
	return &api.ListMembersResponse{Members: convert.ToAPIMembers(ms)}, nil
}

func (s *Server) RemoveMember(ctx context.Context, req *api.RemoveMemberRequest) (*api.RemoveMemberResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	pid, err := convert.ParseID("project_id", req.ProjectID)
	if err != nil {
		return nil, s.fail("remove member", err)
	}
	uid, err := convert.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, s.fail("remove member", err)
	}
	n, err := s.svc.Members.Remove(ctx, pid, uid)
	if err != nil {
		return nil, s.fail("remove member", err)
	}
	return &api.RemoveMemberResponse{Removed: n}, nil
}
