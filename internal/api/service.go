package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "openstudio.tracker.v1.Tracker"

// FullMethod returns "/<service>/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// TrackerServer is implemented by the gRPC handlers.
type TrackerServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Refresh(context.Context, *RefreshRequest) (*RefreshResponse, error)

	ListUsers(context.Context, *Empty) (*ListUsersResponse, error)
	GetUser(context.Context, *IDRequest) (*UserResponse, error)

	CreateProject(context.Context, *CreateProjectRequest) (*ProjectResponse, error)
	ListProjects(context.Context, *Empty) (*ListProjectsResponse, error)
	GetProject(context.Context, *IDRequest) (*ProjectResponse, error)
	UpdateProject(context.Context, *UpdateProjectRequest) (*ProjectResponse, error)
	DeleteProject(context.Context, *IDRequest) (*Empty, error)

	CreateIssue(context.Context, *CreateIssueRequest) (*IssueResponse, error)
	ListIssues(context.Context, *ListIssuesRequest) (*ListIssuesResponse, error)
	GetIssue(context.Context, *IDRequest) (*IssueResponse, error)
	UpdateIssue(context.Context, *UpdateIssueRequest) (*IssueResponse, error)
	DeleteIssue(context.Context, *IDRequest) (*Empty, error)

	AddMember(context.Context, *AddMemberRequest) (*MemberResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	RemoveMember(context.Context, *RemoveMemberRequest) (*RemoveMemberResponse, error)
}

// RegisterTrackerServer attaches srv to s.
func RegisterTrackerServer(s grpc.ServiceRegistrar, srv TrackerServer) {
	s.RegisterService(&TrackerServiceDesc, srv)
}

// TrackerServiceDesc describes the Tracker service for grpc.Server.
var TrackerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", TrackerServer.Register),
		unary("Login", TrackerServer.Login),
		unary("Refresh", TrackerServer.Refresh),
		unary("ListUsers", TrackerServer.ListUsers),
		unary("GetUser", TrackerServer.GetUser),
		unary("CreateProject", TrackerServer.CreateProject),
		unary("ListProjects", TrackerServer.ListProjects),
		unary("GetProject", TrackerServer.GetProject),
		unary("UpdateProject", TrackerServer.UpdateProject),
		unary("DeleteProject", TrackerServer.DeleteProject),
		unary("CreateIssue", TrackerServer.CreateIssue),
		unary("ListIssues", TrackerServer.ListIssues),
		unary("GetIssue", TrackerServer.GetIssue),
		unary("UpdateIssue", TrackerServer.UpdateIssue),
		unary("DeleteIssue", TrackerServer.DeleteIssue),
		unary("AddMember", TrackerServer.AddMember),
		unary("ListMembers", TrackerServer.ListMembers),
		unary("RemoveMember", TrackerServer.RemoveMember),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "openstudio/tracker/v1",
}

func unary[Req, Resp any](name string, call func(TrackerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if ic == nil {
				return call(srv.(TrackerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TrackerServer), ctx, req.(*Req))
			}
			return ic(ctx, in, info, handler)
		},
	}
}
