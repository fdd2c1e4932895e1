package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client is a typed Tracker client over any gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// WithBearer returns ctx carrying "authorization: Bearer <token>".
func WithBearer(ctx context.Context, accessToken string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+accessToken)
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c, "Register", in, opts)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, "Login", in, opts)
}

func (c *Client) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*RefreshResponse, error) {
	return invoke[RefreshResponse](ctx, c, "Refresh", in, opts)
}

func (c *Client) ListUsers(ctx context.Context, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c, "ListUsers", &Empty{}, opts)
}

func (c *Client) GetUser(ctx context.Context, id string, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "GetUser", &IDRequest{ID: id}, opts)
}

func (c *Client) CreateProject(ctx context.Context, in *CreateProjectRequest, opts ...grpc.CallOption) (*ProjectResponse, error) {
	return invoke[ProjectResponse](ctx, c, "CreateProject", in, opts)
}

func (c *Client) ListProjects(ctx context.Context, opts ...grpc.CallOption) (*ListProjectsResponse, error) {
	return invoke[ListProjectsResponse](ctx, c, "ListProjects", &Empty{}, opts)
}

func (c *Client) GetProject(ctx context.Context, id string, opts ...grpc.CallOption) (*ProjectResponse, error) {
	return invoke[ProjectResponse](ctx, c, "GetProject", &IDRequest{ID: id}, opts)
}

func (c *Client) UpdateProject(ctx context.Context, in *UpdateProjectRequest, opts ...grpc.CallOption) (*ProjectResponse, error) {
	return invoke[ProjectResponse](ctx, c, "UpdateProject", in, opts)
}

func (c *Client) DeleteProject(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, "DeleteProject", &IDRequest{ID: id}, opts)
	return err
}

func (c *Client) CreateIssue(ctx context.Context, in *CreateIssueRequest, opts ...grpc.CallOption) (*IssueResponse, error) {
	return invoke[IssueResponse](ctx, c, "CreateIssue", in, opts)
}

func (c *Client) ListIssues(ctx context.Context, projectID string, opts ...grpc.CallOption) (*ListIssuesResponse, error) {
	return invoke[ListIssuesResponse](ctx, c, "ListIssues", &ListIssuesRequest{ProjectID: projectID}, opts)
}

func (c *Client) GetIssue(ctx context.Context, id string, opts ...grpc.CallOption) (*IssueResponse, error) {
	return invoke[IssueResponse](ctx, c, "GetIssue", &IDRequest{ID: id}, opts)
}

func (c *Client) UpdateIssue(ctx context.Context, in *UpdateIssueRequest, opts ...grpc.CallOption) (*IssueResponse, error) {
	return invoke[IssueResponse](ctx, c, "UpdateIssue", in, opts)
}

func (c *Client) DeleteIssue(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c, "DeleteIssue", &IDRequest{ID: id}, opts)
	return err
}

func (c *Client) AddMember(ctx context.Context, in *AddMemberRequest, opts ...grpc.CallOption) (*MemberResponse, error) {
	return invoke[MemberResponse](ctx, c, "AddMember", in, opts)
}

func (c *Client) ListMembers(ctx context.Context, projectID string, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c, "ListMembers", &ListMembersRequest{ProjectID: projectID}, opts)
}

func (c *Client) RemoveMember(ctx context.Context, in *RemoveMemberRequest, opts ...grpc.CallOption) (*RemoveMemberResponse, error) {
	return invoke[RemoveMemberResponse](ctx, c, "RemoveMember", in, opts)
}
