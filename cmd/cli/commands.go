package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/and161185/openstudio/internal/api"
)

type command func(ctx context.Context, cl *api.Client, args []string, out io.Writer) error

var commands = map[string]command{
	"register":     cmdRegister,
	"login":        cmdLogin,
	"refresh":      cmdRefresh,
	"users":        cmdUsers,
	"user":         cmdUser,
	"projects":     cmdProjects,
	"project":      cmdProject,
	"project-add":  cmdProjectAdd,
	"project-edit": cmdProjectEdit,
	"project-rm":   cmdProjectRm,
	"issues":       cmdIssues,
	"issue":        cmdIssue,
	"issue-add":    cmdIssueAdd,
	"issue-edit":   cmdIssueEdit,
	"issue-rm":     cmdIssueRm,
	"members":      cmdMembers,
	"member-add":   cmdMemberAdd,
	"member-rm":    cmdMemberRm,
}

var errUsage = errors.New("bad arguments")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func need(vals ...string) error {
	for _, v := range vals {
		if v == "" {
			return errUsage
		}
	}
	return nil
}

// optional returns &v only when the flag was given on the command line.
func optional(fs *flag.FlagSet, name, v string) *string {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	if !set {
		return nil
	}
	return &v
}

// ---- auth ----

func cmdRegister(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("register")
	u := fs.String("u", "", "username")
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*u, *e, *p); err != nil {
		return fmt.Errorf("register: need -u -e -p: %w", err)
	}
	resp, err := cl.Register(ctx, &api.RegisterRequest{
		Username:  *u,
		Email:     *e,
		Password:  *p,
		FirstName: optional(fs, "first", *first),
		LastName:  optional(fs, "last", *last),
	})
	if err != nil {
		return err
	}
	if err := saveSession(resp.User.ID, resp.Tokens); err != nil {
		return err
	}
	printJSON(out, resp.User)
	return nil
}

func cmdLogin(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("login")
	id := fs.String("id", "", "username or email")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id, *p); err != nil {
		return fmt.Errorf("login: need -id -p: %w", err)
	}
	resp, err := cl.Login(ctx, &api.LoginRequest{Identifier: *id, Password: *p})
	if err != nil {
		return err
	}
	if err := saveSession(resp.User.ID, resp.Tokens); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func cmdRefresh(ctx context.Context, cl *api.Client, _ []string, out io.Writer) error {
	s, err := loadSession()
	if err != nil || s.RefreshToken == "" {
		return errors.New("no session (login required)")
	}
	resp, err := cl.Refresh(ctx, &api.RefreshRequest{RefreshToken: s.RefreshToken})
	if err != nil {
		return err
	}
	if err := saveSession(s.UserID, resp.Tokens); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// ---- users ----

func cmdUsers(ctx context.Context, cl *api.Client, _ []string, out io.Writer) error {
	resp, err := cl.ListUsers(ctx)
	if err != nil {
		return err
	}
	printJSON(out, resp.Users)
	return nil
}

func cmdUser(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("user")
	id := fs.String("id", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("user: need -id: %w", err)
	}
	resp, err := cl.GetUser(ctx, *id)
	if err != nil {
		return err
	}
	printJSON(out, resp.User)
	return nil
}

// ---- projects ----

func cmdProjects(ctx context.Context, cl *api.Client, _ []string, out io.Writer) error {
	resp, err := cl.ListProjects(ctx)
	if err != nil {
		return err
	}
	printJSON(out, resp.Projects)
	return nil
}

func cmdProject(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("project")
	id := fs.String("id", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("project: need -id: %w", err)
	}
	resp, err := cl.GetProject(ctx, *id)
	if err != nil {
		return err
	}
	printJSON(out, resp.Project)
	return nil
}

func cmdProjectAdd(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("project-add")
	name := fs.String("name", "", "project name")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*name); err != nil {
		return fmt.Errorf("project-add: need -name: %w", err)
	}
	resp, err := cl.CreateProject(ctx, &api.CreateProjectRequest{Name: *name, Description: *desc})
	if err != nil {
		return err
	}
	printJSON(out, resp.Project)
	return nil
}

func cmdProjectEdit(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("project-edit")
	id := fs.String("id", "", "project id")
	name := fs.String("name", "", "new name")
	desc := fs.String("desc", "", "new description")
	st := fs.String("status", "", "Draft|Active|Archived")
	vis := fs.String("visibility", "", "Public|Private|Unlisted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("project-edit: need -id: %w", err)
	}
	resp, err := cl.UpdateProject(ctx, &api.UpdateProjectRequest{
		ID:          *id,
		Name:        optional(fs, "name", *name),
		Description: optional(fs, "desc", *desc),
		Status:      optional(fs, "status", *st),
		Visibility:  optional(fs, "visibility", *vis),
	})
	if err != nil {
		return err
	}
	printJSON(out, resp.Project)
	return nil
}

func cmdProjectRm(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("project-rm")
	id := fs.String("id", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("project-rm: need -id: %w", err)
	}
	if err := cl.DeleteProject(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// ---- issues ----

func cmdIssues(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("issues")
	pid := fs.String("project", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*pid); err != nil {
		return fmt.Errorf("issues: need -project: %w", err)
	}
	resp, err := cl.ListIssues(ctx, *pid)
	if err != nil {
		return err
	}
	printJSON(out, resp.Issues)
	return nil
}

func cmdIssue(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("issue")
	id := fs.String("id", "", "issue id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("issue: need -id: %w", err)
	}
	resp, err := cl.GetIssue(ctx, *id)
	if err != nil {
		return err
	}
	printJSON(out, resp.Issue)
	return nil
}

func cmdIssueAdd(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("issue-add")
	pid := fs.String("project", "", "project id")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*pid, *title); err != nil {
		return fmt.Errorf("issue-add: need -project -title: %w", err)
	}
	resp, err := cl.CreateIssue(ctx, &api.CreateIssueRequest{ProjectID: *pid, Title: *title, Description: *desc})
	if err != nil {
		return err
	}
	printJSON(out, resp.Issue)
	return nil
}

func cmdIssueEdit(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("issue-edit")
	id := fs.String("id", "", "issue id")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	st := fs.String("status", "", "Open|InProgress|Closed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("issue-edit: need -id: %w", err)
	}
	resp, err := cl.UpdateIssue(ctx, &api.UpdateIssueRequest{
		ID:          *id,
		Title:       optional(fs, "title", *title),
		Description: optional(fs, "desc", *desc),
		Status:      optional(fs, "status", *st),
	})
	if err != nil {
		return err
	}
	printJSON(out, resp.Issue)
	return nil
}

func cmdIssueRm(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("issue-rm")
	id := fs.String("id", "", "issue id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*id); err != nil {
		return fmt.Errorf("issue-rm: need -id: %w", err)
	}
	if err := cl.DeleteIssue(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

// ---- members ----

func cmdMembers(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("members")
	pid := fs.String("project", "", "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*pid); err != nil {
		return fmt.Errorf("members: need -project: %w", err)
	}
	resp, err := cl.ListMembers(ctx, *pid)
	if err != nil {
		return err
	}
	printJSON(out, resp.Members)
	return nil
}

func cmdMemberAdd(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("member-add")
	pid := fs.String("project", "", "project id")
	uid := fs.String("user", "", "user id")
	role := fs.String("role", "", "Owner|Maintainer|Contributor|Viewer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*pid, *uid, *role); err != nil {
		return fmt.Errorf("member-add: need -project -user -role: %w", err)
	}
	resp, err := cl.AddMember(ctx, &api.AddMemberRequest{ProjectID: *pid, UserID: *uid, Role: *role})
	if err != nil {
		return err
	}
	printJSON(out, resp.Member)
	return nil
}

func cmdMemberRm(ctx context.Context, cl *api.Client, args []string, out io.Writer) error {
	fs := newFlags("member-rm")
	pid := fs.String("project", "", "project id")
	uid := fs.String("user", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(*pid, *uid); err != nil {
		return fmt.Errorf("member-rm: need -project -user: %w", err)
	}
	resp, err := cl.RemoveMember(ctx, &api.RemoveMemberRequest{ProjectID: *pid, UserID: *uid})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "removed %d\n", resp.Removed)
	return nil
}
