package ops

import (
	"context"

	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
)

// Users and roles

func userRequest(op, role, username, password string, active bool) connection.Request {
	return connection.NewRequest(op).
		With("role", role).
		With("username", username).
		With("password", password).
		With("active", active)
}

func (c *Client) AddUser(ctx context.Context, role, username, password string, active bool) (any, error) {
	return c.Do(ctx, userRequest(constants.OpAddUser, role, username, password, active))
}

func (c *Client) AlterUser(ctx context.Context, role, username, password string, active bool) (any, error) {
	return c.Do(ctx, userRequest(constants.OpAlterUser, role, username, password, active))
}

func (c *Client) DropUser(ctx context.Context, username string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpDropUser).With("username", username))
}

func (c *Client) UserInfo(ctx context.Context, username string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpUserInfo).With("username", username))
}

func (c *Client) ListUsers(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpListUsers))
}

// AddRole creates a role. permission is sent as is, e.g.
// {"super_user": false, "dev": {"tables": {...}}}.
func (c *Client) AddRole(ctx context.Context, role string, permission map[string]any) (any, error) {
	req := connection.NewRequest(constants.OpAddRole).
		With("role", role).
		With("permission", permission)
	return c.Do(ctx, req)
}

func (c *Client) AlterRole(ctx context.Context, id string, permission map[string]any) (any, error) {
	req := connection.NewRequest(constants.OpAlterRole).
		With("id", id).
		With("permission", permission)
	return c.Do(ctx, req)
}

func (c *Client) DropRole(ctx context.Context, id string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpDropRole).With("id", id))
}

func (c *Client) ListRoles(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpListRoles))
}

// Clustering

func nodeRequest(op, name, host string, port int, subscriptions []Subscription) connection.Request {
	if subscriptions == nil {
		subscriptions = []Subscription{}
	}
	return connection.NewRequest(op).
		With("name", name).
		With("host", host).
		With("port", port).
		With("subscriptions", subscriptions)
}

func (c *Client) AddNode(ctx context.Context, name, host string, port int, subscriptions []Subscription) (any, error) {
	return c.Do(ctx, nodeRequest(constants.OpAddNode, name, host, port, subscriptions))
}

func (c *Client) UpdateNode(ctx context.Context, name, host string, port int, subscriptions []Subscription) (any, error) {
	return c.Do(ctx, nodeRequest(constants.OpUpdateNode, name, host, port, subscriptions))
}

func (c *Client) RemoveNode(ctx context.Context, name string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpRemoveNode).With("name", name))
}

func (c *Client) ClusterStatus(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpClusterStatus))
}

// Registration

func (c *Client) RegistrationInfo(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpRegistrationInfo))
}

func (c *Client) GetFingerprint(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpGetFingerprint))
}

func (c *Client) SetLicense(ctx context.Context, key, company string) (any, error) {
	req := connection.NewRequest(constants.OpSetLicense).
		With("key", key).
		With("company", company)
	return c.Do(ctx, req)
}

// Utilities

// DeleteFilesBefore removes the table's records last updated before date
// (YYYY-MM-DD).
func (c *Client) DeleteFilesBefore(ctx context.Context, schema, table, date string) (any, error) {
	return c.Do(ctx, tableRequest(constants.OpDeleteFilesBefore, schema, table).With("date", date))
}

// ExportLocal writes the result of search to path on the server's
// filesystem. search is itself an operation request, typically sql,
// search_by_hash or search_by_value.
func (c *Client) ExportLocal(ctx context.Context, path, format string, search connection.Request) (*JobResult, error) {
	req := connection.NewRequest(constants.OpExportLocal).
		With("path", path).
		With("format", exportFormat(format)).
		With("search_operation", search)
	return connection.Send[JobResult](ctx, c.conn, req)
}

func (c *Client) ExportToS3(ctx context.Context, s3 S3Target, format string, search connection.Request) (*JobResult, error) {
	req := connection.NewRequest(constants.OpExportToS3).
		With("s3", s3).
		With("format", exportFormat(format)).
		With("search_operation", search)
	return connection.Send[JobResult](ctx, c.conn, req)
}

func exportFormat(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

func (c *Client) ReadLog(ctx context.Context, opts ReadLogOptions) (any, error) {
	if opts.Limit == 0 {
		opts.Limit = 1000
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}
	req := connection.NewRequest(constants.OpReadLog).
		With("limit", opts.Limit).
		With("start", opts.Start).
		With("order", opts.Order)
	if opts.From != "" {
		req.With("from", opts.From)
	}
	if opts.Until != "" {
		req.With("until", opts.Until)
	}
	return c.Do(ctx, req)
}

func (c *Client) SystemInformation(ctx context.Context) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpSystemInformation))
}

// Jobs

func (c *Client) GetJob(ctx context.Context, id string) (any, error) {
	return c.Do(ctx, connection.NewRequest(constants.OpGetJob).With("id", id))
}

// SearchJobsByStartDate lists the jobs started between the two dates, both
// in YYYY-MM-DD form.
func (c *Client) SearchJobsByStartDate(ctx context.Context, fromDate, toDate string) (any, error) {
	req := connection.NewRequest(constants.OpSearchJobsByStartDate).
		With("from_date", fromDate).
		With("to_date", toDate)
	return c.Do(ctx, req)
}

// Tokens

func (c *Client) CreateAuthenticationTokens(ctx context.Context, username, password string) (*connection.Tokens, error) {
	req := connection.NewRequest(constants.OpCreateAuthenticationTokens).
		With("username", username).
		With("password", password)
	return connection.Send[connection.Tokens](ctx, c.conn, req)
}

func (c *Client) RefreshOperationToken(ctx context.Context, refreshToken string) (*connection.Tokens, error) {
	req := connection.NewRequest(constants.OpRefreshOperationToken).
		With("refresh_token", refreshToken)
	return connection.Send[connection.Tokens](ctx, c.conn, req)
}
