package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/admindash/internal/apiclient"
	"github.com/JonMunkholm/admindash/internal/core"
	"github.com/JonMunkholm/admindash/internal/table"
	"github.com/JonMunkholm/admindash/internal/web/paths"
	"github.com/JonMunkholm/admindash/internal/web/templates"
)

// Table views. The name doubles as the key of the persisted table state.
const (
	viewUsers        = "users"
	viewSubjects     = "subjects"
	viewTasks        = "tasks"
	viewSubjectTasks = "subject-tasks"
)

// subjectTasksPageSize bounds the tasks listed on a subject page, which
// paginates them locally.
const subjectTasksPageSize = 100

// tableView is a data table addressable by name from the rule editors.
type tableView interface {
	// panel loads the table for r, applying the page and page_size
	// parameters when present.
	panel(ctx context.Context, rs *requestSession, r *http.Request) (templates.TablePanel, error)

	// edit changes the filter or sort rules and returns the updated panel.
	edit(ctx context.Context, rs *requestSession, r *http.Request, kind, action string) (templates.TablePanel, error)
}

// listResult is one load of a list view. stale is set when the rows are
// the last good response because the latest request failed.
type listResult[T any] struct {
	rows  []T
	data  core.Page[T]
	stale error
}

type listLoader[T any] func(ctx context.Context, rs *requestSession, r *http.Request, st table.State) (listResult[T], error)

// listView binds a row type to its columns, loader and persisted state.
type listView[T any] struct {
	s       *Server
	name    string
	mode    table.Mode
	columns []table.Column[T]
	rowHref func(T) string
	load    listLoader[T]

	// path is the URL pagination requests go to.
	path func(r *http.Request) string
	// query is the id of the form holding the view's query parameters.
	query string
	// key overrides name as the state key, for views scoped to a record.
	key func(r *http.Request) (string, error)
}

func (s *Server) tableViews() map[string]tableView {
	return map[string]tableView{
		viewUsers: &listView[core.User]{
			s: s, name: viewUsers, mode: table.PaginateServer,
			columns: userColumns(), rowHref: userHref, load: s.loadUsers,
			path: staticPath("/users"), query: "users-query",
		},
		viewSubjects: &listView[core.Subject]{
			s: s, name: viewSubjects, mode: table.PaginateServer,
			columns: subjectColumns(), rowHref: subjectHref, load: s.loadSubjects,
			path: staticPath("/subjects"),
		},
		viewTasks: &listView[core.Task]{
			s: s, name: viewTasks, mode: table.PaginateServer,
			columns: taskColumns(), rowHref: taskHref, load: s.loadTasks,
			path: staticPath("/tasks"), query: "tasks-query",
		},
		viewSubjectTasks: &listView[core.Task]{
			s: s, name: viewSubjectTasks, mode: table.PaginateClient,
			columns: subjectTaskColumns(), rowHref: taskHref, load: s.loadSubjectTasks,
			path: func(r *http.Request) string {
				id, _ := subjectParam(r)
				return paths.Subject(id)
			},
			query: "subject-tasks-query",
			key: func(r *http.Request) (string, error) {
				id, err := subjectParam(r)
				if err != nil {
					return "", err
				}
				return viewSubjectTasks + ":" + string(id), nil
			},
		},
	}
}

func staticPath(p string) func(*http.Request) string {
	return func(*http.Request) string { return p }
}

// view looks up a table view by name.
func (s *Server) view(name string) (tableView, error) {
	v, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownView, name)
	}
	return v, nil
}

func (v *listView[T]) provider(ctx context.Context, rs *requestSession, r *http.Request) (*table.Provider[T], error) {
	key := v.name
	if v.key != nil {
		k, err := v.key(r)
		if err != nil {
			return nil, err
		}
		key = k
	}
	return table.NewProvider[T](ctx, table.Config{
		Key:             key,
		Store:           rs.tables,
		Mode:            v.mode,
		DefaultPageSize: v.s.cfg.Table.DefaultPageSize,
	}, nil)
}

func (v *listView[T]) panel(ctx context.Context, rs *requestSession, r *http.Request) (templates.TablePanel, error) {
	p, err := v.provider(ctx, rs, r)
	if err != nil {
		return templates.TablePanel{}, err
	}
	if err := applyPaging(ctx, p, r); err != nil {
		return templates.TablePanel{}, err
	}
	return v.render(ctx, rs, r, p)
}

func (v *listView[T]) edit(ctx context.Context, rs *requestSession, r *http.Request, kind, action string) (templates.TablePanel, error) {
	p, err := v.provider(ctx, rs, r)
	if err != nil {
		return templates.TablePanel{}, err
	}

	cols := table.Options(v.columns)
	switch kind {
	case "filters":
		err = editFilters(ctx, table.NewFilterEditor(p, cols), r, action)
	case "sorts":
		err = editSorts(ctx, table.NewSortEditor(p, cols), r, action)
	default:
		err = fmt.Errorf("%w: rules %q", errUnknownView, kind)
	}
	if err != nil {
		return templates.TablePanel{}, err
	}
	return v.render(ctx, rs, r, p)
}

// render loads the rows for the provider's state and builds the panel. A
// server-paginated view whose page fell past the end after a page size
// change is moved to the last page and loaded again.
func (v *listView[T]) render(ctx context.Context, rs *requestSession, r *http.Request, p *table.Provider[T]) (templates.TablePanel, error) {
	res, err := v.load(ctx, rs, r, p.State())
	if err != nil {
		return templates.TablePanel{}, err
	}
	if v.mode == table.PaginateServer && res.data.LastPage > 0 && p.State().Page > res.data.LastPage {
		if err := p.SetPage(ctx, res.data.LastPage); err != nil {
			return templates.TablePanel{}, err
		}
		if res, err = v.load(ctx, rs, r, p.State()); err != nil {
			return templates.TablePanel{}, err
		}
	}
	p.SetData(res.rows)
	if v.mode == table.PaginateClient && p.State().Page > p.PageCount() {
		if err := p.SetPage(ctx, p.PageCount()); err != nil {
			return templates.TablePanel{}, err
		}
	}

	html, err := templ.ToGoHTML(ctx, table.Table(v.name+"-table", p.View(), v.columns, v.rowHref))
	if err != nil {
		return templates.TablePanel{}, fmt.Errorf("render %s table: %w", v.name, err)
	}

	st := p.State()
	panel := templates.TablePanel{
		View:      v.name,
		Path:      v.path(r),
		Query:     v.query,
		Table:     html,
		Columns:   table.Options(v.columns),
		Operators: table.Operators,
		Filters:   st.Filters,
		Sorts:     st.Sorts,
		Page:      st.Page,
		PageSize:  st.PageSize,
		PageSizes: table.PageSizes,
		LastPage:  p.PageCount(),
		Total:     p.Total(),
	}
	if v.mode == table.PaginateServer {
		if res.data.CurrentPage > 0 {
			panel.Page = res.data.CurrentPage
		}
		panel.LastPage = max(res.data.LastPage, 1)
		panel.Total = res.data.Total()
	}
	if res.stale != nil {
		msg := core.MapError(res.stale)
		panel.Error = msg.Message + " Showing the last loaded records."
	}
	return panel, nil
}

// applyPaging moves the provider to the page and page size named by the
// request. Page sizes outside table.PageSizes are ignored.
func applyPaging[T any](ctx context.Context, p *table.Provider[T], r *http.Request) error {
	page, pageErr := strconv.Atoi(r.FormValue("page"))
	size, sizeErr := strconv.Atoi(r.FormValue("page_size"))
	if sizeErr != nil || !slices.Contains(table.PageSizes, size) {
		size = 0
	}
	if (pageErr != nil || page < 1) && size == 0 {
		return nil
	}

	return p.Update(ctx, func(st *table.State) {
		if pageErr == nil && page > 0 {
			st.Page = page
		}
		if size > 0 {
			st.PageSize = size
		}
	})
}

func editFilters[T any](ctx context.Context, e *table.FilterEditor[T], r *http.Request, action string) error {
	switch action {
	case "add":
		return e.Add(ctx)
	case "reset":
		return e.Reset(ctx)
	case "apply":
		return e.Apply(ctx)
	}

	i, err := ruleIndex(r)
	if err != nil {
		return err
	}
	switch action {
	case "update":
		var patch table.FilterPatch
		if vals, ok := r.PostForm["field"]; ok && len(vals) > 0 {
			patch.Field = &vals[0]
		}
		if vals, ok := r.PostForm["operator"]; ok && len(vals) > 0 {
			op := table.Operator(vals[0])
			patch.Operator = &op
		}
		if vals, ok := r.PostForm["value"]; ok && len(vals) > 0 {
			patch.Value = &vals[0]
		}
		return e.Update(ctx, i, patch)
	case "remove":
		return e.Remove(ctx, i)
	}
	return fmt.Errorf("%w: filter action %q", errUnknownView, action)
}

func editSorts[T any](ctx context.Context, e *table.SortEditor[T], r *http.Request, action string) error {
	switch action {
	case "add":
		return e.Add(ctx)
	case "reset":
		return e.Reset(ctx)
	case "apply":
		return e.Apply(ctx)
	}

	i, err := ruleIndex(r)
	if err != nil {
		return err
	}
	switch action {
	case "update":
		var patch table.SortPatch
		if vals, ok := r.PostForm["field"]; ok && len(vals) > 0 {
			patch.Field = &vals[0]
		}
		if vals, ok := r.PostForm["order"]; ok && len(vals) > 0 {
			order := table.Order(vals[0])
			patch.Order = &order
		}
		return e.Update(ctx, i, patch)
	case "remove":
		return e.Remove(ctx, i)
	}
	return fmt.Errorf("%w: sort action %q", errUnknownView, action)
}

func ruleIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(r.PostFormValue("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", table.ErrIndexOutOfRange, r.PostFormValue("index"))
	}
	return i, nil
}

// fetchList loads path through the session's fetcher for view. A failed
// load still shows the last response of the same path, marked stale; rows
// of any other path are never shown in its place.
func fetchList[T any](ctx context.Context, s *Server, rs *requestSession, view, path string) (listResult[T], error) {
	f := listFetcher[T](s.fetchers, rs, view)
	st, err := f.Fetch(ctx, path, apiclient.Options{})
	if err != nil {
		return listResult[T]{}, err
	}
	data := st.DataFor(path)
	if data == nil {
		if st.Err != nil {
			return listResult[T]{}, st.Err
		}
		return listResult[T]{}, nil
	}
	return listResult[T]{rows: data.Records, data: *data, stale: st.Err}, nil
}

// userQuery reads the users query bar. Unknown roles and statuses are
// dropped rather than sent upstream.
func userQuery(r *http.Request, st table.State) core.UserQuery {
	q := core.UserQuery{
		ListQuery: core.ListQuery{Page: st.Page, PageSize: st.PageSize},
		Search:    r.FormValue("search"),
	}
	if role := core.Role(r.FormValue("role")); role.Valid() {
		q.Role = role
	}
	if status := core.Status(r.FormValue("status")); status.Valid() {
		q.Status = status
	}
	return q
}

func taskQuery(r *http.Request, st table.State) core.TaskQuery {
	return core.TaskQuery{
		ListQuery: core.ListQuery{Page: st.Page, PageSize: st.PageSize},
		SubjectID: core.ID(r.FormValue("subject_id")),
	}
}

func (s *Server) loadUsers(ctx context.Context, rs *requestSession, r *http.Request, st table.State) (listResult[core.User], error) {
	q := userQuery(r, st)
	res, err := fetchList[core.User](ctx, s, rs, viewUsers, core.UsersPath(q))
	if err == nil && res.stale == nil && s.cfg.API.PrefetchNext {
		rs.svc.PrefetchNextUsers(q, res.data)
	}
	return res, err
}

func (s *Server) loadSubjects(ctx context.Context, rs *requestSession, r *http.Request, st table.State) (listResult[core.Subject], error) {
	q := core.ListQuery{Page: st.Page, PageSize: st.PageSize}
	res, err := fetchList[core.Subject](ctx, s, rs, viewSubjects, core.SubjectsPath(q))
	if err == nil && res.stale == nil && s.cfg.API.PrefetchNext {
		rs.svc.PrefetchNextSubjects(q, res.data)
	}
	return res, err
}

func (s *Server) loadTasks(ctx context.Context, rs *requestSession, r *http.Request, st table.State) (listResult[core.Task], error) {
	q := taskQuery(r, st)
	res, err := fetchList[core.Task](ctx, s, rs, viewTasks, core.TasksPath(q))
	if err == nil && res.stale == nil && s.cfg.API.PrefetchNext {
		rs.svc.PrefetchNextTasks(q, res.data)
	}
	return res, err
}

// loadSubjectTasks lists every task of one subject for local paging.
func (s *Server) loadSubjectTasks(ctx context.Context, rs *requestSession, r *http.Request, _ table.State) (listResult[core.Task], error) {
	id, err := subjectParam(r)
	if err != nil {
		return listResult[core.Task]{}, err
	}
	q := core.TaskQuery{ListQuery: core.ListQuery{Page: 1, PageSize: subjectTasksPageSize}, SubjectID: id}
	return fetchList[core.Task](ctx, s, rs, viewSubjectTasks, core.TasksPath(q))
}

// subjectParam is the subject a subject-tasks request is for: the encoded
// id of a subject page URL, or the raw id posted by its query form.
func subjectParam(r *http.Request) (core.ID, error) {
	if enc := chi.URLParam(r, "id"); enc != "" {
		return paths.DecodeID(enc)
	}
	if raw := r.FormValue("subject"); raw != "" {
		return core.ID(raw), nil
	}
	return "", paths.ErrInvalidID
}
