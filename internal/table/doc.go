// Package table is the reusable data-table pipeline behind every list view.
//
// A view declares its columns with NewColumn, hands raw rows to a Provider
// and renders the provider's derived view with the Table component:
//
//	cols := []table.Column[core.User]{
//	    table.NewColumn(table.Column[core.User]{ID: "name"}),
//	    table.NewColumn(table.Column[core.User]{ID: "email", Size: 240}),
//	}
//	p, err := table.NewProvider(ctx, table.Config{Key: "users", Store: states}, users)
//	table.Table("usersTable", p.View(), cols, rowHref).Render(ctx, w)
//
// The provider owns the filter rules, sort rules, page and page size. Every
// setter recomputes the derived view synchronously and persists the rule
// state under the provider's key, and a new provider restores whatever was
// persisted for that key. FilterEditor and SortEditor edit the rule lists of
// a provider one operation at a time.
//
// A Provider is not safe for concurrent use. The web layer builds one per
// request from the persisted state.
package table
